package availability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := NewService(
		NewLegacyStore(mock),
		NewWeeklyStore(mock),
		NewOverrideStore(mock),
		nil,
		nil,
	)
	return svc, mock
}

func legacyRowColumns() []string {
	return []string{
		"id", "therapist_id", "day_of_week", "start_time", "end_time",
		"session_duration", "session_type", "max_sessions", "is_active",
	}
}

func overrideRowColumns() []string {
	return []string{
		"id", "therapist_id", "override_date", "override_type", "is_available",
		"start_time", "end_time", "reason", "notes", "created_at", "updated_at",
	}
}

func TestSaveValidationFailurePerformsNoWrites(t *testing.T) {
	svc, mock := newTestService(t)

	doc := DefaultWeeklyAvailability()
	doc.StandardHours["monday"] = DayAvailability{
		Enabled: true,
		TimeSlots: []TimeSlot{
			{ID: "s", Start: "09:00", End: "10:00", Duration: 0, MaxSessions: 1},
		},
	}

	result := svc.SaveWeeklySchedule(context.Background(), "therapist-1", doc)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "validation failed")
	require.NoError(t, mock.ExpectationsWereMet(), "no store writes expected")
}

func TestSaveWritesLegacyThenWeekly(t *testing.T) {
	svc, mock := newTestService(t)
	doc := sampleDocument()

	mock.ExpectExec("DELETE FROM availability_templates").
		WithArgs("therapist-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	for range 3 {
		mock.ExpectExec("INSERT INTO availability_templates").
			WithArgs(pgxmock.AnyArg(), "therapist-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), true).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectQuery("INSERT INTO weekly_schedules").
		WithArgs("therapist-1", "primary", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("tmpl-1"))

	result := svc.SaveWeeklySchedule(context.Background(), "therapist-1", doc)
	assert.True(t, result.Success)
	assert.Equal(t, "tmpl-1", result.TemplateID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLegacyWriteFailureIsFatal(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("DELETE FROM availability_templates").
		WithArgs("therapist-1").
		WillReturnError(errors.New("connection refused"))

	result := svc.SaveWeeklySchedule(context.Background(), "therapist-1", sampleDocument())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Failed to save schedule")
	require.NoError(t, mock.ExpectationsWereMet(), "weekly upsert must not run after legacy failure")
}

func TestSaveWeeklyUpsertFailureStillSucceeds(t *testing.T) {
	svc, mock := newTestService(t)
	doc := sampleDocument()

	mock.ExpectExec("DELETE FROM availability_templates").
		WithArgs("therapist-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	for range 3 {
		mock.ExpectExec("INSERT INTO availability_templates").
			WithArgs(pgxmock.AnyArg(), "therapist-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), true).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectQuery("INSERT INTO weekly_schedules").
		WithArgs("therapist-1", "primary", pgxmock.AnyArg()).
		WillReturnError(errors.New("jsonb write failed"))

	result := svc.SaveWeeklySchedule(context.Background(), "therapist-1", doc)
	assert.True(t, result.Success, "legacy projection succeeded and remains authoritative")
	assert.Empty(t, result.TemplateID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSchedulePrefersWeeklyDocument(t *testing.T) {
	svc, mock := newTestService(t)

	raw, err := json.Marshal(sampleDocument())
	require.NoError(t, err)
	mock.ExpectQuery("SELECT schedule").
		WithArgs("therapist-1", "primary").
		WillReturnRows(pgxmock.NewRows([]string{"schedule"}).AddRow(raw))

	doc := svc.GetWeeklySchedule(context.Background(), "therapist-1")
	assert.True(t, doc.StandardHours["monday"].Enabled)
	require.Len(t, doc.StandardHours["monday"].TimeSlots, 2)
	require.NoError(t, mock.ExpectationsWereMet(), "legacy rows must not be read")
}

func TestGetScheduleFallsBackToLegacyRows(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT schedule").
		WithArgs("therapist-1", "primary").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT id, therapist_id, day_of_week").
		WithArgs("therapist-1").
		WillReturnRows(pgxmock.NewRows(legacyRowColumns()).
			AddRow("row-1", "therapist-1", 1, "08:00", "09:00", 60, "individual", 1, true))

	doc := svc.GetWeeklySchedule(context.Background(), "therapist-1")
	monday := doc.StandardHours["monday"]
	require.True(t, monday.Enabled)
	require.Len(t, monday.TimeSlots, 1)
	assert.Equal(t, "08:00", monday.TimeSlots[0].Start)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScheduleDefaultOnEmpty(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT schedule").
		WithArgs("therapist-1", "primary").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT id, therapist_id, day_of_week").
		WithArgs("therapist-1").
		WillReturnRows(pgxmock.NewRows(legacyRowColumns()))

	doc := svc.GetWeeklySchedule(context.Background(), "therapist-1")
	require.NotNil(t, doc)
	require.Len(t, doc.StandardHours, 7)
	for _, day := range DayNames {
		assert.False(t, doc.StandardHours[day].Enabled, "%s should be disabled", day)
	}
	assert.Equal(t, 60, doc.SessionSettings.SessionDuration)
}

func TestGetScheduleDefaultOnStoreFailure(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT schedule").
		WithArgs("therapist-1", "primary").
		WillReturnError(errors.New("store down"))
	mock.ExpectQuery("SELECT id, therapist_id, day_of_week").
		WithArgs("therapist-1").
		WillReturnError(errors.New("store down"))

	doc := svc.GetWeeklySchedule(context.Background(), "therapist-1")
	require.NotNil(t, doc, "reads degrade to default, never error")
	for _, day := range DayNames {
		assert.False(t, doc.StandardHours[day].Enabled)
	}
}

func expectWeeklyDocRead(t *testing.T, mock pgxmock.PgxPoolIface, doc *WeeklyAvailability) {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT schedule").
		WithArgs("therapist-1", "primary").
		WillReturnRows(pgxmock.NewRows([]string{"schedule"}).AddRow(raw))
}

func TestResolveDateOverridePrecedence(t *testing.T) {
	svc, mock := newTestService(t)

	doc := DefaultWeeklyAvailability()
	doc.StandardHours["tuesday"] = DayAvailability{
		Enabled: true,
		TimeSlots: []TimeSlot{
			{ID: "tu", Start: "09:00", End: "10:00", Duration: 60, MaxSessions: 1, IsAvailable: true},
		},
	}
	now := time.Now()

	// 2025-03-11 (a Tuesday) carries an unavailable override.
	expectWeeklyDocRead(t, mock, doc)
	mock.ExpectQuery("SELECT id, therapist_id, override_date").
		WithArgs("therapist-1", "2025-03-11", "2025-03-11").
		WillReturnRows(pgxmock.NewRows(overrideRowColumns()).
			AddRow("ov-1", "therapist-1", "2025-03-11", OverrideUnavailable, false, "", "", "personal day", "", now, now))

	resolved, err := svc.ResolveDate(context.Background(), "therapist-1", "2025-03-11")
	require.NoError(t, err)
	assert.False(t, resolved.Available)
	assert.Equal(t, SourceOverride, resolved.Source)
	assert.Empty(t, resolved.Slots)

	// The previous Tuesday has no override and keeps the standard slots.
	expectWeeklyDocRead(t, mock, doc)
	mock.ExpectQuery("SELECT id, therapist_id, override_date").
		WithArgs("therapist-1", "2025-03-04", "2025-03-04").
		WillReturnRows(pgxmock.NewRows(overrideRowColumns()))

	resolved, err = svc.ResolveDate(context.Background(), "therapist-1", "2025-03-04")
	require.NoError(t, err)
	assert.True(t, resolved.Available)
	assert.Equal(t, SourceStandard, resolved.Source)
	require.Len(t, resolved.Slots, 1)
	assert.Equal(t, "09:00", resolved.Slots[0].Start)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDateCustomHoursReplaceStandardSlots(t *testing.T) {
	svc, mock := newTestService(t)

	doc := DefaultWeeklyAvailability()
	doc.StandardHours["wednesday"] = DayAvailability{
		Enabled: true,
		TimeSlots: []TimeSlot{
			{ID: "w1", Start: "09:00", End: "10:00", Duration: 60, MaxSessions: 1, IsAvailable: true},
			{ID: "w2", Start: "10:15", End: "11:15", Duration: 60, MaxSessions: 1, IsAvailable: true},
		},
	}
	now := time.Now()

	expectWeeklyDocRead(t, mock, doc)
	mock.ExpectQuery("SELECT id, therapist_id, override_date").
		WithArgs("therapist-1", "2025-03-12", "2025-03-12").
		WillReturnRows(pgxmock.NewRows(overrideRowColumns()).
			AddRow("ov-2", "therapist-1", "2025-03-12", OverrideCustomHours, true, "14:00", "15:00", "", "", now, now))

	resolved, err := svc.ResolveDate(context.Background(), "therapist-1", "2025-03-12")
	require.NoError(t, err)
	assert.True(t, resolved.Available)
	assert.Equal(t, SourceOverride, resolved.Source)
	require.Len(t, resolved.Slots, 1, "custom hours replace, never merge with, standard slots")
	assert.Equal(t, "14:00", resolved.Slots[0].Start)
	assert.Equal(t, "15:00", resolved.Slots[0].End)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDateDisabledDay(t *testing.T) {
	svc, mock := newTestService(t)

	expectWeeklyDocRead(t, mock, DefaultWeeklyAvailability())
	mock.ExpectQuery("SELECT id, therapist_id, override_date").
		WithArgs("therapist-1", "2025-03-12", "2025-03-12").
		WillReturnRows(pgxmock.NewRows(overrideRowColumns()))

	resolved, err := svc.ResolveDate(context.Background(), "therapist-1", "2025-03-12")
	require.NoError(t, err)
	assert.False(t, resolved.Available)
	assert.Empty(t, resolved.Slots)
}

func TestResolveDateRejectsBadDate(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ResolveDate(context.Background(), "therapist-1", "03/12/2025")
	assert.Error(t, err)
}

func TestSaveOverrideRoundTrip(t *testing.T) {
	svc, mock := newTestService(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO availability_overrides").
		WithArgs("therapist-1", "2025-03-10", OverrideUnavailable, false, "", "", "vacation", "").
		WillReturnRows(pgxmock.NewRows(overrideRowColumns()).
			AddRow("ov-9", "therapist-1", "2025-03-10", OverrideUnavailable, false, "", "", "vacation", "", now, now))

	result := svc.SaveOverride(context.Background(), "therapist-1", Override{
		Date:        "2025-03-10",
		Type:        OverrideUnavailable,
		IsAvailable: false,
		Reason:      "vacation",
	})
	require.True(t, result.Success)
	require.NotNil(t, result.Override)
	assert.Equal(t, "ov-9", result.Override.ID)
	assert.Equal(t, "2025-03-10", result.Override.Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOverrideRejectsInconsistentType(t *testing.T) {
	svc, mock := newTestService(t)

	result := svc.SaveOverride(context.Background(), "therapist-1", Override{
		Date:        "2025-03-10",
		Type:        OverrideUnavailable,
		IsAvailable: true,
	})
	assert.False(t, result.Success)
	require.NoError(t, mock.ExpectationsWereMet(), "no upsert for inconsistent override")
}

func TestDeleteOverride(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("DELETE FROM availability_overrides").
		WithArgs("ov-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, svc.DeleteOverride(context.Background(), "ov-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListOverridesDegradesToEmptyOnFailure(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id, therapist_id, override_date").
		WithArgs("therapist-1").
		WillReturnError(errors.New("store unreachable"))

	overrides := svc.ListOverrides(context.Background(), "therapist-1", "", "")
	assert.NotNil(t, overrides)
	assert.Empty(t, overrides)
}
