package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsDefaultDocument(t *testing.T) {
	res := Validate(DefaultWeeklyAvailability())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateNilDocument(t *testing.T) {
	res := Validate(nil)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestValidateMissingSections(t *testing.T) {
	res := Validate(&WeeklyAvailability{})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "standardHours is missing")
	assert.Contains(t, res.Errors, "sessionSettings is missing")
}

func TestValidateZeroDurationSlotIsFatal(t *testing.T) {
	doc := DefaultWeeklyAvailability()
	doc.StandardHours["monday"] = DayAvailability{
		Enabled: true,
		TimeSlots: []TimeSlot{
			{ID: "s", Start: "09:00", End: "10:00", Duration: 0, MaxSessions: 1},
		},
	}
	res := Validate(doc)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestValidateSlotMissingTimes(t *testing.T) {
	doc := DefaultWeeklyAvailability()
	doc.StandardHours["tuesday"] = DayAvailability{
		Enabled:   true,
		TimeSlots: []TimeSlot{{ID: "s", Duration: 60, MaxSessions: 1}},
	}
	res := Validate(doc)
	assert.False(t, res.Valid)
}

func TestValidateStartMustPrecedeEnd(t *testing.T) {
	doc := DefaultWeeklyAvailability()
	doc.StandardHours["tuesday"] = DayAvailability{
		Enabled: true,
		TimeSlots: []TimeSlot{
			{ID: "s", Start: "11:00", End: "10:00", Duration: 60, MaxSessions: 1},
		},
	}
	res := Validate(doc)
	assert.False(t, res.Valid)
}

func TestValidateSessionSettings(t *testing.T) {
	doc := DefaultWeeklyAvailability()
	doc.SessionSettings = SessionSettings{SessionDuration: 0, BufferTime: -5, MaxSessionsPerDay: 0}
	res := Validate(doc)
	require.False(t, res.Valid)
	assert.Len(t, res.Errors, 3)
}

func TestValidateEnabledDayWithoutSlotsWarnsOnly(t *testing.T) {
	doc := DefaultWeeklyAvailability()
	doc.StandardHours["thursday"] = DayAvailability{Enabled: true, TimeSlots: []TimeSlot{}}
	res := Validate(doc)
	assert.True(t, res.Valid, "warning must not block the save")
	assert.Len(t, res.Warnings, 1)
}

func TestValidateStrictRejectsOverlaps(t *testing.T) {
	doc := DefaultWeeklyAvailability()
	doc.StandardHours["monday"] = DayAvailability{
		Enabled: true,
		TimeSlots: []TimeSlot{
			{ID: "a", Start: "09:00", End: "10:00", Duration: 60, MaxSessions: 1},
			{ID: "b", Start: "09:30", End: "10:30", Duration: 60, MaxSessions: 1},
		},
	}

	assert.True(t, Validate(doc).Valid, "default mode keeps the permissive behavior")
	strict := ValidateStrict(doc)
	assert.False(t, strict.Valid)
	assert.Contains(t, strict.Errors[0], "overlap")
}

func TestValidateOverrideTypeConsistency(t *testing.T) {
	assert.Error(t, ValidateOverride(Override{
		Date: "2025-03-10", Type: OverrideUnavailable, IsAvailable: true,
	}), "unavailable override cannot be marked available")

	assert.Error(t, ValidateOverride(Override{
		Date: "2025-03-10", Type: OverrideCustomHours, IsAvailable: false,
	}), "custom hours override must be available")

	assert.Error(t, ValidateOverride(Override{
		Date: "2025-03-10", Type: OverrideCustomHours, IsAvailable: true,
	}), "custom hours override needs hours")

	assert.Error(t, ValidateOverride(Override{
		Date: "2025-03-10", Type: "holiday", IsAvailable: false,
	}), "unknown type rejected")

	assert.NoError(t, ValidateOverride(Override{
		Date:        "2025-03-10",
		Type:        OverrideReducedHours,
		IsAvailable: true,
		CustomHours: &CustomHours{Start: "10:00", End: "13:00"},
	}))

	assert.NoError(t, ValidateOverride(Override{
		Date: "2025-03-10", Type: OverrideUnavailable, IsAvailable: false,
	}))
}

func TestValidateOverrideRequiresDate(t *testing.T) {
	assert.Error(t, ValidateOverride(Override{Type: OverrideUnavailable}))
}

func TestValidateOverrideHoursOrdering(t *testing.T) {
	assert.Error(t, ValidateOverride(Override{
		Date:        "2025-03-10",
		Type:        OverrideCustomHours,
		IsAvailable: true,
		CustomHours: &CustomHours{Start: "15:00", End: "14:00"},
	}))
}
