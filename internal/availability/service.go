package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/calmora/teletherapy-platform/internal/observability/metrics"
	"github.com/calmora/teletherapy-platform/pkg/logging"
)

var availabilityTracer = otel.Tracer("calmora.internal.availability")

// Resolution sources reported on resolved days and metrics.
const (
	SourceOverride = "override"
	SourceStandard = "standard"
	SourceDefault  = "default"
)

// SaveResult is returned by schedule saves. Callers branch on Success and
// surface Message directly.
type SaveResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	TemplateID string `json:"templateId,omitempty"`
}

// OverrideResult is returned by override saves.
type OverrideResult struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Override *Override `json:"override,omitempty"`
}

// ResolvedDay is the effective availability for one calendar date.
type ResolvedDay struct {
	TherapistID string     `json:"therapistId"`
	Date        string     `json:"date"`
	Available   bool       `json:"available"`
	Source      string     `json:"source"`
	Slots       []TimeSlot `json:"slots"`
	Reason      string     `json:"reason,omitempty"`
}

// Service reconciles the weekly document, the legacy template rows and
// date overrides into one authoritative notion of when a therapist is
// bookable.
type Service struct {
	legacy    *LegacyStore
	weekly    *WeeklyStore
	overrides *OverrideStore
	metrics   *metrics.AvailabilityMetrics
	logger    *logging.Logger
}

// NewService constructs the availability service.
func NewService(legacy *LegacyStore, weekly *WeeklyStore, overrides *OverrideStore, m *metrics.AvailabilityMetrics, logger *logging.Logger) *Service {
	if legacy == nil || weekly == nil || overrides == nil {
		panic("availability: all stores required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		legacy:    legacy,
		weekly:    weekly,
		overrides: overrides,
		metrics:   m,
		logger:    logger,
	}
}

// SaveWeeklySchedule validates and persists a weekly document to both
// storage projections. The legacy rows are the durable source of truth:
// their failure aborts the save. The weekly document upsert is
// best-effort acceleration; its failure is logged and the save still
// succeeds.
func (s *Service) SaveWeeklySchedule(ctx context.Context, therapistID string, doc *WeeklyAvailability) SaveResult {
	ctx, span := availabilityTracer.Start(ctx, "availability.save_schedule")
	defer span.End()
	span.SetAttributes(attribute.String("calmora.therapist_id", therapistID))

	validation := Validate(doc)
	if !validation.Valid {
		s.metrics.ObserveSave("validation_failed")
		return SaveResult{
			Success: false,
			Message: "Schedule validation failed: " + strings.Join(validation.Errors, "; "),
		}
	}
	for _, w := range validation.Warnings {
		s.logger.Warn("schedule validation warning", "therapist_id", therapistID, "warning", w)
	}

	rows := ToLegacyRows(doc, therapistID)
	if err := s.legacy.ReplaceRows(ctx, therapistID, rows); err != nil {
		span.RecordError(err)
		s.metrics.ObserveSave("legacy_write_failed")
		s.logger.Error("failed to replace legacy schedule rows", "therapist_id", therapistID, "error", err)
		return SaveResult{
			Success: false,
			Message: "Failed to save schedule: " + err.Error(),
		}
	}

	templateID, err := s.weekly.UpsertDocument(ctx, therapistID, doc)
	if err != nil {
		// Legacy projection already succeeded and remains authoritative.
		span.RecordError(err)
		s.metrics.ObserveSave("weekly_write_failed")
		s.logger.Warn("weekly document upsert failed, legacy rows remain authoritative",
			"therapist_id", therapistID, "error", err)
		return SaveResult{Success: true, Message: "Schedule saved"}
	}

	s.metrics.ObserveSave("saved")
	s.logger.Info("weekly schedule saved", "therapist_id", therapistID, "template_id", templateID, "rows", len(rows))
	return SaveResult{Success: true, Message: "Schedule saved", TemplateID: templateID}
}

// GetWeeklySchedule returns the effective weekly document: the stored
// document when present, otherwise the legacy rows transformed, otherwise
// the default all-days-disabled document. Never returns nil.
func (s *Service) GetWeeklySchedule(ctx context.Context, therapistID string) *WeeklyAvailability {
	ctx, span := availabilityTracer.Start(ctx, "availability.get_schedule")
	defer span.End()
	span.SetAttributes(attribute.String("calmora.therapist_id", therapistID))

	doc, err := s.weekly.ReadDocument(ctx, therapistID)
	if err == nil {
		return normalizeDocument(doc)
	}
	if err != ErrNoDocument {
		s.logger.Warn("weekly document read failed, falling back to legacy rows",
			"therapist_id", therapistID, "error", err)
	}

	rows, err := s.legacy.ReadRows(ctx, therapistID)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("legacy schedule read failed, returning default availability",
			"therapist_id", therapistID, "error", err)
		return DefaultWeeklyAvailability()
	}
	if len(rows) == 0 {
		return DefaultWeeklyAvailability()
	}
	return FromLegacyRows(rows)
}

// ListOverrides returns the therapist's overrides in the inclusive date
// range, ascending by date. Store failures degrade to an empty list.
func (s *Service) ListOverrides(ctx context.Context, therapistID, startDate, endDate string) []Override {
	rows, err := s.overrides.ListRows(ctx, therapistID, startDate, endDate)
	if err != nil {
		s.logger.Error("override list failed", "therapist_id", therapistID, "error", err)
		return []Override{}
	}
	out := make([]Override, 0, len(rows))
	for _, row := range rows {
		out = append(out, OverrideFromRow(row))
	}
	return out
}

// SaveOverride validates and upserts a date override. Keyed by
// (therapist, date): a second override for the same date replaces the
// first.
func (s *Service) SaveOverride(ctx context.Context, therapistID string, o Override) OverrideResult {
	ctx, span := availabilityTracer.Start(ctx, "availability.save_override")
	defer span.End()
	span.SetAttributes(
		attribute.String("calmora.therapist_id", therapistID),
		attribute.String("calmora.override_date", o.Date),
	)

	if err := ValidateOverride(o); err != nil {
		return OverrideResult{Success: false, Message: err.Error()}
	}

	stored, err := s.overrides.UpsertRow(ctx, OverrideToRow(o, therapistID))
	if err != nil {
		span.RecordError(err)
		s.logger.Error("override save failed", "therapist_id", therapistID, "date", o.Date, "error", err)
		return OverrideResult{Success: false, Message: "Failed to save override: " + err.Error()}
	}

	saved := OverrideFromRow(stored)
	s.logger.Info("availability override saved", "therapist_id", therapistID, "date", saved.Date, "type", saved.Type)
	return OverrideResult{Success: true, Message: "Override saved", Override: &saved}
}

// DeleteOverride removes an override by id.
func (s *Service) DeleteOverride(ctx context.Context, overrideID string) error {
	if err := s.overrides.DeleteRow(ctx, overrideID); err != nil {
		s.logger.Error("override delete failed", "override_id", overrideID, "error", err)
		return err
	}
	s.logger.Info("availability override deleted", "override_id", overrideID)
	return nil
}

// ResolveDate determines the effective availability for one calendar
// date. An override for that exact date wins outright: an unavailable
// override blanks the day, custom hours replace (not merge with) the
// standard slots. Without an override the standard weekday applies.
func (s *Service) ResolveDate(ctx context.Context, therapistID, date string) (*ResolvedDay, error) {
	ctx, span := availabilityTracer.Start(ctx, "availability.resolve_date")
	defer span.End()
	span.SetAttributes(
		attribute.String("calmora.therapist_id", therapistID),
		attribute.String("calmora.date", date),
	)
	started := time.Now()

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("availability: invalid date %q: %w", date, err)
	}

	doc := s.GetWeeklySchedule(ctx, therapistID)
	settings := doc.SessionSettings

	for _, o := range s.ListOverrides(ctx, therapistID, date, date) {
		if o.Date != date {
			continue
		}
		resolved := &ResolvedDay{
			TherapistID: therapistID,
			Date:        date,
			Source:      SourceOverride,
			Reason:      o.Reason,
			Slots:       []TimeSlot{},
		}
		if o.IsAvailable && o.CustomHours != nil {
			resolved.Available = true
			resolved.Slots = GenerateTimeSlots(o.CustomHours.Start, o.CustomHours.End, settings.SessionDuration, settings.BufferTime)
		}
		s.metrics.ObserveResolve(SourceOverride, time.Since(started).Seconds())
		return resolved, nil
	}

	dayName := DayNames[int(day.Weekday())]
	dayAvail, ok := doc.StandardHours[dayName]
	source := SourceStandard
	if !ok || (!dayAvail.Enabled && len(dayAvail.TimeSlots) == 0) {
		source = SourceDefault
	}

	resolved := &ResolvedDay{
		TherapistID: therapistID,
		Date:        date,
		Source:      source,
		Slots:       []TimeSlot{},
	}
	if ok && dayAvail.Enabled {
		resolved.Available = true
		resolved.Slots = expandDaySlots(dayAvail, settings)
		if len(resolved.Slots) == 0 {
			resolved.Available = false
		}
	}
	s.metrics.ObserveResolve(source, time.Since(started).Seconds())
	return resolved, nil
}

// expandDaySlots expands each configured window into bookable slots and
// caps the day at maxSessionsPerDay.
func expandDaySlots(day DayAvailability, settings SessionSettings) []TimeSlot {
	var slots []TimeSlot
	for _, window := range day.TimeSlots {
		duration := window.Duration
		if duration <= 0 {
			duration = settings.SessionDuration
		}
		generated := GenerateTimeSlots(window.Start, window.End, duration, settings.BufferTime)
		for i := range generated {
			generated[i].Type = windowType(window)
		}
		slots = append(slots, generated...)
	}
	if settings.MaxSessionsPerDay > 0 && len(slots) > settings.MaxSessionsPerDay {
		slots = slots[:settings.MaxSessionsPerDay]
	}
	if slots == nil {
		slots = []TimeSlot{}
	}
	return slots
}

func windowType(window TimeSlot) string {
	if window.Type != "" {
		return window.Type
	}
	return defaultSessionType
}

// normalizeDocument guarantees all seven weekday keys and sane session
// defaults on documents read back from storage.
func normalizeDocument(doc *WeeklyAvailability) *WeeklyAvailability {
	if doc == nil {
		return DefaultWeeklyAvailability()
	}
	if doc.StandardHours == nil {
		doc.StandardHours = map[string]DayAvailability{}
	}
	for _, day := range DayNames {
		if _, ok := doc.StandardHours[day]; !ok {
			doc.StandardHours[day] = DayAvailability{Enabled: false, TimeSlots: []TimeSlot{}}
		}
	}
	if doc.SessionSettings.SessionDuration <= 0 {
		doc.SessionSettings.SessionDuration = defaultSessionDuration
	}
	if doc.SessionSettings.MaxSessionsPerDay <= 0 {
		doc.SessionSettings.MaxSessionsPerDay = DefaultSessionSettings().MaxSessionsPerDay
	}
	return doc
}
