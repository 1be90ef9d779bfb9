package availability

import (
	"github.com/google/uuid"
)

// Defaults applied when legacy rows predate a column or stored nulls.
const (
	defaultSessionDuration = 60
	defaultSessionType     = "individual"
	defaultMaxSessions     = 1
)

// ToLegacyRows flattens a weekly document into recurring template rows.
// Disabled days and enabled days without slots emit nothing, which on the
// next save hard-deletes that day's recurring availability.
func ToLegacyRows(doc *WeeklyAvailability, therapistID string) []LegacyRow {
	var rows []LegacyRow
	for dow, day := range DayNames {
		dayAvail, ok := doc.StandardHours[day]
		if !ok || !dayAvail.Enabled || len(dayAvail.TimeSlots) == 0 {
			continue
		}
		for _, slot := range dayAvail.TimeSlots {
			duration := slot.Duration
			if duration <= 0 {
				duration = defaultSessionDuration
			}
			sessionType := slot.Type
			if sessionType == "" {
				sessionType = defaultSessionType
			}
			maxSessions := slot.MaxSessions
			if maxSessions <= 0 {
				maxSessions = defaultMaxSessions
			}
			rows = append(rows, LegacyRow{
				TherapistID:     therapistID,
				DayOfWeek:       dow,
				StartTime:       slot.Start,
				EndTime:         slot.End,
				SessionDuration: duration,
				SessionType:     sessionType,
				MaxSessions:     maxSessions,
				IsActive:        true,
			})
		}
	}
	return rows
}

// FromLegacyRows reconstructs a weekly document from template rows. Every
// weekday key is present; days without rows come back disabled.
func FromLegacyRows(rows []LegacyRow) *WeeklyAvailability {
	doc := DefaultWeeklyAvailability()
	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			continue
		}
		day := DayNames[row.DayOfWeek]

		duration := row.SessionDuration
		if duration <= 0 {
			duration = defaultSessionDuration
		}
		sessionType := row.SessionType
		if sessionType == "" {
			sessionType = defaultSessionType
		}
		maxSessions := row.MaxSessions
		if maxSessions <= 0 {
			maxSessions = defaultMaxSessions
		}
		id := row.ID
		if id == "" {
			id = uuid.NewString()
		}

		dayAvail := doc.StandardHours[day]
		dayAvail.Enabled = true
		dayAvail.TimeSlots = append(dayAvail.TimeSlots, TimeSlot{
			ID:          id,
			Start:       row.StartTime,
			End:         row.EndTime,
			Duration:    duration,
			Type:        sessionType,
			MaxSessions: maxSessions,
			IsAvailable: true,
		})
		doc.StandardHours[day] = dayAvail
	}
	return doc
}

// OverrideFromRow converts the stored relational shape back into the
// document shape. Available overrides get a single synthesized custom
// slot spanning the stored window.
func OverrideFromRow(row OverrideRow) Override {
	o := Override{
		ID:          row.ID,
		TherapistID: row.TherapistID,
		Date:        row.OverrideDate,
		Type:        row.OverrideType,
		IsAvailable: row.IsAvailable,
		Reason:      row.Reason,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if o.Type == "" {
		if row.IsAvailable {
			o.Type = OverrideCustomHours
		} else {
			o.Type = OverrideUnavailable
		}
	}
	if row.IsAvailable && row.StartTime != "" && row.EndTime != "" {
		startMins, errStart := parseMinutes(row.StartTime)
		endMins, errEnd := parseMinutes(row.EndTime)
		duration := defaultSessionDuration
		if errStart == nil && errEnd == nil && endMins > startMins {
			duration = endMins - startMins
		}
		o.CustomHours = &CustomHours{
			Start: row.StartTime,
			End:   row.EndTime,
			TimeSlots: []TimeSlot{{
				ID:          uuid.NewString(),
				Start:       row.StartTime,
				End:         row.EndTime,
				Duration:    duration,
				Type:        defaultSessionType,
				MaxSessions: defaultMaxSessions,
				IsAvailable: true,
			}},
		}
	}
	return o
}

// OverrideToRow flattens an override to the single-window relational
// shape. Only the first custom slot survives the trip; multi-slot custom
// hours are lossy here.
func OverrideToRow(o Override, therapistID string) OverrideRow {
	row := OverrideRow{
		ID:           o.ID,
		TherapistID:  therapistID,
		OverrideDate: o.Date,
		OverrideType: o.Type,
		IsAvailable:  o.IsAvailable,
		Reason:       o.Reason,
		Notes:        o.Notes,
	}
	if o.CustomHours != nil {
		row.StartTime = o.CustomHours.Start
		row.EndTime = o.CustomHours.End
		if len(o.CustomHours.TimeSlots) > 0 {
			first := o.CustomHours.TimeSlots[0]
			if row.StartTime == "" {
				row.StartTime = first.Start
			}
			if row.EndTime == "" {
				row.EndTime = first.End
			}
		}
	}
	return row
}
