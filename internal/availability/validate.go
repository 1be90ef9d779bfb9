package availability

import "fmt"

// ValidationResult reports whether a document may be persisted. Warnings
// surface misconfiguration without blocking the save, so a therapist can
// store a schedule they are still building out day by day.
type ValidationResult struct {
	Valid    bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks structural and semantic integrity of a weekly document.
func Validate(doc *WeeklyAvailability) ValidationResult {
	return validate(doc, false)
}

// ValidateStrict additionally rejects overlapping slots within a day.
// The generator never produces overlaps, but hand-authored slots can.
func ValidateStrict(doc *WeeklyAvailability) ValidationResult {
	return validate(doc, true)
}

func validate(doc *WeeklyAvailability, strict bool) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}
	if doc == nil {
		res.Errors = append(res.Errors, "schedule document is missing")
		return res
	}
	if doc.StandardHours == nil {
		res.Errors = append(res.Errors, "standardHours is missing")
	}
	zero := SessionSettings{}
	if doc.SessionSettings == zero {
		res.Errors = append(res.Errors, "sessionSettings is missing")
	} else {
		if doc.SessionSettings.SessionDuration <= 0 {
			res.Errors = append(res.Errors, "sessionSettings.sessionDuration must be greater than 0")
		}
		if doc.SessionSettings.BufferTime < 0 {
			res.Errors = append(res.Errors, "sessionSettings.bufferTime cannot be negative")
		}
		if doc.SessionSettings.MaxSessionsPerDay <= 0 {
			res.Errors = append(res.Errors, "sessionSettings.maxSessionsPerDay must be greater than 0")
		}
	}

	for _, day := range DayNames {
		dayAvail, ok := doc.StandardHours[day]
		if !ok {
			continue
		}
		if dayAvail.Enabled && len(dayAvail.TimeSlots) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s is enabled but has no time slots", day))
		}
		for i, slot := range dayAvail.TimeSlots {
			if slot.Start == "" || slot.End == "" {
				res.Errors = append(res.Errors, fmt.Sprintf("%s slot %d is missing start or end time", day, i+1))
				continue
			}
			if slot.Duration <= 0 {
				res.Errors = append(res.Errors, fmt.Sprintf("%s slot %d has invalid duration", day, i+1))
			}
			if slot.MaxSessions <= 0 {
				res.Errors = append(res.Errors, fmt.Sprintf("%s slot %d has invalid max sessions", day, i+1))
			}
			start, errStart := parseMinutes(slot.Start)
			end, errEnd := parseMinutes(slot.End)
			if errStart == nil && errEnd == nil && start >= end {
				res.Errors = append(res.Errors, fmt.Sprintf("%s slot %d must start before it ends", day, i+1))
			}
			if strict {
				for j := i + 1; j < len(dayAvail.TimeSlots); j++ {
					if TimeSlotsOverlap(slot, dayAvail.TimeSlots[j]) {
						res.Errors = append(res.Errors, fmt.Sprintf("%s slots %d and %d overlap", day, i+1, j+1))
					}
				}
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateOverride rejects overrides whose type contradicts their
// availability flag, and available overrides without custom hours.
func ValidateOverride(o Override) error {
	switch o.Type {
	case OverrideUnavailable:
		if o.IsAvailable {
			return fmt.Errorf("availability: override type %q requires isAvailable=false", o.Type)
		}
	case OverrideCustomHours, OverrideReducedHours:
		if !o.IsAvailable {
			return fmt.Errorf("availability: override type %q requires isAvailable=true", o.Type)
		}
		if o.CustomHours == nil || o.CustomHours.Start == "" || o.CustomHours.End == "" {
			return fmt.Errorf("availability: override type %q requires custom hours", o.Type)
		}
		start, err := parseMinutes(o.CustomHours.Start)
		if err != nil {
			return err
		}
		end, err := parseMinutes(o.CustomHours.End)
		if err != nil {
			return err
		}
		if start >= end {
			return fmt.Errorf("availability: override hours must start before they end")
		}
	default:
		return fmt.Errorf("availability: unknown override type %q", o.Type)
	}
	if o.Date == "" {
		return fmt.Errorf("availability: override date is required")
	}
	return nil
}
