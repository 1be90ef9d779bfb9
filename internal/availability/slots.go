package availability

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateTimeSlots expands a working window into discrete bookable slots.
// The cursor advances by sessionDuration+bufferTime per step; a final slot
// that would overrun endTime is discarded, never truncated.
func GenerateTimeSlots(startTime, endTime string, sessionDuration, bufferTime int) []TimeSlot {
	start, err := parseMinutes(startTime)
	if err != nil {
		return nil
	}
	end, err := parseMinutes(endTime)
	if err != nil {
		return nil
	}
	if sessionDuration <= 0 || bufferTime < 0 {
		return nil
	}

	var slots []TimeSlot
	step := sessionDuration + bufferTime
	for cursor := start; cursor+sessionDuration <= end; cursor += step {
		slots = append(slots, TimeSlot{
			ID:          uuid.NewString(),
			Start:       formatMinutes(cursor),
			End:         formatMinutes(cursor + sessionDuration),
			Duration:    sessionDuration,
			Type:        "individual",
			MaxSessions: 1,
			Title:       fmt.Sprintf("Session %d", len(slots)+1),
			IsAvailable: true,
		})
	}
	return slots
}

// CalculateEndTime adds durationMinutes to an HH:MM start time.
func CalculateEndTime(start string, durationMinutes int) (string, error) {
	mins, err := parseMinutes(start)
	if err != nil {
		return "", err
	}
	return formatMinutes(mins + durationMinutes), nil
}

// TimeSlotsOverlap reports whether two slots intersect. Touching
// endpoints do not overlap.
func TimeSlotsOverlap(a, b TimeSlot) bool {
	aStart, err := parseMinutes(a.Start)
	if err != nil {
		return false
	}
	aEnd, err := parseMinutes(a.End)
	if err != nil {
		return false
	}
	bStart, err := parseMinutes(b.Start)
	if err != nil {
		return false
	}
	bEnd, err := parseMinutes(b.End)
	if err != nil {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

func parseMinutes(hhmm string) (int, error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("availability: invalid time %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("availability: invalid hour in %q: %w", hhmm, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("availability: invalid minute in %q: %w", hhmm, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("availability: time %q out of range", hhmm)
	}
	return hour*60 + minute, nil
}

func formatMinutes(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
