package availability

import "time"

// DayNames indexes weekday names by the legacy day_of_week convention
// (0=Sunday .. 6=Saturday).
var DayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// TimeSlot is a single bookable interval inside a day.
type TimeSlot struct {
	ID          string `json:"id"`
	Start       string `json:"start"` // "09:00"
	End         string `json:"end"`   // "10:00"
	Duration    int    `json:"duration"`
	Type        string `json:"type"`
	MaxSessions int    `json:"maxSessions"`
	Title       string `json:"title,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
}

// DayAvailability is one weekday entry of the standard schedule.
type DayAvailability struct {
	Enabled     bool       `json:"enabled"`
	TimeSlots   []TimeSlot `json:"timeSlots"`
	CustomSlots []TimeSlot `json:"customSlots,omitempty"`
	Breaks      []TimeSlot `json:"breaks,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// SessionSettings are the global defaults applied when expanding
// availability into bookable slots.
type SessionSettings struct {
	SessionDuration   int `json:"sessionDuration"`
	BufferTime        int `json:"bufferTime"`
	MaxSessionsPerDay int `json:"maxSessionsPerDay"`
}

// WeeklyAvailability is the consolidated schedule document. StandardHours
// always carries all seven weekday keys, disabled days included.
type WeeklyAvailability struct {
	StandardHours   map[string]DayAvailability `json:"standardHours"`
	SessionSettings SessionSettings            `json:"sessionSettings"`
}

// Override types.
const (
	OverrideUnavailable  = "unavailable"
	OverrideCustomHours  = "custom_hours"
	OverrideReducedHours = "reduced_hours"
)

// CustomHours carries the replacement hours of an available override.
type CustomHours struct {
	Start     string     `json:"start"`
	End       string     `json:"end"`
	TimeSlots []TimeSlot `json:"timeSlots"`
}

// Override is a date-specific exception that supersedes the standard
// schedule for exactly one calendar date.
type Override struct {
	ID          string       `json:"id,omitempty"`
	TherapistID string       `json:"therapistId"`
	Date        string       `json:"date"` // "2025-03-10"
	Type        string       `json:"type"`
	IsAvailable bool         `json:"isAvailable"`
	CustomHours *CustomHours `json:"customHours,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt,omitempty"`
}

// LegacyRow is the one-row-per-recurring-slot relational representation
// that predates the weekly document.
type LegacyRow struct {
	ID              string
	TherapistID     string
	DayOfWeek       int // 0=Sunday .. 6=Saturday
	StartTime       string
	EndTime         string
	SessionDuration int
	SessionType     string
	MaxSessions     int
	IsActive        bool
}

// OverrideRow is the relational shape of an override.
type OverrideRow struct {
	ID           string
	TherapistID  string
	OverrideDate string
	OverrideType string
	IsAvailable  bool
	StartTime    string
	EndTime      string
	Reason       string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultSessionSettings are applied when a therapist has never saved a
// schedule in either format.
func DefaultSessionSettings() SessionSettings {
	return SessionSettings{
		SessionDuration:   60,
		BufferTime:        15,
		MaxSessionsPerDay: 8,
	}
}

// DefaultWeeklyAvailability returns the documented empty state: all seven
// days present and disabled. Absence of configuration is a valid state,
// not an error.
func DefaultWeeklyAvailability() *WeeklyAvailability {
	hours := make(map[string]DayAvailability, len(DayNames))
	for _, day := range DayNames {
		hours[day] = DayAvailability{Enabled: false, TimeSlots: []TimeSlot{}}
	}
	return &WeeklyAvailability{
		StandardHours:   hours,
		SessionSettings: DefaultSessionSettings(),
	}
}
