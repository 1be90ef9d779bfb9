package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTimeSlotsWithBuffer(t *testing.T) {
	slots := GenerateTimeSlots("09:00", "17:00", 60, 15)

	wantStarts := []string{"09:00", "10:15", "11:30", "12:45", "14:00", "15:15"}
	require.Len(t, slots, len(wantStarts))
	for i, slot := range slots {
		assert.Equal(t, wantStarts[i], slot.Start, "slot %d start", i)
		end, err := CalculateEndTime(slot.Start, 60)
		require.NoError(t, err)
		assert.Equal(t, end, slot.End, "slot %d end", i)
		assert.Equal(t, 60, slot.Duration)
		assert.True(t, slot.IsAvailable)
		assert.NotEmpty(t, slot.ID)
	}
	assert.Equal(t, "Session 1", slots[0].Title)
	assert.Equal(t, "Session 6", slots[5].Title)
}

func TestGenerateTimeSlotsBoundariesAreDeterministic(t *testing.T) {
	a := GenerateTimeSlots("09:00", "17:00", 60, 15)
	b := GenerateTimeSlots("09:00", "17:00", 60, 15)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Start, b[i].Start)
		assert.Equal(t, a[i].End, b[i].End)
	}
}

func TestGenerateTimeSlotsNeverOverruns(t *testing.T) {
	cases := []struct {
		start, end       string
		duration, buffer int
	}{
		{"09:00", "17:00", 60, 15},
		{"09:00", "17:00", 50, 0},
		{"08:30", "12:00", 45, 10},
		{"10:00", "10:59", 60, 0},
		{"00:00", "23:59", 90, 30},
	}
	for _, tc := range cases {
		endMins, err := parseMinutes(tc.end)
		require.NoError(t, err)
		for _, slot := range GenerateTimeSlots(tc.start, tc.end, tc.duration, tc.buffer) {
			slotEnd, err := parseMinutes(slot.End)
			require.NoError(t, err)
			assert.LessOrEqual(t, slotEnd, endMins,
				"slot %s-%s overruns %s", slot.Start, slot.End, tc.end)
		}
	}
}

func TestGenerateTimeSlotsDiscardsPartialFinalSlot(t *testing.T) {
	// 09:00-10:30 with 60-minute sessions fits exactly one; the second
	// would end at 11:00 and is discarded, not truncated.
	slots := GenerateTimeSlots("09:00", "10:30", 60, 0)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].Start)
	assert.Equal(t, "10:00", slots[0].End)
}

func TestGenerateTimeSlotsExactFit(t *testing.T) {
	slots := GenerateTimeSlots("09:00", "10:00", 60, 0)
	require.Len(t, slots, 1)
	assert.Equal(t, "10:00", slots[0].End)
}

func TestGenerateTimeSlotsInvalidInput(t *testing.T) {
	assert.Nil(t, GenerateTimeSlots("nine", "17:00", 60, 0))
	assert.Nil(t, GenerateTimeSlots("09:00", "17:00", 0, 0))
	assert.Nil(t, GenerateTimeSlots("09:00", "17:00", 60, -1))
	assert.Nil(t, GenerateTimeSlots("17:00", "09:00", 60, 0))
}

func TestCalculateEndTime(t *testing.T) {
	end, err := CalculateEndTime("09:30", 45)
	require.NoError(t, err)
	assert.Equal(t, "10:15", end)

	_, err = CalculateEndTime("25:00", 30)
	assert.Error(t, err)
}

func TestTimeSlotsOverlap(t *testing.T) {
	slot := func(start, end string) TimeSlot { return TimeSlot{Start: start, End: end} }

	assert.True(t, TimeSlotsOverlap(slot("09:00", "10:00"), slot("09:30", "10:30")))
	assert.True(t, TimeSlotsOverlap(slot("09:30", "10:30"), slot("09:00", "10:00")))
	assert.True(t, TimeSlotsOverlap(slot("09:00", "12:00"), slot("10:00", "11:00")))

	// Touching endpoints do not overlap.
	assert.False(t, TimeSlotsOverlap(slot("09:00", "10:00"), slot("10:00", "11:00")))
	assert.False(t, TimeSlotsOverlap(slot("09:00", "10:00"), slot("11:00", "12:00")))
}
