package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday.
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestComputeSlots_FutureAnchorKept(t *testing.T) {
	anchor := at(2026, 3, 12, 18, 30)
	slots, err := ComputeSlots(anchor, RecurrenceDaily, 3, now)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, anchor, slots[0])
	assert.Equal(t, anchor.AddDate(0, 0, 1), slots[1])
	assert.Equal(t, anchor.AddDate(0, 0, 2), slots[2])
}

func TestComputeSlots_PastAnchorRollsForwardDaily(t *testing.T) {
	// Anchor ten days in the past at 09:00; the first slot must be the next
	// 09:00 after now, not the original past date.
	anchor := at(2026, 2, 28, 9, 0)
	slots, err := ComputeSlots(anchor, RecurrenceDaily, 4, now)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.Equal(t, at(2026, 3, 11, 9, 0), slots[0])
	for _, s := range slots {
		assert.True(t, s.After(now))
		assert.Equal(t, 9, s.Hour())
	}
}

func TestComputeSlots_SameDayEarlierTimeCountsAsElapsed(t *testing.T) {
	// Today at 08:00 with now at 12:00 -> rolled to tomorrow 08:00.
	anchor := at(2026, 3, 10, 8, 0)
	slots, err := ComputeSlots(anchor, RecurrenceDaily, 1, now)
	require.NoError(t, err)
	assert.Equal(t, at(2026, 3, 11, 8, 0), slots[0])
}

func TestComputeSlots_WeeklySpacingAndOrdering(t *testing.T) {
	anchor := at(2026, 3, 3, 19, 0) // a week ago, Tuesday 19:00
	slots, err := ComputeSlots(anchor, RecurrenceWeekly, 5, now)
	require.NoError(t, err)
	require.Len(t, slots, 5)

	for i, s := range slots {
		assert.True(t, s.After(now), "slot %d not in the future", i)
		assert.Equal(t, time.Tuesday, s.Weekday())
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, s.Sub(slots[i-1]))
		}
	}
}

func TestComputeSlots_WeeklySameWeekdayTimeElapsedSkipsFullWeek(t *testing.T) {
	// Anchor is today (Tuesday) at 09:00, already past -> next Tuesday.
	anchor := at(2026, 3, 10, 9, 0)
	slots, err := ComputeSlots(anchor, RecurrenceWeekly, 1, now)
	require.NoError(t, err)
	assert.Equal(t, at(2026, 3, 17, 9, 0), slots[0])
}

func TestComputeSlots_WeekdaysNeverIncludeWeekend(t *testing.T) {
	// Friday anchor: 3 slots spanning a weekend.
	anchor := at(2026, 3, 13, 10, 0) // Friday
	slots, err := ComputeSlots(anchor, RecurrenceWeekdays, 3, now)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, at(2026, 3, 13, 10, 0), slots[0]) // Fri
	assert.Equal(t, at(2026, 3, 16, 10, 0), slots[1]) // Mon
	assert.Equal(t, at(2026, 3, 17, 10, 0), slots[2]) // Tue

	for _, s := range slots {
		wd := s.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestComputeSlots_WeekdaysElapsedFridayAnchor(t *testing.T) {
	// Elapsed Friday evening anchor with now on Saturday: roll-forward lands
	// on the weekend, generation slides to Monday.
	saturday := at(2026, 3, 14, 12, 0)
	anchor := at(2026, 3, 13, 10, 0)
	slots, err := ComputeSlots(anchor, RecurrenceWeekdays, 2, saturday)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, at(2026, 3, 16, 10, 0), slots[0]) // Monday
	assert.Equal(t, at(2026, 3, 17, 10, 0), slots[1])
}

func TestComputeSlots_Monthly(t *testing.T) {
	anchor := at(2026, 1, 15, 17, 0)
	slots, err := ComputeSlots(anchor, RecurrenceMonthly, 3, now)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	// January and February occurrences have passed; first slot is March 15.
	assert.Equal(t, at(2026, 3, 15, 17, 0), slots[0])
	assert.Equal(t, at(2026, 4, 15, 17, 0), slots[1])
	assert.Equal(t, at(2026, 5, 15, 17, 0), slots[2])
}

func TestComputeSlots_MonthlyDayOverflowFollowsAddDate(t *testing.T) {
	// Day-31 anchors normalize through shorter months the way time.AddDate
	// does; the sequence stays strictly increasing.
	anchor := at(2026, 3, 31, 10, 0)
	slots, err := ComputeSlots(anchor, RecurrenceMonthly, 3, now)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i].After(slots[i-1]))
	}
}

func TestComputeSlots_OneTimeSingleSlot(t *testing.T) {
	anchor := at(2026, 3, 20, 18, 0)
	slots, err := ComputeSlots(anchor, RecurrenceOneTime, 5, now)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, anchor, slots[0])
}

func TestComputeSlots_OneTimeElapsedBecomesTomorrowSameTime(t *testing.T) {
	anchor := at(2026, 2, 1, 18, 0)
	slots, err := ComputeSlots(anchor, RecurrenceOneTime, 1, now)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, at(2026, 3, 11, 18, 0), slots[0])
}

func TestComputeSlots_Errors(t *testing.T) {
	anchor := at(2026, 3, 20, 18, 0)

	slots, err := ComputeSlots(time.Time{}, RecurrenceDaily, 3, now)
	assert.ErrorIs(t, err, ErrInvalidAnchor)
	assert.Nil(t, slots)

	slots, err = ComputeSlots(anchor, Recurrence("fortnightly"), 3, now)
	assert.ErrorIs(t, err, ErrUnknownRecurrence)
	assert.Nil(t, slots)

	slots, err = ComputeSlots(anchor, RecurrenceDaily, 0, now)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.Nil(t, slots)
}

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		in   string
		want Recurrence
		ok   bool
	}{
		{"daily", RecurrenceDaily, true},
		{" Weekly ", RecurrenceWeekly, true},
		{"WEEKDAYS", RecurrenceWeekdays, true},
		{"", RecurrenceNone, true},
		{"biweekly", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseRecurrence(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}
