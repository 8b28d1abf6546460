package schedule

import "strings"

// Recurrence describes how a class repeats from its anchor date/time.
type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceOneTime  Recurrence = "one_time"
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekdays Recurrence = "weekdays" // Mon-Fri
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceOneTime, RecurrenceDaily,
		RecurrenceWeekdays, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// IsRepeating reports whether the pattern produces more than one slot.
func (r Recurrence) IsRepeating() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekdays, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// ParseRecurrence normalizes a stored recurrence string.
func ParseRecurrence(s string) (Recurrence, bool) {
	r := Recurrence(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RecurrenceNone, true
	}
	if r.IsValid() {
		return r, true
	}
	return "", false
}
