package schedule

import (
	"errors"
	"time"
)

var (
	ErrInvalidAnchor     = errors.New("schedule: anchor date/time is not set")
	ErrUnknownRecurrence = errors.New("schedule: unknown recurrence pattern")
	ErrInvalidCount      = errors.New("schedule: occurrence count must be at least 1")
)

// ComputeSlots produces the ordered future occurrence timestamps for a class.
//
// The stored anchor may already be in the past (the class template was created
// a while ago, or the class has already run); in that case the anchor is first
// rolled forward to the next valid future occurrence, preserving the original
// time-of-day, and the slot sequence is generated from there.
//
// Repeating patterns return exactly count slots, strictly increasing. One-time
// and non-recurring classes always return a single slot. Errors return a nil
// slice; callers must treat that as "cannot compute, do not book".
func ComputeSlots(anchor time.Time, r Recurrence, count int, now time.Time) ([]time.Time, error) {
	if anchor.IsZero() {
		return nil, ErrInvalidAnchor
	}
	if !r.IsValid() {
		return nil, ErrUnknownRecurrence
	}
	if !r.IsRepeating() {
		count = 1
	}
	if count < 1 {
		return nil, ErrInvalidCount
	}

	start := rollForward(anchor, r, now)

	slots := make([]time.Time, 0, count)
	switch r {
	case RecurrenceDaily:
		for i := 0; i < count; i++ {
			slots = append(slots, start.AddDate(0, 0, i))
		}

	case RecurrenceWeekdays:
		// Walk forward day by day, keeping Mon-Fri only. A rolled anchor
		// landing on a weekend slides to the following Monday.
		d := start
		for len(slots) < count {
			if isWeekday(d) {
				slots = append(slots, d)
			}
			d = d.AddDate(0, 0, 1)
		}

	case RecurrenceWeekly:
		for i := 0; i < count; i++ {
			slots = append(slots, start.AddDate(0, 0, 7*i))
		}

	case RecurrenceMonthly:
		// Calendar month arithmetic; day-of-month overflow into a shorter
		// month follows time.AddDate normalization.
		for i := 0; i < count; i++ {
			slots = append(slots, start.AddDate(0, i, 0))
		}

	default: // one_time / none
		slots = append(slots, start)
	}

	return slots, nil
}

// rollForward advances an elapsed anchor to its next future occurrence.
// Same-day-but-earlier-time counts as elapsed, as does any earlier date.
func rollForward(anchor time.Time, r Recurrence, now time.Time) time.Time {
	if anchor.After(now) {
		return anchor
	}

	switch r {
	case RecurrenceDaily, RecurrenceWeekdays:
		d := anchor
		for !d.After(now) {
			d = d.AddDate(0, 0, 1)
		}
		return d

	case RecurrenceWeekly:
		// Next occurrence of the same weekday at the same time; if the
		// anchor weekday is today but the time has passed, a full week.
		d := anchor
		for !d.After(now) {
			d = d.AddDate(0, 0, 7)
		}
		return d

	case RecurrenceMonthly:
		d := anchor
		for !d.After(now) {
			d = d.AddDate(0, 1, 0)
		}
		return d

	default:
		// An elapsed one-time class is treated as "tomorrow, same time".
		y, m, day := now.AddDate(0, 0, 1).Date()
		return time.Date(y, m, day,
			anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(),
			anchor.Location())
	}
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
