package enrollment

import (
	"fmt"

	"lingua-app/internal/domain/access"
)

type Code string

const (
	CodeNotEligible         Code = "not_eligible"
	CodeAlreadyEnrolled     Code = "already_enrolled"
	CodeClassFull           Code = "class_full"
	CodeSchedulingFailed    Code = "scheduling_failed"
	CodeInsufficientCredits Code = "insufficient_credits"
	CodeStorage             Code = "storage_unavailable"
	CodeInternal            Code = "internal"
)

// Error is the single tagged result type for failed bookings and group
// joins. Collaborator I/O errors are wrapped here; no raw storage or channel
// error crosses the coordinator boundary.
type Error struct {
	Code   Code
	Reason access.Reason // set for not_eligible denials
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("enrollment: %s (%s)", e.Code, e.Reason)
	case e.cause != nil:
		return fmt.Sprintf("enrollment: %s: %v", e.Code, e.cause)
	default:
		return fmt.Sprintf("enrollment: %s", e.Code)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Upsell reports whether the caller should present the purchase flow.
func (e *Error) Upsell() bool {
	if e.Code == CodeInsufficientCredits {
		return true
	}
	if e.Code == CodeNotEligible {
		d := access.Decision{Granted: false, Reason: e.Reason}
		return d.NeedsUpsell()
	}
	return false
}

func notEligible(reason access.Reason) *Error {
	return &Error{Code: CodeNotEligible, Reason: reason}
}

func storageErr(err error) *Error {
	return &Error{Code: CodeStorage, cause: err}
}

func internalErr(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInternal, cause: fmt.Errorf(format, args...)}
}
