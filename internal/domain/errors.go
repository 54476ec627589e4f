package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel lookup errors.
var (
	ErrJobNotFound      = errors.New("job not found")
	ErrRelationNotFound = errors.New("translator job relation not found")
	ErrUserNotFound     = errors.New("user not found")
)

// ConflictReason distinguishes the ways a translator-side operation can lose.
type ConflictReason string

const (
	ConflictAlreadyAssigned        ConflictReason = "already_assigned"
	ConflictTranslatorDoubleBooked ConflictReason = "translator_double_booked"
	ConflictWithin24Hours          ConflictReason = "within_24_hours"
)

// ValidationError reports a missing or invalid creation field. The message is
// user-facing and the field name lets the UI mark the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Field)
	}
	return e.Message
}

// ConflictError is the soft failure of a race-sensitive operation: a lost
// assignment race, a double booking, or a cancellation inside the locked
// window. The message is user-facing and situation-specific.
type ConflictError struct {
	Reason  ConflictReason
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidTransitionError reports an operation against a job whose status does
// not permit it.
type InvalidTransitionError struct {
	JobID  int64
	From   JobStatus
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %d: cannot %s while %s", e.JobID, e.Action, e.From)
}

// IsConflict reports whether err is a ConflictError with the given reason.
func IsConflict(err error, reason ConflictReason) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason == reason
	}
	return false
}

// IsValidation reports whether err is a ValidationError, returning it if so.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
