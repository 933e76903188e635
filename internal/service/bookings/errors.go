package bookings

import "errors"

// ValidationError marks locally recoverable input problems: the caller
// re-prompts and resubmits.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

var (
	ErrPastDate          = errors.New("service date is before today")
	ErrSlotUnavailable   = errors.New("slot is no longer available")
	ErrDateFullyBooked   = errors.New("date has reached its booking cap")
	ErrInvalidTransition = errors.New("booking status is terminal")
	ErrOperatorRequired  = errors.New("operator privilege required")
	ErrNoAudio           = errors.New("booking has no audio attachment")
)
