package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrSlotInPast    = errors.New("slot is in the past")
	ErrConflict      = errors.New("slot already booked")
	ErrNotFound      = errors.New("booking not found")
	ErrNotReportable = errors.New("booking is not in a state that allows this action")
	ErrUnexpected    = errors.New("unexpected error")
)

// ForbiddenError is returned when a banned user tries to book.
type ForbiddenError struct {
	BannedUntil time.Time
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: banned until %s", e.BannedUntil.Format(time.RFC3339))
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// UnexpectedError wraps a collaborator failure.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

func (e *UnexpectedError) Is(target error) bool {
	return target == ErrUnexpected
}

func unexpected(err error) error {
	if err == nil {
		return nil
	}
	return &UnexpectedError{Err: err}
}
