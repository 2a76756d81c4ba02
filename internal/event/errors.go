package event

import (
	"errors"
	"fmt"
)

// ErrNoContainerStatuses marks a pod body that carries no status or no
// containerStatuses list. Such events are skipped, not failed.
var ErrNoContainerStatuses = errors.New("no container status information in event")

type DecodeError struct {
	err error
}

func NewDecodeError(err error) *DecodeError {
	return &DecodeError{err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode pod body: %v", e.err)
}

func (e *DecodeError) Unwrap() error {
	return e.err
}

type MissingFieldError struct {
	Field string
}

func NewMissingFieldError(field string) *MissingFieldError {
	return &MissingFieldError{Field: field}
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
