package submission

import (
	"errors"
	"fmt"
)

var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// FieldLookupError means a form control, or the checked option of a choice
// group, could not be read. No request is sent when this is returned.
type FieldLookupError struct {
	Field string
	Err   error
}

func (e *FieldLookupError) Error() string {
	return fmt.Sprintf("unable to read form field %q: %v", e.Field, e.Err)
}

func (e *FieldLookupError) Unwrap() error {
	return e.Err
}

// NetworkError is a transport level failure: dns, refused or reset
// connections, timeouts and cancellation.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("error sending generation request: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type ServerError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("generator responded with status %d: %s", e.StatusCode, e.StatusText)
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error decoding generator response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
