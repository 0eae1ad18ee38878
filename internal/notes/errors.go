package notes

import (
	"errors"
	"fmt"
)

var (
	ErrNoteNotFound = errors.New("note not found")
)

// ValidationError reports a missing, empty or malformed request field. It
// is user-correctable and maps to HTTP 400.
type ValidationError struct {
	Field  string
	Reason string // empty means the field is required and absent
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps a failure from the underlying document store. The cause
// is logged server-side and never exposed to API callers.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
