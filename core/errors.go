package core

import "github.com/pkg/errors"

// FieldError pins an error to one field of an API payload or query,
// eg. a malformed session date or a missing assignment filter.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries field-level failures back to the API layer,
// where the error handler renders them as a 400 field map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable integrity problem; the server
// shuts itself down gracefully when one surfaces.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
