package entity

import (
	"errors"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrDuplicateInvoiceNumber = errors.New("duplicate invoice number")
	ErrMissingField           = errors.New("missing required field")
	ErrInvalidType            = errors.New("invalid data type")
	ErrUnauthenticated        = errors.New("unauthenticated")
)

// ValidationError reports the first offending field of a payload.
// It unwraps to ErrInvalidArgument so callers can classify with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}
