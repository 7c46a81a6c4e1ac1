package domain

import (
	"errors"
	"fmt"
)

// Every failure that reaches the UI is one of these kinds.
var (
	ErrUnauthenticated  = errors.New("sign in required")
	ErrStoreUnavailable = errors.New("invoice store is not provisioned")
	ErrStore            = errors.New("invoice store request failed")
	ErrValidation       = errors.New("validation failed")
	ErrExport           = errors.New("export failed")
)

// ValidationError is reported inline next to the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// FieldOf returns the field a validation error points at, if any
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
