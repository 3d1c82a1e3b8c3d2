package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a business rule violation raised by the domain layer.
// Code is a stable machine-readable identifier; Field and RejectedValue are
// populated when the violation is tied to a specific input value.
type DomainError struct {
	Code          string
	Message       string
	Field         string
	RejectedValue any
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewFieldError creates a domain error bound to the input field that caused it
func NewFieldError(code, message, field string, rejectedValue any) *DomainError {
	return &DomainError{
		Code:          code,
		Message:       message,
		Field:         field,
		RejectedValue: rejectedValue,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
