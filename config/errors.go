package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingEnv indicates the file references an unset ${VAR}.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrInvalidEnv indicates a HEALTHGATE_* variable could not be parsed.
	ErrInvalidEnv = errors.New("config: invalid environment override")

	// ErrInvalid indicates the configuration failed validation.
	ErrInvalid = errors.New("config: invalid configuration")
)

// FieldError is a validation failure for one field.
type FieldError struct {
	// Field is the dotted YAML path, e.g. "healthcheck.port".
	Field string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError collects every FieldError found in a configuration. It
// matches ErrInvalid and any underlying field cause with errors.Is.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", ErrInvalid, e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d errors:", ErrInvalid, len(e.Errors))
	for _, fe := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

func (e ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors)+1)
	errs = append(errs, ErrInvalid)
	for _, fe := range e.Errors {
		errs = append(errs, fe)
	}
	return errs
}
