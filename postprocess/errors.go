package postprocess

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConfiguration is the cause of every error returned when the processor
// parameters, or the tensors handed to the processor, do not match the model
// configuration.  These are integration errors and processing must not
// continue.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError describes which part of the configuration is invalid
type ConfigurationError struct {
	// Field is the parameter or input that failed validation
	Field string
	// Reason describes the failure
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrConfiguration)
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Cause allows errors.Cause(err) == ErrConfiguration
func (e *ConfigurationError) Cause() error {
	return ErrConfiguration
}

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}
