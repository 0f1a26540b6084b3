package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched by every ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigurationError reports a construction parameter that can never work.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidConfiguration)
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}
