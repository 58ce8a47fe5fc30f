package errors

import (
	"errors"
	"fmt"
)

// ErrClientNotFound signals that the panel has no client for the requested
// email. It is an expected condition, distinct from transport failures.
var ErrClientNotFound = errors.New("client not found on panel")

// IsClientNotFound reports whether err means "no such client".
func IsClientNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound)
}

// PanelAPIError represents an error returned by the 3X-UI panel API
type PanelAPIError struct {
	Operation string
	Status    int
	Message   string
}

// Error returns the error message
func (e *PanelAPIError) Error() string {
	return fmt.Sprintf("panel API error during %s (status %d): %s", e.Operation, e.Status, e.Message)
}

// ValidationError represents an error when validation fails
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// PromocodeError represents an error related to promocode activation
type PromocodeError struct {
	Code    string
	Message string
}

// Error returns the error message
func (e *PromocodeError) Error() string {
	return fmt.Sprintf("promocode %q: %s", e.Code, e.Message)
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Section string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}
