package decode

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap one of these so callers can
// branch with errors.Is and still get the offset path from errors.As.
var (
	ErrNoArrayFound        = errors.New("no json array found in payload")
	ErrInvalidJSON         = errors.New("payload is not valid json")
	ErrAuthFieldMissing    = errors.New("session field missing")
	ErrSessionExpired      = errors.New("session not authenticated")
	ErrMissingTimestamp    = errors.New("missing timestamp")
	ErrMissingCoordinates  = errors.New("missing coordinates")
	ErrInvalidBatteryLevel = errors.New("invalid battery level")
	ErrAmbiguousVariant    = errors.New("ambiguous record variant")
)

// StructuralError reports an array shorter than the decoder requires.
type StructuralError struct {
	Path     string
	Expected int
	Actual   int
	NotArray bool // node was absent or not an array at all
}

func (e *StructuralError) Error() string {
	if e.NotArray {
		return fmt.Sprintf("%s: too short: expected array of at least %d elements, got non-array", e.Path, e.Expected)
	}
	return fmt.Sprintf("%s: too short: expected at least %d elements, got %d", e.Path, e.Expected, e.Actual)
}

// AuthError reports a failed session check.
type AuthError struct {
	Path  string
	Value string
	Err   error
}

func (e *AuthError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (value %q)", e.Path, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DecodeError reports a field that is structurally present but semantically unusable.
type DecodeError struct {
	Path  string
	Raw   string
	Err   error
	Cause error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Path, e.Err)
	if e.Raw != "" {
		msg += fmt.Sprintf(" (raw %q)", e.Raw)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Kind maps an error from this package to a short stable label for logs and metrics.
func Kind(err error) string {
	var se *StructuralError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNoArrayFound):
		return "no_array"
	case errors.Is(err, ErrInvalidJSON):
		return "invalid_json"
	case errors.As(err, &se):
		return "too_short"
	case errors.Is(err, ErrAuthFieldMissing):
		return "auth_missing"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrMissingTimestamp):
		return "missing_timestamp"
	case errors.Is(err, ErrMissingCoordinates):
		return "missing_coordinates"
	case errors.Is(err, ErrInvalidBatteryLevel):
		return "invalid_battery"
	case errors.Is(err, ErrAmbiguousVariant):
		return "ambiguous_variant"
	default:
		return "other"
	}
}
