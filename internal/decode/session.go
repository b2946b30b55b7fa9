package decode

// sessionSentinel is what the backend puts at the session offset when the
// request was not authenticated. This is an observed heuristic, not a
// documented contract, and may change without notice.
const sessionSentinel = "GgA="

const sessionOffset = 6

// ValidateSession checks the session-auth field of a top-level payload
// before any record is decoded.
func ValidateSession(top View) error {
	field, ok := top.At(sessionOffset)
	if !ok {
		return &AuthError{Path: field.Path(), Err: ErrAuthFieldMissing}
	}
	value, ok := field.AsString()
	if !ok || field.IsAbsent() {
		return &AuthError{Path: field.Path(), Value: field.Text(), Err: ErrAuthFieldMissing}
	}
	if value == sessionSentinel {
		return &AuthError{Path: field.Path(), Value: value, Err: ErrSessionExpired}
	}
	return nil
}
