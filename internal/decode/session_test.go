package decode

import (
	"errors"
	"testing"
)

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"valid", `[null, null, null, null, null, null, "CgIIAQ==", null]`, nil},
		{"length six", `[null, null, null, null, null, null]`, ErrAuthFieldMissing},
		{"empty", `[]`, ErrAuthFieldMissing},
		{"null field", `[null, null, null, null, null, null, null]`, ErrAuthFieldMissing},
		{"empty string", `[null, null, null, null, null, null, ""]`, ErrAuthFieldMissing},
		{"number", `[null, null, null, null, null, null, 7]`, ErrAuthFieldMissing},
		{"array", `[null, null, null, null, null, null, ["GgA="]]`, ErrAuthFieldMissing},
		{"not an array", `{"6": "x"}`, ErrAuthFieldMissing},
		{"sentinel", `[null, null, null, null, null, null, "GgA="]`, ErrSessionExpired},
		{"sentinel with garbage elsewhere", `["bad", 1, {}, [], 2, 3, "GgA=", "x", 4, "nope"]`, ErrSessionExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSession(mustParse(t, tt.payload, "data"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateSession() = %v, want %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var ae *AuthError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *AuthError, got %T", err)
			}
			if ae.Path != "data[6]" {
				t.Errorf("AuthError.Path = %q, want data[6]", ae.Path)
			}
		})
	}
}
