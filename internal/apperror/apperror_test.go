// Table-driven tests: every case gets a name and the assertion is written once.
package apperror

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("card", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "a@b.com"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("wrong email or password"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("card", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "APIError 401 unwraps to ErrUnauthorized",
			err:       &APIError{Status: http.StatusUnauthorized},
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "APIError 502 unwraps to ErrRemote",
			err:       &APIError{Status: http.StatusBadGateway},
			target:    ErrRemote,
			wantMatch: true,
		},
		{
			name:      "wrapped APIError still matches",
			err:       fmtWrap(&APIError{Status: http.StatusNotFound}),
			target:    ErrNotFound,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("card", "abc123"),
			wantMessage: "card not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "Conflict message includes key",
			err:         Conflict("user", "a@b.com"),
			wantMessage: "user already exists: a@b.com",
		},
		{
			name:        "APIError includes status and message",
			err:         &APIError{Status: 400, Message: "bad link"},
			wantMessage: "api: 400 bad link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		wantKind string
	}{
		{ValidationFailed("link", "bad"), http.StatusBadRequest, "validation_error"},
		{Unauthorized("nope"), http.StatusUnauthorized, "unauthorized"},
		{Forbidden("not yours"), http.StatusForbidden, "forbidden"},
		{NotFound("card", "x"), http.StatusNotFound, "not_found"},
		{Conflict("user", "x"), http.StatusConflict, "conflict"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantKind, func(t *testing.T) {
			status, kind := StatusFor(tt.err)
			if status != tt.status || kind != tt.wantKind {
				t.Errorf("StatusFor() = (%d, %q), want (%d, %q)", status, kind, tt.status, tt.wantKind)
			}
		})
	}
}

// StatusFor and SentinelFor must be inverses for every status the API emits.
func TestStatusSentinelRoundTrip(t *testing.T) {
	for _, status := range []int{400, 401, 403, 404, 409} {
		status2, _ := StatusFor(SentinelFor(status))
		if status2 != status {
			t.Errorf("StatusFor(SentinelFor(%d)) = %d", status, status2)
		}
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("card", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")
	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
