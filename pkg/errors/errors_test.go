package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusBadRequest)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to see through the wrapper")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "reservation not found",
			},
			expected: "NOT_FOUND: reservation not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"invalid input", InvalidInput("bad field"), http.StatusBadRequest, CodeInvalidInput},
		{"validation", Validation("invalid payload", nil), http.StatusBadRequest, CodeValidation},
		{"business rule", BusinessRule("Minimum stay is 2 days."), http.StatusBadRequest, CodeBusinessRule},
		{"unauthorized", Unauthorized("no identity"), http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", Forbidden("not a member"), http.StatusForbidden, CodeForbidden},
		{"conflict", Conflict("duplicate request"), http.StatusConflict, CodeConflict},
		{"not found", NotFound("Property"), http.StatusNotFound, CodeNotFound},
		{"internal", Internal("boom", errors.New("cause")), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	appErr := BusinessRule("Active reservation limit of 3 reached.")
	if AsAppError(appErr) != appErr {
		t.Errorf("expected AsAppError to return the same *AppError")
	}

	plain := errors.New("some driver error")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected plain errors to convert to %s, got %s", CodeInternal, converted.Code)
	}
	if converted.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", converted.StatusCode())
	}
	if converted.Message != "An unexpected error occurred" {
		t.Errorf("internal detail must not leak into the message, got %q", converted.Message)
	}
}
