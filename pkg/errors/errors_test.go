package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("database error")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("Rental"), CodeNotFound, http.StatusNotFound, "Rental not found"},
		{"validation", Validation("bad rental", nil), CodeValidation, http.StatusUnprocessableEntity, "bad rental"},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest, "bad id"},
		{"unauthorized", Unauthorized("who are you"), CodeUnauthorized, http.StatusUnauthorized, "who are you"},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden, "not yours"},
		{"conflict", Conflict("locked"), CodeConflict, http.StatusConflict, "locked"},
		{"internal", Internal("boom", cause), CodeInternal, http.StatusInternalServerError, "boom"},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout, "slow"},
		{"unavailable", Unavailable("Kafka"), CodeUnavailable, http.StatusServiceUnavailable, "Kafka is temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Rental", "abc")

	if err.Details["id"] != "abc" || err.Details["resource"] != "Rental" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestDomainErrors(t *testing.T) {
	t.Run("illegal transition is forbidden", func(t *testing.T) {
		err := IllegalTransition("returned", "approved")
		if err.StatusCode() != http.StatusForbidden {
			t.Errorf("StatusCode() = %d, want %d", err.StatusCode(), http.StatusForbidden)
		}
		if err.Details["from"] != "returned" || err.Details["to"] != "approved" {
			t.Errorf("unexpected details: %v", err.Details)
		}
	})

	t.Run("state changed is a conflict", func(t *testing.T) {
		err := StateChanged("pending", "approved")
		if err.StatusCode() != http.StatusConflict {
			t.Errorf("StatusCode() = %d, want %d", err.StatusCode(), http.StatusConflict)
		}
		if err.Details["current"] != "approved" {
			t.Errorf("unexpected details: %v", err.Details)
		}
	})

	t.Run("capacity exceeded is a conflict", func(t *testing.T) {
		err := CapacityExceeded(map[string]any{"item-1": 2})
		if err.Code != CodeCapacityExceeded || err.StatusCode() != http.StatusConflict {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestAppError_Error(t *testing.T) {
	plain := &AppError{Code: CodeNotFound, Message: "rental not found"}
	if got := plain.Error(); got != "NOT_FOUND: rental not found" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Internal("internal error", errors.New("connection refused"))
	if got := wrapped.Error(); got != "INTERNAL_ERROR: internal error (caused by: connection refused)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appErr := Wrap(cause, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, cause) {
		t.Errorf("errors.Is should find the original error")
	}
}

func TestAppError_ZeroStatusDefaultsToInternal(t *testing.T) {
	err := &AppError{Code: CodeInternal}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want %d", err.StatusCode(), http.StatusInternalServerError)
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Rental")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(fmt.Errorf("context: %w", appErr)) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(errors.New("regular error")) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("locked")
	if AsAppError(fmt.Errorf("tx: %w", appErr)) != appErr {
		t.Errorf("AsAppError() should unwrap to the same AppError")
	}

	regularErr := errors.New("regular error")
	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	var resp ErrorResponse
	if err := json.Unmarshal(NotFoundWithID("Rental", "12345").ToJSON(), &resp); err != nil {
		t.Fatalf("ToJSON() produced invalid JSON: %v", err)
	}

	if resp.Code != CodeNotFound {
		t.Errorf("Code = %s, want %s", resp.Code, CodeNotFound)
	}
	if resp.Details["id"] != "12345" {
		t.Errorf("Details[id] = %v, want 12345", resp.Details["id"])
	}
}
