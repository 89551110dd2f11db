package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "verleih/pkg/errors"
)

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"defaults", "", 10, 0, false},
		{"explicit", "?limit=25&offset=50", 25, 50, false},
		{"limit capped", "?limit=1000", 100, 0, false},
		{"negative offset", "?offset=-3", 10, 0, false},
		{"bad limit", "?limit=abc", 0, 0, true},
		{"bad offset", "?offset=x", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/depots/1/rentals"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestActorID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := ActorID(r); err == nil {
		t.Fatal("expected error for missing header")
	}

	r.Header.Set(ActorHeader, " user-1 ")
	actor, err := ActorID(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor != "user-1" {
		t.Errorf("actor = %q, want user-1", actor)
	}
}

func TestExtractTime(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?start_date=2024-03-04T10:00:00%2B02:00&bad=yesterday", nil)

	got, ok, err := ExtractTime(r, "start_date")
	if err != nil || !ok {
		t.Fatalf("ExtractTime() = %v, %v, %v", got, ok, err)
	}
	if want := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, ok, err := ExtractTime(r, "return_date"); ok || err != nil {
		t.Errorf("missing parameter should be absent without error")
	}
	if _, _, err := ExtractTime(r, "bad"); err == nil {
		t.Errorf("expected parse error")
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", apperrors.NotFound("Rental"), http.StatusNotFound, apperrors.CodeNotFound},
		{"illegal transition", apperrors.IllegalTransition("returned", "approved"), http.StatusForbidden, apperrors.CodeIllegalTransition},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, tt.err); err != nil {
				t.Fatalf("WriteError() error = %v", err)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
		})
	}
}
