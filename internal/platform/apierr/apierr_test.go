package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid", Invalid("attempts required"), http.StatusBadRequest, "invalid_argument"},
		{"wrapped not found", fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{"api error", New(http.StatusConflict, "conflict", errors.New("busy")), http.StatusConflict, "conflict"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, code := StatusOf(tc.err)
			if status != tc.wantStatus || code != tc.wantCode {
				t.Fatalf("StatusOf: want=%d/%s got=%d/%s", tc.wantStatus, tc.wantCode, status, code)
			}
		})
	}
}
