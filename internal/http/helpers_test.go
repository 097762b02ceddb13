package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"monotributo/internal/core"
	applog "monotributo/internal/log"
	"monotributo/internal/services"
)

func TestErrorStatusAndType(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"no session", services.ErrNoSession, http.StatusUnauthorized, applog.ErrorTypeValidation},
		{"unknown client", fmt.Errorf("%w: c9", services.ErrClientNotFound), http.StatusNotFound, applog.ErrorTypeNotFound},
		{"bad direction", core.ErrInvalidDirection, http.StatusBadRequest, applog.ErrorTypeValidation},
		{"bad amount", core.ErrInvalidAmount, http.StatusUnprocessableEntity, applog.ErrorTypeValidation},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, applog.ErrorTypeValidation},
		{"anything else", errors.New("disk full"), http.StatusInternalServerError, applog.ErrorTypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := errorStatus(tt.err)
			if status != tt.wantStatus {
				t.Errorf("errorStatus() = %d, want %d", status, tt.wantStatus)
			}
			if got := errorType(status); got != tt.wantType {
				t.Errorf("errorType(%d) = %q, want %q", status, got, tt.wantType)
			}
		})
	}
}
