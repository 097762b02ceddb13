package http

import (
	"errors"
	"net/http"
	"strings"

	"monotributo/internal/core"
	"monotributo/internal/importer"
	"monotributo/internal/ledger"
	applog "monotributo/internal/log"
	"monotributo/internal/services"
	"monotributo/internal/storage"
)

// SessionHeader carries the logged-in accountant's email. Authentication
// happens in front of this server.
const SessionHeader = "X-Session-Email"

// sessionEmail returns the trimmed, lower-cased session header.
func sessionEmail(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.Header.Get(SessionHeader)))
}

// scopeOf builds the storage scope for the {id} path value.
func scopeOf(r *http.Request) storage.Scope {
	return storage.Scope{SessionEmail: sessionEmail(r), ClientID: r.PathValue("id")}
}

// errorStatus maps service and domain errors to an HTTP status.
func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, ledger.ErrReportNotAvailable):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidDirection),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, ErrEmptyUpload):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyContent),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyNumber):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Server errors are logged and
// their detail is not echoed to the caller.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := errorStatus(err)
	fields := applog.NewFields().
		WithScope(sessionEmail(r), r.PathValue("id")).
		WithErrorType(errorType(status))
	if status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, fields)
		InternalServerError("internal error").Write(w)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
		fields.WithError(err).WithOperation(op).ToSlice()...)
	ErrorResponse(status, err.Error()).Write(w)
}

// errorType classifies a response status for the error_type log field.
func errorType(status int) string {
	switch {
	case status == http.StatusNotFound:
		return applog.ErrorTypeNotFound
	case status >= http.StatusInternalServerError:
		return applog.ErrorTypeInternal
	default:
		return applog.ErrorTypeValidation
	}
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, then trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}
