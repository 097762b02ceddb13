package http

import (
	"bytes"
	"errors"
	"net/http"
	"sync/atomic"

	"monotributo/internal/ledger"
	applog "monotributo/internal/log"
)

type reportPage struct {
	Available bool
	Report    ledger.PublicReport
}

// handleReport renders the public billing report of a client. An unknown id
// still gets a 200 page stating that the report is not available.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	atomic.AddInt64(&s.appMetrics.reportViews, 1)

	page := reportPage{Available: true}
	report, err := s.svc.Reports.PublicReport(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, ledger.ErrReportNotAvailable):
		page.Available = false
	case err != nil:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Failed to build public report", err, applog.ComponentLedger, applog.OpRead, nil)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	default:
		page.Report = report
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "report.html", page); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Failed to render report", err, applog.ComponentTemplate, applog.OpRender, nil)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Reports.PublicReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.reportViews, 1)
	NewResponse().JSON(report).Write(w)
}
