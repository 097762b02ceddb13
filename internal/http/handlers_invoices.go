package http

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"monotributo/internal/core"
	"monotributo/internal/importer"
	applog "monotributo/internal/log"
	"monotributo/internal/services"
)

// handleListInvoices returns one direction's invoices inside the period
// together with collection-wide totals and category usage.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := ParseDirectionParam(q)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	p, err := ParsePeriodParams(q)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	view, err := s.svc.Invoices.List(r.Context(), scopeOf(r), d, p)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(view).Write(w)
}

// handleAddInvoice adds one invoice typed in by hand. The direction may
// come from the query or the body.
func (s *Server) handleAddInvoice(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	raw := r.URL.Query().Get("direction")
	if raw == "" {
		raw = p.Get("direction")
	}
	d := core.Sale
	if strings.TrimSpace(raw) != "" {
		var err error
		if d, err = core.ParseDirection(raw); err != nil {
			writeError(w, r, applog.OpCreate, err)
			return
		}
	}

	in := importer.ManualInput{
		Date:        p.Get("date"),
		InvoiceType: p.Get("invoiceType"),
		PointOfSale: p.Get("pointOfSale"),
		Number:      p.Get("number"),
		Amount:      p.Get("amount"),
		Description: p.Get("description"),
	}
	inv, err := s.svc.Invoices.AddManual(r.Context(), scopeOf(r), d, in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.invoicesAccepted, 1)
	s.svc.Reports.Invalidate(r.Context(), inv.ClientID)

	NewResponse().Status(http.StatusCreated).JSON(inv).Write(w)
}

// handleImport parses an uploaded export and merges it into the client's
// invoices.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	d, err := ParseDirectionParam(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}
	up, err := ReadUpload(w, r)
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}

	out, err := s.svc.Invoices.Import(r.Context(), scopeOf(r), up.Format, up.Data, d)
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}
	s.importDone(r, out)
	NewResponse().JSON(out).Write(w)
}

// handleImportGoogle reads the first sheet of a Google spreadsheet given by
// id or URL in the "spreadsheet" body field.
func (s *Server) handleImportGoogle(w http.ResponseWriter, r *http.Request) {
	if s.svc.Sheets == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Google Sheets import is not configured").Write(w)
		return
	}
	d, err := ParseDirectionParam(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	ref := p.Get("spreadsheet")
	if ref == "" {
		BadRequestError("spreadsheet is required").Write(w)
		return
	}

	out, err := s.svc.Invoices.ImportTable(r.Context(), scopeOf(r), s.svc.Sheets(ref), d)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) || errors.Is(err, services.ErrNoSession) {
			writeError(w, r, applog.OpImport, err)
			return
		}
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Google Sheets import failed", err, applog.ComponentSheets, applog.OpImport,
				applog.NewFields().WithScope(sessionEmail(r), r.PathValue("id")).WithSheetsRef(ref))
		ErrorResponse(http.StatusBadGateway, "could not read spreadsheet").Write(w)
		return
	}
	s.importDone(r, out)
	NewResponse().JSON(out).Write(w)
}

func (s *Server) importDone(r *http.Request, out services.ImportOutcome) {
	scope := scopeOf(r)
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogImport(r.Context(),
		scope.SessionEmail, scope.ClientID, out.Source, string(out.Direction),
		out.Parsed, out.Accepted, out.Duplicates, len(out.Skipped), len(out.Warnings))

	atomic.AddInt64(&s.appMetrics.imports, 1)
	atomic.AddInt64(&s.appMetrics.invoicesAccepted, int64(out.Accepted))
	if out.Accepted > 0 {
		s.svc.Reports.Invalidate(r.Context(), scope.ClientID)
	}
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseIntParam(r.URL.Query(), "limit", 0)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	recs, err := s.svc.Invoices.ImportHistory(r.Context(), scopeOf(r), limit)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(recs).Write(w)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	scope := scopeOf(r)
	if err := s.svc.Invoices.Delete(r.Context(), scope, r.PathValue("invoiceID")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.svc.Reports.Invalidate(r.Context(), scope.ClientID)
	NewResponse().Status(http.StatusNoContent).Write(w)
}

// handleClearInvoices removes every invoice of ?direction=, which is
// required here so a bare DELETE cannot wipe sales by default.
func (s *Server) handleClearInvoices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("direction")
	if strings.TrimSpace(raw) == "" {
		BadRequestError("direction is required").Write(w)
		return
	}
	d, err := core.ParseDirection(raw)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}

	scope := scopeOf(r)
	removed, err := s.svc.Invoices.Clear(r.Context(), scope, d)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.svc.Reports.Invalidate(r.Context(), scope.ClientID)
	NewResponse().JSON(map[string]int{"removed": removed}).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Invoices.Summary(r.Context(), scopeOf(r))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(sum).Write(w)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	year, err := ParseIntParam(r.URL.Query(), "year", 0)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	months, err := s.svc.Invoices.Months(r.Context(), scopeOf(r), year)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(months).Write(w)
}
