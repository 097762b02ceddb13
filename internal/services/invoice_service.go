package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"monotributo/internal/amqp"
	"monotributo/internal/core"
	"monotributo/internal/importer"
	"monotributo/internal/ledger"
	"monotributo/internal/sheets"
	"monotributo/internal/storage"
)

// SourceGoogleSheets tags imports read from a Google spreadsheet.
const SourceGoogleSheets = "gsheet"

type (
	// ImportOutcome reports one import run back to the caller.
	ImportOutcome struct {
		Source     string           `json:"source"`
		Direction  core.Direction   `json:"direction"`
		Parsed     int              `json:"parsed"`
		Accepted   int              `json:"accepted"`
		Duplicates int              `json:"duplicates"`
		Skipped    []importer.Issue `json:"skipped"`
		Warnings   []importer.Issue `json:"warnings"`
	}

	// InvoiceService imports, lists and edits a client's invoices. Writes
	// replace the whole collection, so they are serialized here.
	InvoiceService struct {
		repo      *storage.Repository
		imports   storage.ImportLog
		publisher Publisher
		deps

		mu sync.Mutex
	}
)

// NewInvoiceService wires the repository with the optional import log and
// publisher; either may be nil.
func NewInvoiceService(repo *storage.Repository, imports storage.ImportLog, publisher Publisher) *InvoiceService {
	return &InvoiceService{
		repo:      repo,
		imports:   imports,
		publisher: publisher,
		deps:      defaultDeps(),
	}
}

func (s *InvoiceService) options(scope storage.Scope, d core.Direction) importer.Options {
	return importer.Options{Direction: d, ClientID: scope.ClientID, Now: s.now, IDs: s.ids}
}

// Import parses data in the declared format and merges the result into the
// client's collection.
func (s *InvoiceService) Import(ctx context.Context, scope storage.Scope, format importer.Format, data []byte, d core.Direction) (ImportOutcome, error) {
	if err := d.Validate(); err != nil {
		return ImportOutcome{}, err
	}
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return ImportOutcome{}, err
	}
	res, err := importer.Parse(ctx, format, data, s.options(scope, d))
	if err != nil {
		return ImportOutcome{}, err
	}
	return s.merge(ctx, scope, string(format), d, res)
}

// ImportTable imports the first sheet of source, e.g. a Google spreadsheet.
func (s *InvoiceService) ImportTable(ctx context.Context, scope storage.Scope, source sheets.TableSource, d core.Direction) (ImportOutcome, error) {
	if err := d.Validate(); err != nil {
		return ImportOutcome{}, err
	}
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return ImportOutcome{}, err
	}
	table, err := source.FirstSheet(ctx)
	if err != nil {
		return ImportOutcome{}, fmt.Errorf("read sheet: %w", err)
	}
	return s.merge(ctx, scope, SourceGoogleSheets, d, importer.ParseTable(table, s.options(scope, d)))
}

func (s *InvoiceService) merge(ctx context.Context, scope storage.Scope, source string, d core.Direction, res importer.Result) (ImportOutcome, error) {
	s.mu.Lock()
	existing, err := s.repo.Invoices(ctx, scope)
	if err != nil {
		s.mu.Unlock()
		return ImportOutcome{}, fmt.Errorf("load invoices: %w", err)
	}
	merged := importer.Merge(existing, res.Invoices)
	if len(merged.Accepted) > 0 {
		if err := s.repo.SaveInvoices(ctx, scope, merged.Invoices); err != nil {
			s.mu.Unlock()
			return ImportOutcome{}, fmt.Errorf("save invoices: %w", err)
		}
	}
	s.mu.Unlock()

	out := ImportOutcome{
		Source:     source,
		Direction:  d,
		Parsed:     len(res.Invoices),
		Accepted:   len(merged.Accepted),
		Duplicates: merged.Duplicates,
		Skipped:    nonNil(res.Skipped),
		Warnings:   nonNil(res.Warnings),
	}

	slog.DebugContext(ctx, "Imported invoices merged",
		"session", scope.SessionEmail,
		"client_id", scope.ClientID,
		"source", source,
		"direction", string(d),
		"parsed", out.Parsed,
		"accepted", out.Accepted,
		"duplicates", out.Duplicates,
		"skipped", len(out.Skipped),
		"warnings", len(out.Warnings))

	s.record(ctx, scope, out)
	if out.Accepted > 0 {
		s.publish(ctx, scope, source, d, out.Accepted, out.Duplicates)
	}
	return out, nil
}

func nonNil(issues []importer.Issue) []importer.Issue {
	if issues == nil {
		return []importer.Issue{}
	}
	return issues
}

func (s *InvoiceService) record(ctx context.Context, scope storage.Scope, out ImportOutcome) {
	if s.imports == nil {
		return
	}
	rec := storage.ImportRecord{
		Scope:      scope,
		Format:     out.Source,
		Direction:  string(out.Direction),
		Parsed:     out.Parsed,
		Accepted:   out.Accepted,
		Duplicates: out.Duplicates,
		Skipped:    len(out.Skipped),
		Warnings:   len(out.Warnings),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.imports.RecordImport(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "Failed to record import", "client_id", scope.ClientID, "error", err)
	}
}

// publish never fails the operation; the collection is already saved.
func (s *InvoiceService) publish(ctx context.Context, scope storage.Scope, source string, d core.Direction, accepted, duplicates int) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewInvoicesImportedMessage(scope.SessionEmail, scope.ClientID, source, string(d), accepted, duplicates)
	if err := s.publisher.PublishInvoicesImported(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish invoices imported message",
			"client_id", scope.ClientID, "error", err)
	}
}

// AddManual validates in and prepends the invoice without a dedup check.
func (s *InvoiceService) AddManual(ctx context.Context, scope storage.Scope, d core.Direction, in importer.ManualInput) (core.Invoice, error) {
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return core.Invoice{}, err
	}
	inv, err := importer.NewManualInvoice(in, s.options(scope, d))
	if err != nil {
		return core.Invoice{}, err
	}

	s.mu.Lock()
	existing, err := s.repo.Invoices(ctx, scope)
	if err == nil {
		err = s.repo.SaveInvoices(ctx, scope, importer.Prepend(existing, inv))
	}
	s.mu.Unlock()
	if err != nil {
		return core.Invoice{}, fmt.Errorf("add invoice: %w", err)
	}

	s.publish(ctx, scope, "manual", d, 1, 0)
	return inv, nil
}

// Delete removes one invoice by id.
func (s *InvoiceService) Delete(ctx context.Context, scope storage.Scope, invoiceID string) error {
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.Invoices(ctx, scope)
	if err != nil {
		return fmt.Errorf("load invoices: %w", err)
	}
	kept := make([]core.Invoice, 0, len(existing))
	var removed *core.Invoice
	for i := range existing {
		if existing[i].ID == invoiceID && removed == nil {
			removed = &existing[i]
			continue
		}
		kept = append(kept, existing[i])
	}
	if removed == nil {
		return fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceID)
	}
	if err := s.repo.SaveInvoices(ctx, scope, kept); err != nil {
		return fmt.Errorf("save invoices: %w", err)
	}
	s.publish(ctx, scope, "delete", removed.Direction(), 0, 0)
	return nil
}

// Clear removes every invoice of one direction and returns how many went.
func (s *InvoiceService) Clear(ctx context.Context, scope storage.Scope, d core.Direction) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.Invoices(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("load invoices: %w", err)
	}
	kept := make([]core.Invoice, 0, len(existing))
	for _, inv := range existing {
		if inv.IsSale != d.IsSale() {
			kept = append(kept, inv)
		}
	}
	removed := len(existing) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.repo.SaveInvoices(ctx, scope, kept); err != nil {
		return 0, fmt.Errorf("save invoices: %w", err)
	}
	s.publish(ctx, scope, "clear", d, 0, 0)
	return removed, nil
}

// List returns the filtered invoices with collection-wide totals. A zero
// period means the current year up to this month.
func (s *InvoiceService) List(ctx context.Context, scope storage.Scope, d core.Direction, p core.Period) (ledger.View, error) {
	if err := d.Validate(); err != nil {
		return ledger.View{}, err
	}
	if p == (core.Period{}) {
		p = core.CurrentYearPeriod(s.now())
	} else if err := p.Validate(); err != nil {
		return ledger.View{}, err
	}
	c, err := findClient(ctx, s.repo, scope)
	if err != nil {
		return ledger.View{}, err
	}
	invoices, err := s.repo.Invoices(ctx, scope)
	if err != nil {
		return ledger.View{}, fmt.Errorf("load invoices: %w", err)
	}
	return ledger.NewView(invoices, d, p, c.Category), nil
}

func (s *InvoiceService) Summary(ctx context.Context, scope storage.Scope) (ledger.Summary, error) {
	c, err := findClient(ctx, s.repo, scope)
	if err != nil {
		return ledger.Summary{}, err
	}
	invoices, err := s.repo.Invoices(ctx, scope)
	if err != nil {
		return ledger.Summary{}, fmt.Errorf("load invoices: %w", err)
	}
	return ledger.Summarize(c, invoices), nil
}

// Months returns the monthly breakdown for year, or the current year
// when year is 0.
func (s *InvoiceService) Months(ctx context.Context, scope storage.Scope, year int) ([]ledger.MonthTotal, error) {
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return nil, err
	}
	if year == 0 {
		year = s.now().Year()
	}
	invoices, err := s.repo.Invoices(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	return ledger.MonthlyBreakdown(invoices, year), nil
}

// ImportHistory lists the most recent imports, newest first.
func (s *InvoiceService) ImportHistory(ctx context.Context, scope storage.Scope, limit int) ([]storage.ImportRecord, error) {
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return nil, err
	}
	if s.imports == nil {
		return []storage.ImportRecord{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	recs, err := s.imports.ImportHistory(ctx, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("import history: %w", err)
	}
	if recs == nil {
		recs = []storage.ImportRecord{}
	}
	return recs, nil
}
