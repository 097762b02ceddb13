package worker

import (
	"context"
	"fmt"
	"log/slog"

	"monotributo/internal/amqp"
	"monotributo/internal/core"
	"monotributo/internal/ledger"
	applog "monotributo/internal/log"
	"monotributo/internal/sheets"
	"monotributo/internal/storage"
)

// ReportInvalidator drops a cached public report.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, clientID string)
}

// SummaryWorker recomputes a client's ledger summary whenever its invoice
// collection changes and appends it to the reporting sheet.
type SummaryWorker struct {
	repo    *storage.Repository
	writer  sheets.SummaryWriter
	reports ReportInvalidator
}

// NewSummaryWorker builds a worker; reports may be nil.
func NewSummaryWorker(repo *storage.Repository, writer sheets.SummaryWriter, reports ReportInvalidator) *SummaryWorker {
	return &SummaryWorker{
		repo:    repo,
		writer:  writer,
		reports: reports,
	}
}

// HandleImported processes one invoices-imported message from AMQP. A
// client deleted since the message was published is acknowledged and
// skipped.
func (w *SummaryWorker) HandleImported(ctx context.Context, msg *amqp.InvoicesImportedMessage) error {
	slog.InfoContext(ctx, "Processing invoices imported message",
		"session", msg.SessionEmail,
		"client_id", msg.ClientID,
		"source", msg.Source,
		"accepted", msg.Accepted)

	scope := storage.Scope{SessionEmail: msg.SessionEmail, ClientID: msg.ClientID}
	client, ok, err := w.lookup(ctx, scope)
	if err != nil {
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "Client no longer exists, skipping summary",
			"session", msg.SessionEmail,
			"client_id", msg.ClientID)
		return nil
	}

	if w.reports != nil {
		w.reports.Invalidate(ctx, msg.ClientID)
	}

	return w.appendSummary(ctx, client, scope)
}

// SummarizeAll appends a summary row for every client of every session.
// It backs up the message path after downtime. Per-client failures are
// logged and counted, not returned.
func (w *SummaryWorker) SummarizeAll(ctx context.Context) (written, failed int, err error) {
	sessions, err := w.repo.Sessions(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list sessions: %w", err)
	}
	for _, email := range sessions {
		clients, err := w.repo.Clients(ctx, email)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load clients", "session", email, "error", err)
			failed++
			continue
		}
		for _, c := range clients {
			if ctx.Err() != nil {
				return written, failed, ctx.Err()
			}
			scope := storage.Scope{SessionEmail: email, ClientID: c.ID}
			if err := w.appendSummary(ctx, c, scope); err != nil {
				slog.ErrorContext(ctx, "Failed to write summary", "client_id", c.ID, "error", err)
				failed++
				continue
			}
			written++
		}
	}

	slog.InfoContext(ctx, "Summary pass completed",
		"sessions", len(sessions),
		"written", written,
		"errors", failed)
	return written, failed, nil
}

func (w *SummaryWorker) lookup(ctx context.Context, scope storage.Scope) (core.Client, bool, error) {
	clients, err := w.repo.Clients(ctx, scope.SessionEmail)
	if err != nil {
		return core.Client{}, false, fmt.Errorf("load clients: %w", err)
	}
	for _, c := range clients {
		if c.ID == scope.ClientID {
			return c, true, nil
		}
	}
	return core.Client{}, false, nil
}

func (w *SummaryWorker) appendSummary(ctx context.Context, client core.Client, scope storage.Scope) error {
	invoices, err := w.repo.Invoices(ctx, scope)
	if err != nil {
		return fmt.Errorf("load invoices: %w", err)
	}
	summary := ledger.Summarize(client, invoices)

	ref, err := w.writer.AppendSummary(ctx, summary)
	if err != nil {
		return fmt.Errorf("append summary: %w", err)
	}

	slog.InfoContext(ctx, "Summary written",
		applog.FieldOperation, applog.OpAppend,
		applog.FieldClientID, client.ID,
		applog.FieldSheetsRef, ref,
		"sales_total", summary.Totals.SalesTotal.StringFixed(2),
		"usage_percent", summary.Usage.Percent)
	return nil
}
