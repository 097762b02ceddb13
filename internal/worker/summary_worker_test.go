package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"monotributo/internal/amqp"
	"monotributo/internal/core"
	"monotributo/internal/ledger"
	"monotributo/internal/storage"
)

type fakeWriter struct {
	summaries []ledger.Summary
	err       error
}

func (f *fakeWriter) AppendSummary(_ context.Context, s ledger.Summary) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.summaries = append(f.summaries, s)
	return "'2026 Resumen'!A2:K2", nil
}

type fakeInvalidator struct {
	ids []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, clientID string) {
	f.ids = append(f.ids, clientID)
}

func seed(t *testing.T) *storage.Repository {
	t.Helper()
	ctx := context.Background()
	repo := storage.NewRepository(storage.NewMemoryStore())

	if err := repo.SaveClients(ctx, "acc@x.com", []core.Client{
		{ID: "c1", Name: "Ana", Category: "B"},
		{ID: "c2", Name: "Beto", Category: "A"},
	}); err != nil {
		t.Fatalf("SaveClients: %v", err)
	}
	if err := repo.SaveClients(ctx, "other@x.com", []core.Client{{ID: "c3", Name: "Ceci", Category: "C"}}); err != nil {
		t.Fatalf("SaveClients: %v", err)
	}
	invoices := []core.Invoice{
		{ID: "i1", InvoiceType: "011", Number: "1", TotalAmount: decimal.NewFromInt(1000), IsSale: true},
		{ID: "i2", InvoiceType: "013", Number: "2", TotalAmount: decimal.NewFromInt(200), IsSale: true},
		{ID: "i3", InvoiceType: "011", Number: "3", TotalAmount: decimal.NewFromInt(50), IsSale: false},
	}
	if err := repo.SaveInvoices(ctx, storage.Scope{SessionEmail: "acc@x.com", ClientID: "c1"}, invoices); err != nil {
		t.Fatalf("SaveInvoices: %v", err)
	}
	return repo
}

func TestHandleImported(t *testing.T) {
	repo := seed(t)
	writer := &fakeWriter{}
	reports := &fakeInvalidator{}
	w := NewSummaryWorker(repo, writer, reports)

	msg := amqp.NewInvoicesImportedMessage("acc@x.com", "c1", "csv", "sale", 3, 0)
	if err := w.HandleImported(context.Background(), msg); err != nil {
		t.Fatalf("HandleImported: %v", err)
	}

	if len(writer.summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(writer.summaries))
	}
	s := writer.summaries[0]
	if s.ClientID != "c1" || s.Category != "B" {
		t.Errorf("unexpected summary %+v", s)
	}
	if !s.Totals.SalesTotal.Equal(decimal.NewFromInt(800)) || !s.Totals.PurchasesTotal.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unexpected totals %+v", s.Totals)
	}
	if s.SalesCount != 2 || s.PurchasesCount != 1 {
		t.Errorf("unexpected counts %d/%d", s.SalesCount, s.PurchasesCount)
	}
	if len(reports.ids) != 1 || reports.ids[0] != "c1" {
		t.Errorf("report not invalidated: %v", reports.ids)
	}
}

func TestHandleImportedUnknownClient(t *testing.T) {
	writer := &fakeWriter{}
	w := NewSummaryWorker(seed(t), writer, nil)

	msg := amqp.NewInvoicesImportedMessage("acc@x.com", "gone", "delete", "sale", 0, 0)
	if err := w.HandleImported(context.Background(), msg); err != nil {
		t.Fatalf("deleted client should be skipped, got %v", err)
	}
	if len(writer.summaries) != 0 {
		t.Errorf("no summary expected, got %d", len(writer.summaries))
	}
}

func TestHandleImportedWriterError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("quota exceeded")}
	w := NewSummaryWorker(seed(t), writer, nil)

	msg := amqp.NewInvoicesImportedMessage("acc@x.com", "c2", "manual", "sale", 1, 0)
	err := w.HandleImported(context.Background(), msg)
	if err == nil || !errors.Is(err, writer.err) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestSummarizeAll(t *testing.T) {
	writer := &fakeWriter{}
	w := NewSummaryWorker(seed(t), writer, nil)

	written, failed, err := w.SummarizeAll(context.Background())
	if err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}
	if written != 3 || failed != 0 {
		t.Fatalf("written=%d failed=%d, want 3/0", written, failed)
	}
	ids := []string{writer.summaries[0].ClientID, writer.summaries[1].ClientID, writer.summaries[2].ClientID}
	if ids[0] != "c1" || ids[1] != "c2" || ids[2] != "c3" {
		t.Errorf("unexpected order %v", ids)
	}

	failing := NewSummaryWorker(seed(t), &fakeWriter{err: errors.New("down")}, nil)
	written, failed, err = failing.SummarizeAll(context.Background())
	if err != nil || written != 0 || failed != 3 {
		t.Errorf("written=%d failed=%d err=%v, want 0/3/nil", written, failed, err)
	}
}
