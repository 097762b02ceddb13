package sheets

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"monotributo/internal/ledger"
)

func TestTable(t *testing.T) {
	var empty Table
	if empty.Header() != nil || empty.Rows() != nil {
		t.Error("empty table should have no header and no rows")
	}

	tbl := FromValues([][]interface{}{
		{"Fecha", "Importe"},
		{"05/03/2025", 1500.5},
		{nil, true},
	})
	if got := tbl.Header(); len(got) != 2 || got[1] != "Importe" {
		t.Errorf("Header() = %v", got)
	}
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("Rows() = %v", rows)
	}
	if rows[0][1] != "1500.5" || rows[1][0] != "" || rows[1][1] != "true" {
		t.Errorf("unexpected cells %v", rows)
	}
}

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewLogWriter(slog.New(slog.NewTextHandler(&buf, nil)))

	ref, err := w.AppendSummary(context.Background(), ledger.Summary{
		ClientID: "c1",
		Totals:   ledger.Totals{SalesTotal: decimal.NewFromInt(1500)},
	})
	if err != nil || ref != "log" {
		t.Fatalf("AppendSummary = %q, %v", ref, err)
	}
	if !strings.Contains(buf.String(), "client_id=c1") || !strings.Contains(buf.String(), "sales_total=1500.00") {
		t.Errorf("unexpected log line %s", buf.String())
	}
}
