package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"monotributo/internal/core"
)

var fixedNow = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

// testOptions returns deterministic options: a fixed clock and ids
// "inv-1", "inv-2", ...
func testOptions(d core.Direction) Options {
	n := 0
	return Options{
		Direction: d,
		ClientID:  "client-1",
		Now:       func() time.Time { return fixedNow },
		IDs: func() string {
			n++
			return fmt.Sprintf("inv-%d", n)
		},
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"csv", FormatDelimited},
		{".TXT", FormatFixedWidth},
		{"xlsx", FormatSpreadsheet},
		{"fixed-width", FormatFixedWidth},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, %v", tc.in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if got, err := FormatFromFilename("comprobantes.2025.CSV"); err != nil || got != FormatDelimited {
		t.Fatalf("FormatFromFilename = %q, %v", got, err)
	}
	if _, err := FormatFromFilename("README"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestParseDispatch(t *testing.T) {
	ctx := context.Background()
	csv := []byte("Fecha;Importe\n2025-01-02;10\n")

	res, err := Parse(ctx, FormatDelimited, csv, testOptions(core.Sale))
	if err != nil {
		t.Fatalf("Parse csv: %v", err)
	}
	if len(res.Invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(res.Invoices))
	}

	if _, err := Parse(ctx, Format("pdf"), csv, testOptions(core.Sale)); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := Parse(ctx, FormatDelimited, csv, Options{}); !errors.Is(err, core.ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}

	res, err = Parse(ctx, FormatSpreadsheet, []byte("garbage"), testOptions(core.Sale))
	if err != nil {
		t.Fatalf("unreadable workbook must not fail: %v", err)
	}
	if len(res.Invoices) != 0 || len(res.Skipped) != 1 {
		t.Fatalf("expected one skipped issue, got %+v", res)
	}
}

func TestDecodeText(t *testing.T) {
	// "Fecha de Emisión" in Windows-1252.
	latin := []byte("Fecha de Emisi\xf3n")
	if got := DecodeText(latin); got != "Fecha de Emisión" {
		t.Fatalf("unexpected decode %q", got)
	}
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Tipo")...)
	if got := DecodeText(bom); got != "Tipo" {
		t.Fatalf("BOM should be dropped, got %q", got)
	}
}

func TestSchemaResolve(t *testing.T) {
	r := DelimitedSchema.Resolve([]string{"NUMERO DESDE", "Fecha", "Número", " Imp.  Total "})
	if got := r[FieldNumber]; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("number candidates out of order: %v", got)
	}
	if !r.Has(FieldAmount) || r.Has(FieldPointOfSale) {
		t.Fatalf("unexpected resolution %v", r)
	}
	row := []string{"", "2025-01-01", "77", "10"}
	if got := r.Value(row, FieldNumber); got != "77" {
		t.Fatalf("first non-empty candidate should win, got %q", got)
	}
	if got := r.Value(row[:1], FieldDate); got != "" {
		t.Fatalf("short rows yield empty values, got %q", got)
	}
}
