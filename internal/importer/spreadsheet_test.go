package importer

import (
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"monotributo/internal/core"
	"monotributo/internal/sheets"
)

func TestParseTable(t *testing.T) {
	table := sheets.Table{
		{"Tipo", "Punto de Venta", "Número", "Importe", "Fecha", "Denominación Emisor"},
		{"6 - Factura B", "2", "15", "2500,75", "05/03/2025", "Librería Sur"},
		{"", "", "", "", "", ""},
		{"", "", "16"},
		{"11", "1", "17", "100", "45721", ""},
	}

	res := ParseTable(table, testOptions(core.Purchase))
	if len(res.Invoices) != 3 {
		t.Fatalf("expected 3 invoices, got %+v", res)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Line != 3 {
		t.Fatalf("expected empty row 3 skipped, got %+v", res.Skipped)
	}

	first := res.Invoices[0]
	if first.InvoiceType != "006" || first.PointOfSale != "0002" || first.Number != "00000015" {
		t.Fatalf("unexpected codes %+v", first)
	}
	if first.Date != "2025-03-05" || first.Description != "Librería Sur" || !first.TotalAmount.Equal(amount("2500.75")) {
		t.Fatalf("unexpected invoice %+v", first)
	}

	defaults := res.Invoices[1]
	if defaults.InvoiceType != "011" || defaults.PointOfSale != "0001" || defaults.Date != "2026-10-18" {
		t.Fatalf("defaults not applied %+v", defaults)
	}
	if defaults.Description != "Compra" || !defaults.TotalAmount.IsZero() || defaults.IsSale {
		t.Fatalf("unexpected default invoice %+v", defaults)
	}

	serial := res.Invoices[2]
	if serial.Date != "2025-03-05" || serial.Description != "Compra" {
		t.Fatalf("serial date not converted %+v", serial)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", res.Warnings)
	}
}

func TestParseTableEmpty(t *testing.T) {
	res := ParseTable(nil, testOptions(core.Sale))
	if len(res.Invoices) != 0 || len(res.Skipped) != 1 {
		t.Fatalf("expected missing header issue, got %+v", res)
	}
	res = ParseTable(sheets.Table{{"Tipo", "Importe"}}, testOptions(core.Sale))
	if len(res.Invoices) != 0 || len(res.Skipped) != 0 {
		t.Fatalf("header only yields nothing, got %+v", res)
	}
}

func TestSerialDate(t *testing.T) {
	cases := map[string]string{
		"45721":      "2025-03-05",
		"2025-03-05": "2025-03-05",
		"05/03/2025": "05/03/2025",
		"12":         "12",
		"":           "",
	}
	for in, want := range cases {
		if got := serialDate(in); got != want {
			t.Errorf("serialDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseWorkbookKeepsNumericCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Fecha", "Tipo", "Importe"}); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 11, 1234.56}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	if err := f.SetCellStyle(sheet, "C2", "C2", style); err != nil {
		t.Fatalf("set style: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	res, err := Parse(context.Background(), FormatSpreadsheet, buf.Bytes(), testOptions(core.Sale))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Invoices) != 1 || len(res.Warnings) != 0 {
		t.Fatalf("expected one clean invoice, got %+v", res)
	}
	inv := res.Invoices[0]
	if !inv.TotalAmount.Equal(amount("1234.56")) {
		t.Errorf("total = %s, want 1234.56", inv.TotalAmount)
	}
	if inv.Date != "2025-03-05" || inv.InvoiceType != "011" {
		t.Errorf("unexpected invoice %+v", inv)
	}
}
