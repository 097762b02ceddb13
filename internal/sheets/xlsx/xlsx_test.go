package xlsx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestFirstSheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Tipo", "Importe", "Fecha"},
		{"11", "1500.5", "05/03/2025"},
		{"6", "200", "06/03/2025"},
	})

	table, err := New(data).FirstSheet(context.Background())
	if err != nil {
		t.Fatalf("FirstSheet: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	if got := table.Header(); got[0] != "Tipo" || got[2] != "Fecha" {
		t.Fatalf("unexpected header %v", got)
	}
	if table[1][1] != "1500.5" || table[2][0] != "6" {
		t.Fatalf("unexpected cells %v", table)
	}
}

// buildFormattedWorkbook writes a numeric amount with a thousands format
// and a real date cell.
func buildFormattedWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Fecha", "Importe"}); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetCellValue(sheet, "A2", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("set date: %v", err)
	}
	if err := f.SetCellValue(sheet, "B2", 1234.56); err != nil {
		t.Fatalf("set amount: %v", err)
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	if err := f.SetCellStyle(sheet, "B2", "B2", style); err != nil {
		t.Fatalf("set style: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestFirstSheetReturnsRawValues(t *testing.T) {
	table, err := New(buildFormattedWorkbook(t)).FirstSheet(context.Background())
	if err != nil {
		t.Fatalf("FirstSheet: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table))
	}
	if got := table[1][1]; got != "1234.56" {
		t.Errorf("amount cell = %q, want 1234.56", got)
	}
	// 2025-03-05 is serial day 45721.
	if got := table[1][0]; got != "45721" {
		t.Errorf("date cell = %q, want serial 45721", got)
	}
}

func TestFirstSheetRejectsGarbage(t *testing.T) {
	if _, err := New([]byte("not a zip")).FirstSheet(context.Background()); err == nil {
		t.Fatal("expected error for invalid workbook")
	}
}

func TestFirstSheetHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil).FirstSheet(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
