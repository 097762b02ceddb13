package importer

import (
	"errors"
	"testing"

	"monotributo/internal/core"
)

func TestNewManualInvoice(t *testing.T) {
	in := ManualInput{
		Date:        "2025-06-15",
		InvoiceType: "013",
		PointOfSale: "5",
		Number:      "0042",
		Amount:      "350,25",
	}
	inv, err := NewManualInvoice(in, testOptions(core.Sale))
	if err != nil {
		t.Fatalf("NewManualInvoice: %v", err)
	}
	if inv.ID != "inv-1" || inv.ClientID != "client-1" || !inv.IsSale {
		t.Fatalf("unexpected identity %+v", inv)
	}
	if inv.PointOfSale != "0005" || inv.Number != "00000042" || inv.InvoiceTypeName != "Nota de Crédito C" {
		t.Fatalf("unexpected codes %+v", inv)
	}
	if inv.Description != "Venta Manual" || inv.Year != 2025 || inv.Month != 6 {
		t.Fatalf("unexpected defaults %+v", inv)
	}
	if !inv.TotalAmount.Equal(amount("350.25")) || !inv.TaxAmount.IsZero() {
		t.Fatalf("unexpected amount %s", inv.TotalAmount)
	}

	in.Description = "Kiosco"
	in.Date = "1/7/2025"
	in.InvoiceType = ""
	inv, err = NewManualInvoice(in, testOptions(core.Purchase))
	if err != nil {
		t.Fatalf("NewManualInvoice: %v", err)
	}
	if inv.Description != "Kiosco" || inv.Date != "2025-07-01" || inv.InvoiceType != "011" || inv.IsSale {
		t.Fatalf("unexpected purchase %+v", inv)
	}
}

func TestNewManualInvoiceValidation(t *testing.T) {
	base := ManualInput{Date: "2025-06-15", Number: "1", Amount: "10"}
	cases := []struct {
		name   string
		mutate func(*ManualInput)
		want   error
	}{
		{"missing number", func(m *ManualInput) { m.Number = " " }, core.ErrEmptyNumber},
		{"bad amount", func(m *ManualInput) { m.Amount = "diez" }, core.ErrInvalidAmount},
		{"bad date", func(m *ManualInput) { m.Date = "mañana" }, core.ErrInvalidDate},
		{"empty date", func(m *ManualInput) { m.Date = "" }, core.ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			if _, err := NewManualInvoice(in, testOptions(core.Sale)); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := NewManualInvoice(base, Options{Direction: "refund"}); !errors.Is(err, core.ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}
