package importer

import (
	"testing"

	"monotributo/internal/core"
)

const salesCSV = `Fecha de Emisión;Tipo de Comprobante;Punto de Venta;Número Desde;Imp. Total;Denominación Receptor;Denominación Emisor
05/03/2025;11 - Factura C;1;1;1500,50;ACME SA;Yo
06/03/2025;11 - Factura C;1;3;200;Beta SRL;Yo

07/03/2025;13 - Nota de Crédito C;00001;4;50;Gamma;Yo
`

func TestParseDelimitedSales(t *testing.T) {
	res := ParseDelimited(salesCSV, testOptions(core.Sale))

	if len(res.Invoices) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(res.Invoices))
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Line != 4 {
		t.Fatalf("expected blank line 4 skipped, got %+v", res.Skipped)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", res.Warnings)
	}

	first := res.Invoices[0]
	want := core.Invoice{
		ID:              "inv-1",
		ClientID:        "client-1",
		Date:            "2025-03-05",
		InvoiceType:     "011",
		InvoiceTypeName: "Factura C",
		PointOfSale:     "0001",
		Number:          "00000001",
		Description:     "ACME SA",
		Month:           3,
		Year:            2025,
		IsSale:          true,
	}
	if first.ID != want.ID || first.ClientID != want.ClientID || first.Date != want.Date ||
		first.InvoiceType != want.InvoiceType || first.InvoiceTypeName != want.InvoiceTypeName ||
		first.PointOfSale != want.PointOfSale || first.Number != want.Number ||
		first.Description != want.Description || first.Month != want.Month ||
		first.Year != want.Year || first.IsSale != want.IsSale {
		t.Fatalf("unexpected invoice\n got %+v\nwant %+v", first, want)
	}
	if !first.TotalAmount.Equal(amount("1500.5")) || !first.NetAmount.Equal(first.TotalAmount) || !first.TaxAmount.IsZero() {
		t.Fatalf("unexpected amounts %s/%s/%s", first.NetAmount, first.TaxAmount, first.TotalAmount)
	}

	nc := res.Invoices[2]
	if nc.InvoiceType != "013" || nc.PointOfSale != "0001" || !core.IsCreditNote(nc.InvoiceType) {
		t.Fatalf("unexpected credit note %+v", nc)
	}
}

func TestParseDelimitedPurchasesCommaQuoted(t *testing.T) {
	text := "\"Fecha\",\"Tipo\",\"Punto de Venta\",\"Número\",\"Importe\",\"Denominación Emisor\"\r\n" +
		"\"2025-01-10\",\"6 - Factura B\",\"0002\",\"00000099\",\"1234.56\",\"Proveedor, SA\"\r\n"

	res := ParseDelimited(text, testOptions(core.Purchase))
	if len(res.Invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d (%+v)", len(res.Invoices), res)
	}
	inv := res.Invoices[0]
	if inv.IsSale || inv.Description != "Proveedor, SA" || inv.Number != "00000099" || inv.PointOfSale != "0002" {
		t.Fatalf("unexpected invoice %+v", inv)
	}
	if inv.InvoiceType != "006" || inv.InvoiceTypeName != "Factura B" {
		t.Fatalf("unexpected type %s/%s", inv.InvoiceType, inv.InvoiceTypeName)
	}
	if inv.Year != 2025 || inv.Month != 1 {
		t.Fatalf("unexpected period %d/%d", inv.Year, inv.Month)
	}
}

func TestParseDelimitedDefaultsAndWarnings(t *testing.T) {
	text := "Fecha;Tipo;Importe\n2025-02-01\n2025-02-02;999;abc\n"
	res := ParseDelimited(text, testOptions(core.Sale))

	if len(res.Invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(res.Invoices))
	}
	short := res.Invoices[0]
	if short.PointOfSale != "0001" || short.Number != "00000000" || short.Description != "Sin nombre" {
		t.Fatalf("defaults not applied: %+v", short)
	}
	if !short.TotalAmount.IsZero() || short.InvoiceType != "000" {
		t.Fatalf("unexpected short row %+v", short)
	}

	unknown := res.Invoices[1]
	if unknown.InvoiceTypeName != "Tipo 999" || !unknown.TotalAmount.IsZero() {
		t.Fatalf("unexpected fallback row %+v", unknown)
	}

	// Row 2: unknown "000" type and missing amount. Row 3: unknown type and
	// unparsable amount.
	if len(res.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %+v", res.Warnings)
	}
	for _, w := range res.Warnings {
		if w.Line != 2 && w.Line != 3 {
			t.Fatalf("warning on unexpected line %+v", w)
		}
	}
}

func TestParseDelimitedTooShort(t *testing.T) {
	for _, text := range []string{"", "Fecha;Importe", "Fecha;Importe\n"} {
		res := ParseDelimited(text, testOptions(core.Sale))
		if len(res.Invoices) != 0 || len(res.Skipped) != 0 {
			t.Fatalf("%q: expected empty result, got %+v", text, res)
		}
	}
}

func TestParseDelimitedUnquotedGarbage(t *testing.T) {
	// A stray quote in the middle of a field must not abort the row.
	text := "Fecha,Importe,Denominación Receptor\n2025-04-01,10,Bar \"El Tano\n"
	res := ParseDelimited(text, testOptions(core.Sale))
	if len(res.Invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %+v", res)
	}
	if got := res.Invoices[0].Description; got != "Bar El Tano" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestParseDelimitedWindows1252(t *testing.T) {
	raw := []byte("Fecha de Emisi\xf3n;N\xfamero Desde;Imp. Total\n01/02/2025;12;100\n")
	res := ParseDelimited(DecodeText(raw), testOptions(core.Sale))
	if len(res.Invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %+v", res)
	}
	inv := res.Invoices[0]
	if inv.Date != "2025-02-01" || inv.Number != "00000012" || !inv.TotalAmount.Equal(amount("100")) {
		t.Fatalf("unexpected invoice %+v", inv)
	}
}
