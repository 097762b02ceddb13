package importer

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"monotributo/internal/core"
)

// Field names a canonical invoice attribute a source column can feed.
type Field string

const (
	FieldDate        Field = "date"
	FieldType        Field = "invoiceType"
	FieldPointOfSale Field = "pointOfSale"
	FieldNumber      Field = "number"
	FieldAmount      Field = "amount"
	FieldReceptor    Field = "receptor"
	FieldEmisor      Field = "emisor"
	FieldDescription Field = "description"
)

type (
	// Column lists the header names that may carry a field, in priority
	// order.
	Column struct {
		Field      Field
		Candidates []string
	}

	Schema []Column

	// Resolved maps each field to the header positions of its candidates,
	// in candidate order.
	Resolved map[Field][]int
)

// DelimitedSchema describes the AFIP "Mis Comprobantes" CSV export.
var DelimitedSchema = Schema{
	{FieldDate, []string{"Fecha de Emisión", "Fecha"}},
	{FieldAmount, []string{"Imp. Total", "Importe Total", "Importe"}},
	{FieldType, []string{"Tipo de Comprobante", "Tipo"}},
	{FieldPointOfSale, []string{"Punto de Venta"}},
	{FieldNumber, []string{"Número Desde", "Número"}},
	{FieldReceptor, []string{"Denominación Receptor"}},
	{FieldEmisor, []string{"Denominación Emisor"}},
}

// SpreadsheetSchema describes hand-kept workbooks and the XLSX export.
var SpreadsheetSchema = Schema{
	{FieldType, []string{"Tipo", "Tipo de Comprobante"}},
	{FieldAmount, []string{"Importe", "Imp. Total", "Total"}},
	{FieldDate, []string{"Fecha", "Fecha de Emisión"}},
	{FieldPointOfSale, []string{"Punto de Venta"}},
	{FieldNumber, []string{"Número", "Número Desde"}},
	{FieldDescription, []string{"Denominación", "Denominación Emisor", "Denominación Receptor"}},
}

// foldHeader compares headers case- and accent-insensitively so "Numero"
// and "NÚMERO" both match "Número".
func foldHeader(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(fold, s); err == nil {
		s = out
	}
	return strings.ToLower(s)
}

// Resolve locates every candidate in headers. Call once per parse.
func (s Schema) Resolve(headers []string) Resolved {
	index := make(map[string][]int, len(headers))
	for i, h := range headers {
		k := foldHeader(h)
		index[k] = append(index[k], i)
	}
	r := make(Resolved, len(s))
	for _, col := range s {
		for _, c := range col.Candidates {
			r[col.Field] = append(r[col.Field], index[foldHeader(c)]...)
		}
	}
	return r
}

// Has reports whether any candidate for f is present.
func (r Resolved) Has(f Field) bool {
	return len(r[f]) > 0
}

// Value returns the first non-empty candidate cell for f in row.
func (r Resolved) Value(row []string, f Field) string {
	for _, i := range r[f] {
		if i < len(row) {
			if v := cleanCell(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func cleanCell(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, `"`, ""))
}

// rawRecord is one source row mapped onto fields, before defaults and
// normalization.
type rawRecord struct {
	line          int
	date          string
	invoiceType   string
	pointOfSale   string
	number        string
	amount        string
	amountInCents bool
	description   string
}

func (rec *rawRecord) set(f Field, v string) {
	switch f {
	case FieldDate:
		rec.date = v
	case FieldType:
		rec.invoiceType = v
	case FieldPointOfSale:
		rec.pointOfSale = v
	case FieldNumber:
		rec.number = v
	case FieldAmount:
		rec.amount = v
	case FieldDescription, FieldReceptor, FieldEmisor:
		rec.description = v
	}
}

// defaults fill missing fields per format.
type defaults struct {
	invoiceType string
	pointOfSale string
	number      string
	description string
	// today replaces a missing date with the clock date.
	today bool
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// canonicalize applies defaults and the shared normalization rules.
func canonicalize(rec rawRecord, def defaults, opts Options, res *Result) core.Invoice {
	date := core.NormalizeSlashDate(rec.date)
	if date == "" && def.today {
		date = opts.today()
	}

	code := core.TypeCode(orDefault(rec.invoiceType, def.invoiceType))
	if !core.IsKnownInvoiceType(code) {
		res.warn(rec.line, FieldType, "unknown invoice type "+code)
	}

	parse := core.ParseAmount
	if rec.amountInCents {
		parse = core.ParseCents
	}
	amount, ok := parse(rec.amount)
	if !ok {
		reason := "missing amount, using 0"
		if rec.amount != "" {
			reason = "unparsable amount " + rec.amount + ", using 0"
		}
		res.warn(rec.line, FieldAmount, reason)
	}

	year, month := core.SplitDate(date)
	return core.Invoice{
		ID:              opts.newID(),
		ClientID:        opts.ClientID,
		Date:            date,
		InvoiceType:     code,
		InvoiceTypeName: core.InvoiceTypeName(code),
		PointOfSale:     core.CanonicalCode(orDefault(rec.pointOfSale, def.pointOfSale), 4),
		Number:          core.CanonicalCode(orDefault(rec.number, def.number), 8),
		Description:     orDefault(rec.description, def.description),
		NetAmount:       amount,
		TaxAmount:       decimal.Zero,
		TotalAmount:     amount,
		Month:           month,
		Year:            year,
		IsSale:          opts.Direction.IsSale(),
	}
}
