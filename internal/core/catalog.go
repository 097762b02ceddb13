package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceTypes maps AFIP/ARCA voucher codes to display names.
var InvoiceTypes = map[string]string{
	"001": "Factura A",
	"002": "Nota de Débito A",
	"003": "Nota de Crédito A",
	"006": "Factura B",
	"007": "Nota de Débito B",
	"008": "Nota de Crédito B",
	"011": "Factura C",
	"012": "Nota de Débito C",
	"013": "Nota de Crédito C",
	"015": "Recibo C",
	"051": "Factura M",
	"201": "Factura de Crédito Electrónica MiPyME (FCE) A",
	"211": "Factura de Crédito Electrónica MiPyME (FCE) C",
}

// creditNoteCodes subtract from gross sales.
var creditNoteCodes = map[string]struct{}{
	"003": {}, "008": {}, "013": {}, "021": {}, "038": {}, "044": {}, "048": {}, "053": {},
	"090": {}, "110": {}, "112": {}, "113": {}, "114": {}, "203": {}, "208": {}, "213": {},
}

// Categories2026 holds the official ARCA values published February 2026.
var Categories2026 = []CategoryLimit{
	category("A", 10277988, 42386),
	category("B", 15058447, 48507),
	category("C", 21113865, 56501),
	category("D", 26212853, 72414),
	category("E", 30840480, 102548),
	category("F", 38624048, 120000),
	category("G", 46277093, 140000),
	category("H", 70113407, 180000),
	category("I", 78479216, 200000),
	category("J", 89872640, 220000),
	category("K", 108357084, 250000),
}

var MonthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func category(code string, maxBilling, quota int64) CategoryLimit {
	return CategoryLimit{
		Category:     code,
		MaxBilling:   decimal.NewFromInt(maxBilling),
		MonthlyQuota: decimal.NewFromInt(quota),
	}
}

// InvoiceTypeName returns the display name for a code, or "Tipo {code}"
// when the code is not in the taxonomy.
func InvoiceTypeName(code string) string {
	if name, ok := InvoiceTypes[code]; ok {
		return name
	}
	return "Tipo " + code
}

// IsKnownInvoiceType reports whether the code is in the taxonomy.
func IsKnownInvoiceType(code string) bool {
	_, ok := InvoiceTypes[code]
	return ok
}

func IsCreditNote(code string) bool {
	_, ok := creditNoteCodes[code]
	return ok
}

// CreditNoteCodes returns the credit-note code set in ascending order.
func CreditNoteCodes() []string {
	out := make([]string, 0, len(creditNoteCodes))
	for c := range creditNoteCodes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LookupCategory finds a category by code (case-insensitive).
func LookupCategory(code string) (CategoryLimit, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Categories2026 {
		if c.Category == code {
			return c, true
		}
	}
	return CategoryLimit{}, false
}

// CategoryOrDefault falls back to the first table entry when the code is
// not found.
func CategoryOrDefault(code string) CategoryLimit {
	if c, ok := LookupCategory(code); ok {
		return c
	}
	return Categories2026[0]
}

// PadLeft left-pads s with zeros to width. Longer strings are unchanged.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// CanonicalCode trims s, strips leading zeros and pads back to width, so
// "3", "003" and "00003" all become the same code.
func CanonicalCode(s string, width int) string {
	return PadLeft(strings.TrimLeft(strings.TrimSpace(s), "0"), width)
}

// TypeCode takes the text before the first "-" of a type column such as
// "11 - Factura C" and canonicalizes it to three characters.
func TypeCode(raw string) string {
	if i := strings.Index(raw, "-"); i >= 0 {
		raw = raw[:i]
	}
	return CanonicalCode(raw, 3)
}
