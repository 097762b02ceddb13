package importer

import (
	"strings"
	"unicode/utf8"
)

// Lines shorter than this once trimmed are headers, footers or noise.
const minFixedWidthLine = 20

// Decode tells how a fixed-width slice becomes a field value.
type Decode int

const (
	// DecodePlain keeps the slice as read.
	DecodePlain Decode = iota
	// DecodeTrimZeros strips leading zeros, padding is applied later.
	DecodeTrimZeros
	// DecodeCompactDate rewrites YYYYMMDD as YYYY-MM-DD.
	DecodeCompactDate
	// DecodeCents reads an integer count of cents.
	DecodeCents
)

type (
	// FieldSpec takes the characters [Start, End) of a line. Ranges past
	// the end of the line are clamped.
	FieldSpec struct {
		Field  Field
		Start  int
		End    int
		Decode Decode
	}

	// Layout describes one fixed-width record shape. Fields without a
	// date field get the clock date.
	Layout struct {
		Name   string
		Match  func(line string) bool
		Fields []FieldSpec
	}
)

// LongLayout is the full AFIP export record.
var LongLayout = Layout{
	Name:  "long",
	Match: func(line string) bool { return utf8.RuneCountInString(line) > 100 },
	Fields: []FieldSpec{
		{FieldDate, 0, 8, DecodeCompactDate},
		{FieldType, 8, 11, DecodePlain},
		{FieldPointOfSale, 11, 16, DecodePlain},
		{FieldNumber, 16, 36, DecodeTrimZeros},
		{FieldAmount, 100, 112, DecodeCents},
	},
}

// ShortLayout is the abbreviated record without a date.
var ShortLayout = Layout{
	Name:  "short",
	Match: func(string) bool { return true },
	Fields: []FieldSpec{
		{FieldType, 0, 3, DecodePlain},
		{FieldPointOfSale, 3, 8, DecodePlain},
		{FieldNumber, 8, 28, DecodeTrimZeros},
		{FieldAmount, 38, 50, DecodeCents},
	},
}

// DefaultLayouts is tried in order; the first match wins.
var DefaultLayouts = []Layout{LongLayout, ShortLayout}

// ParseFixedWidth parses text with DefaultLayouts.
func ParseFixedWidth(text string, opts Options) Result {
	return ParseFixedWidthLayouts(text, DefaultLayouts, opts)
}

// ParseFixedWidthLayouts parses one record per line using the first layout
// whose Match accepts the line. Lines no layout accepts are skipped.
func ParseFixedWidthLayouts(text string, layouts []Layout, opts Options) Result {
	var res Result
	def := defaults{
		invoiceType: "000",
		pointOfSale: "0",
		number:      "0",
		description: fixedWidthDescription(opts),
		today:       true,
	}
	for i, line := range splitLines(text) {
		lineNo := i + 1
		if utf8.RuneCountInString(strings.TrimSpace(line)) < minFixedWidthLine {
			res.skip(lineNo, "line too short")
			continue
		}
		layout, ok := matchLayout(layouts, line)
		if !ok {
			res.skip(lineNo, "no layout matches")
			continue
		}
		rec := rawRecord{line: lineNo}
		chars := []rune(line)
		for _, fs := range layout.Fields {
			fs.apply(&rec, chars)
		}
		res.Invoices = append(res.Invoices, canonicalize(rec, def, opts, &res))
	}
	return res
}

func fixedWidthDescription(opts Options) string {
	if opts.Direction.IsSale() {
		return "Cliente TXT"
	}
	return "Proveedor TXT"
}

func matchLayout(layouts []Layout, line string) (Layout, bool) {
	for _, l := range layouts {
		if l.Match == nil || l.Match(line) {
			return l, true
		}
	}
	return Layout{}, false
}

func (fs FieldSpec) apply(rec *rawRecord, chars []rune) {
	v := slice(chars, fs.Start, fs.End)
	switch fs.Decode {
	case DecodeTrimZeros:
		v = strings.TrimLeft(strings.TrimSpace(v), "0")
	case DecodeCompactDate:
		v = compactDate(strings.TrimSpace(v))
	case DecodeCents:
		v = strings.TrimSpace(v)
		rec.amountInCents = true
	default:
		v = strings.TrimSpace(v)
	}
	rec.set(fs.Field, v)
}

func slice(chars []rune, start, end int) string {
	if end > len(chars) {
		end = len(chars)
	}
	if start >= end {
		return ""
	}
	return string(chars[start:end])
}

// compactDate turns "20250305" into "2025-03-05". Short input keeps what
// it has; empty input stays empty.
func compactDate(v string) string {
	if v == "" {
		return ""
	}
	chars := []rune(v)
	return slice(chars, 0, 4) + "-" + slice(chars, 4, 6) + "-" + slice(chars, 6, 8)
}
