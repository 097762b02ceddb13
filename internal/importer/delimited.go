package importer

import (
	"encoding/csv"
	"strings"
)

const delimitedDescription = "Sin nombre"

// ParseDelimited reads a header line followed by one invoice per line.
// The separator is ";" when the header contains one, "," otherwise.
// Input with fewer than two lines yields an empty Result.
func ParseDelimited(text string, opts Options) Result {
	var res Result
	lines := splitLines(text)
	if len(lines) < 2 {
		return res
	}

	sep := ','
	if strings.Contains(lines[0], ";") {
		sep = ';'
	}
	resolved := DelimitedSchema.Resolve(splitRecord(lines[0], sep))

	counterparty := FieldEmisor
	if opts.Direction.IsSale() {
		counterparty = FieldReceptor
	}
	def := defaults{
		pointOfSale: "1",
		number:      "0",
		description: delimitedDescription,
	}

	for i, line := range lines[1:] {
		lineNo := i + 2
		if strings.TrimSpace(line) == "" {
			res.skip(lineNo, "blank line")
			continue
		}
		values := splitRecord(line, sep)
		rec := rawRecord{
			line:        lineNo,
			date:        resolved.Value(values, FieldDate),
			invoiceType: resolved.Value(values, FieldType),
			pointOfSale: resolved.Value(values, FieldPointOfSale),
			number:      resolved.Value(values, FieldNumber),
			amount:      resolved.Value(values, FieldAmount),
			description: resolved.Value(values, counterparty),
		}
		res.Invoices = append(res.Invoices, canonicalize(rec, def, opts, &res))
	}
	return res
}

// splitRecord tokenizes one line, honoring quotes where they are well
// formed and falling back to a plain split otherwise.
func splitRecord(line string, sep rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = sep
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		fields = strings.Split(line, string(sep))
	}
	for i := range fields {
		fields[i] = cleanCell(fields[i])
	}
	return fields
}
