package importer

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"monotributo/internal/sheets"
)

// ParseTable reads the first-sheet rows of a workbook. Row 0 is the
// header; fully empty rows are skipped.
func ParseTable(table sheets.Table, opts Options) Result {
	var res Result
	header := table.Header()
	if len(header) == 0 {
		res.skip(1, "missing header row")
		return res
	}
	resolved := SpreadsheetSchema.Resolve(header)

	def := defaults{
		invoiceType: "011",
		pointOfSale: "1",
		number:      "0",
		description: spreadsheetDescription(opts),
		today:       true,
	}
	for i, row := range table.Rows() {
		lineNo := i + 2
		if blankRow(row) {
			res.skip(lineNo, "empty row")
			continue
		}
		rec := rawRecord{line: lineNo}
		for _, f := range []Field{FieldDate, FieldType, FieldPointOfSale, FieldNumber, FieldAmount, FieldDescription} {
			rec.set(f, resolved.Value(row, f))
		}
		rec.date = serialDate(rec.date)
		if rec.amount == "" {
			rec.amount = "0"
		}
		res.Invoices = append(res.Invoices, canonicalize(rec, def, opts, &res))
	}
	return res
}

func spreadsheetDescription(opts Options) string {
	if opts.Direction.IsSale() {
		return "Venta"
	}
	return "Compra"
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// serialDate converts unformatted date cells, which arrive as Excel serial
// day numbers, to YYYY-MM-DD. Anything else is returned unchanged.
func serialDate(v string) string {
	if strings.ContainsAny(v, "-/") {
		return v
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < minSerialDate || n > maxSerialDate {
		return v
	}
	t, err := excelize.ExcelDateToTime(n, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02")
}

// Serial range accepted as dates, roughly 1954 to 2119.
const (
	minSerialDate = 20000
	maxSerialDate = 80000
)
