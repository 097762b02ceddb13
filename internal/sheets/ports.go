package sheets

import (
	"context"
	"fmt"

	"monotributo/internal/ledger"
)

// Ports for spreadsheet adapters.
type (
	// Table is a sheet read as rows of cell text. Row 0 is the header.
	Table [][]string

	// TableSource yields the first sheet of a workbook.
	TableSource interface {
		FirstSheet(ctx context.Context) (Table, error)
	}

	// SummaryWriter records a client's ledger summary somewhere outside
	// the store (a reporting sheet, a log).
	SummaryWriter interface {
		AppendSummary(ctx context.Context, s ledger.Summary) (rowRef string, err error)
	}
)

// Header returns the header row, or nil for an empty table.
func (t Table) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Rows returns the data rows after the header.
func (t Table) Rows() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// FromValues converts a Sheets API values matrix into a Table.
func FromValues(values [][]interface{}) Table {
	out := make(Table, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		out[i] = cells
	}
	return out
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
