// Package xlsx reads uploaded Excel workbooks.
package xlsx

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"monotributo/internal/sheets"
)

var ErrNoSheets = errors.New("workbook has no sheets")

// Workbook is an in-memory .xlsx file.
type Workbook struct {
	data []byte
}

func New(data []byte) *Workbook {
	return &Workbook{data: data}
}

// FirstSheet returns the stored cell values of the first sheet. Number
// formats are not applied: amounts keep their full precision and date
// cells come back as serial day numbers.
func (w *Workbook) FirstSheet(ctx context.Context) (sheets.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(names[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", names[0], err)
	}
	return sheets.Table(rows), nil
}

var _ sheets.TableSource = (*Workbook)(nil)
