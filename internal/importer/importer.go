// Package importer turns AFIP/ARCA exports (delimited text, fixed-width
// text, spreadsheets) into canonical invoices and merges them into an
// existing collection.
//
// Parsing is lenient: malformed rows fall back to defaults and are reported
// in the Result instead of failing the import.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"monotributo/internal/core"
	"monotributo/internal/sheets/xlsx"
)

const (
	FormatDelimited   Format = "csv"
	FormatFixedWidth  Format = "txt"
	FormatSpreadsheet Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown import format")

type (
	// Format is declared by the caller, the content is never sniffed.
	Format string

	Options struct {
		Direction core.Direction
		ClientID  string
		// Now supplies "today" for rows without a date. Defaults to time.Now.
		Now func() time.Time
		// IDs generates invoice ids. Defaults to random UUIDs.
		IDs func() string
	}

	// Issue points at one input line (1-based, header included).
	Issue struct {
		Line   int    `json:"line"`
		Field  string `json:"field,omitempty"`
		Reason string `json:"reason"`
	}

	Result struct {
		Invoices []core.Invoice `json:"invoices"`
		Skipped  []Issue        `json:"skipped,omitempty"`
		Warnings []Issue        `json:"warnings,omitempty"`
	}
)

// ParseFormat accepts the short extension names and a few aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv", "delimited":
		return FormatDelimited, nil
	case "txt", "fixed-width", "fixedwidth":
		return FormatFixedWidth, nil
	case "xlsx", "xls", "spreadsheet":
		return FormatSpreadsheet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromFilename maps a file extension to a Format.
func FormatFromFilename(name string) (Format, error) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, name)
	}
	return ParseFormat(name[i+1:])
}

// Parse decodes data in the declared format. The only error is an unknown
// format; everything else ends up in the Result.
func Parse(ctx context.Context, format Format, data []byte, opts Options) (Result, error) {
	if err := opts.Direction.Validate(); err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", format, err)
	}
	switch format {
	case FormatDelimited:
		return ParseDelimited(DecodeText(data), opts), nil
	case FormatFixedWidth:
		return ParseFixedWidth(DecodeText(data), opts), nil
	case FormatSpreadsheet:
		table, err := xlsx.New(data).FirstSheet(ctx)
		if err != nil {
			return Result{Skipped: []Issue{{Reason: "unreadable workbook: " + err.Error()}}}, nil
		}
		return ParseTable(table, opts), nil
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// DecodeText reads data as UTF-8, falling back to Windows-1252 which is
// what older AFIP exports are encoded in. A UTF-8 BOM is dropped.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff")
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\ufffd")
	}
	return string(out)
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) newID() string {
	if o.IDs != nil {
		return o.IDs()
	}
	return uuid.NewString()
}

func (o Options) today() string {
	return o.now().Format("2006-01-02")
}

func (r *Result) skip(line int, reason string) {
	r.Skipped = append(r.Skipped, Issue{Line: line, Reason: reason})
}

func (r *Result) warn(line int, field Field, reason string) {
	r.Warnings = append(r.Warnings, Issue{Line: line, Field: string(field), Reason: reason})
}

// splitLines breaks text on \n or \r\n, ignoring trailing line breaks.
func splitLines(text string) []string {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
