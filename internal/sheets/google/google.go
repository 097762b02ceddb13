// Package google reads invoice tables from Google Sheets and appends ledger
// summaries to a yearly reporting sheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"monotributo/internal/ledger"
	ports "monotributo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSummarySheet is the base name of the reporting sheet; the current
// year is prefixed to it.
const DefaultSummarySheet = "Resumen"

var ErrNoSpreadsheet = errors.New("no spreadsheet configured")

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	summaryBase   string
	now           func() time.Time
}

// Ensure interface conformance
var (
	_ ports.TableSource   = (*Client)(nil)
	_ ports.SummaryWriter = (*Client)(nil)
	_ ports.TableSource   = (*Spreadsheet)(nil)
)

// New creates a client for spreadsheetID. Without options it authenticates
// with a service account (see newSheetsService); tests pass an endpoint and
// goption.WithoutAuthentication instead.
func New(ctx context.Context, spreadsheetID, summaryBase string, opts ...goption.ClientOption) (*Client, error) {
	var (
		svc *gsheet.Service
		err error
	)
	if len(opts) == 0 {
		svc, err = newSheetsService(ctx)
	} else {
		svc, err = gsheet.NewService(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	summaryBase = strings.TrimSpace(summaryBase)
	if summaryBase == "" {
		summaryBase = DefaultSummarySheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		summaryBase:   summaryBase,
		now:           time.Now,
	}, nil
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SUMMARY_SHEET_NAME (default "Resumen")
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	return New(ctx, spreadsheetID, os.Getenv("GOOGLE_SUMMARY_SHEET_NAME"))
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Spreadsheet is a TableSource for one spreadsheet other than the
// configured one, e.g. a client's own invoice export.
type Spreadsheet struct {
	c  *Client
	id string
}

// Sheet returns a TableSource for spreadsheetID, which may also be a full
// docs.google.com URL.
func (c *Client) Sheet(spreadsheetID string) *Spreadsheet {
	return &Spreadsheet{c: c, id: ParseSpreadsheetID(spreadsheetID)}
}

func (s *Spreadsheet) FirstSheet(ctx context.Context) (ports.Table, error) {
	return s.c.readFirstSheet(ctx, s.id)
}

// FirstSheet reads the first sheet of the configured spreadsheet.
func (c *Client) FirstSheet(ctx context.Context) (ports.Table, error) {
	return c.readFirstSheet(ctx, c.spreadsheetID)
}

func (c *Client) readFirstSheet(ctx context.Context, spreadsheetID string) (ports.Table, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if spreadsheetID == "" {
		return nil, ErrNoSpreadsheet
	}

	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}
	title := meta.Sheets[0].Properties.Title

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, quoteSheet(title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", title, err)
	}
	return ports.FromValues(resp.Values), nil
}

// AppendSummary adds one row with the client's totals to "<year> <base>"
// and returns the updated range.
func (c *Client) AppendSummary(ctx context.Context, s ledger.Summary) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if c.spreadsheetID == "" {
		return "", ErrNoSpreadsheet
	}

	at := c.now()
	sheet := yearPrefixedName(c.summaryBase, at.Year())
	rng := quoteSheet(sheet) + "!A1"
	vr := &gsheet.ValueRange{Values: [][]any{summaryRow(s, at)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append summary to %s: %w", sheet, err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return sheet, nil
	}
	return resp.Updates.UpdatedRange, nil
}

// SummaryHeader names the columns written by AppendSummary.
var SummaryHeader = []string{
	"Fecha", "Cliente ID", "Cliente", "CUIT", "Categoría",
	"Ventas", "Compras", "Uso %", "Excedido", "Ventas (cant.)", "Compras (cant.)",
}

func summaryRow(s ledger.Summary, at time.Time) []any {
	excedido := "NO"
	if s.OverLimit {
		excedido = "SI"
	}
	return []any{
		at.Format("2006-01-02 15:04"),
		s.ClientID,
		s.ClientName,
		s.CUIT,
		s.Category,
		s.Totals.SalesTotal.InexactFloat64(),
		s.Totals.PurchasesTotal.InexactFloat64(),
		strconv.FormatFloat(s.Usage.Percent, 'f', 2, 64),
		excedido,
		s.SalesCount,
		s.PurchasesCount,
	}
}

// quoteSheet quotes a sheet title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

var spreadsheetURL = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// ParseSpreadsheetID accepts a bare ID or a sheet URL.
func ParseSpreadsheetID(s string) string {
	s = strings.TrimSpace(s)
	if m := spreadsheetURL.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
