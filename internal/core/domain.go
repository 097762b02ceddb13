package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Sale     Direction = "sale"
	Purchase Direction = "purchase"
)

type (
	// Direction partitions invoices into sales and purchases.
	Direction string

	Invoice struct {
		ID              string          `json:"id"`
		ClientID        string          `json:"clientId"`
		Date            string          `json:"date"`
		InvoiceType     string          `json:"invoiceType"`
		InvoiceTypeName string          `json:"invoiceTypeName"`
		PointOfSale     string          `json:"pointOfSale"`
		Number          string          `json:"number"`
		Description     string          `json:"description"`
		NetAmount       decimal.Decimal `json:"netAmount"`
		TaxAmount       decimal.Decimal `json:"taxAmount"`
		TotalAmount     decimal.Decimal `json:"totalAmount"`
		Month           int             `json:"month"`
		Year            int             `json:"year"`
		IsSale          bool            `json:"isSale"`
	}

	Client struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		CUIT        string `json:"cuit"`
		Category    string `json:"category"`
		NextRenewal string `json:"nextRenewal"`
		Phone       string `json:"phone,omitempty"`
		Email       string `json:"email,omitempty"`
		Address     string `json:"address,omitempty"`
	}

	Note struct {
		ID       string `json:"id"`
		ClientID string `json:"clientId"`
		Title    string `json:"title"`
		Content  string `json:"content"`
		Date     string `json:"date"`
	}

	// RegisteredUser is the credential record owned by the authentication
	// layer. Only stored and loaded here.
	RegisteredUser struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		PasswordHash string `json:"password"`
	}

	// CategoryLimit is one row of the static ARCA category table.
	CategoryLimit struct {
		Category     string          `json:"category"`
		MaxBilling   decimal.Decimal `json:"maxBilling"`
		MonthlyQuota decimal.Decimal `json:"monthlyQuota"`
	}

	// Period is an inclusive YYYY-MM range.
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrEmptyNumber      = errors.New("empty invoice number")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyContent     = errors.New("empty content")
	ErrUnknownCategory  = errors.New("unknown category")
)

// Default year and month used when a date cannot be split.
const (
	FallbackYear  = 2025
	FallbackMonth = 1
)

// DirectionOf maps the stored flag back to a Direction.
func DirectionOf(isSale bool) Direction {
	if isSale {
		return Sale
	}
	return Purchase
}

// ParseDirection accepts English and Spanish spellings, singular or plural.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale", "sales", "venta", "ventas":
		return Sale, nil
	case "purchase", "purchases", "compra", "compras":
		return Purchase, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) IsSale() bool {
	return d == Sale
}

func (d Direction) Validate() error {
	if d != Sale && d != Purchase {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, string(d))
	}
	return nil
}

// Label is the Spanish name used in reports and logs.
func (d Direction) Label() string {
	if d == Sale {
		return "Ventas"
	}
	return "Compras"
}

// DedupKey identifies a logical invoice inside one client's collection.
func (inv Invoice) DedupKey() string {
	return inv.PointOfSale + "-" + inv.Number + "-" + inv.InvoiceType + "-" + strconv.FormatBool(inv.IsSale)
}

func (inv Invoice) Direction() Direction {
	return DirectionOf(inv.IsSale)
}

// Period returns the YYYY-MM prefix of the invoice date.
func (inv Invoice) Period() string {
	if len(inv.Date) < 7 {
		return inv.Date
	}
	return inv.Date[:7]
}

// Contains reports whether the date falls inside the period. Bounds are
// compared as strings against the first seven characters of the date.
func (p Period) Contains(date string) bool {
	ym := date
	if len(ym) > 7 {
		ym = ym[:7]
	}
	return ym >= p.Start && ym <= p.End
}

// Validate checks both bounds are YYYY-MM and ordered.
func (p Period) Validate() error {
	for _, b := range []string{p.Start, p.End} {
		if _, err := time.Parse("2006-01", b); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPeriod, b)
		}
	}
	if p.Start > p.End {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidPeriod, p.Start, p.End)
	}
	return nil
}

// CurrentYearPeriod spans January of now's year through now's month.
func CurrentYearPeriod(now time.Time) Period {
	return Period{
		Start: fmt.Sprintf("%d-01", now.Year()),
		End:   now.Format("2006-01"),
	}
}

// SplitDate extracts year and month from a YYYY-MM-DD string, falling
// back to FallbackYear and FallbackMonth for parts that do not parse.
func SplitDate(date string) (year, month int) {
	year, month = FallbackYear, FallbackMonth
	parts := strings.Split(date, "-")
	if y, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		year = y
	}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			month = m
		}
	}
	return year, month
}

// NormalizeSlashDate rewrites DD/MM/YYYY as YYYY-MM-DD with zero-padded
// month and day. Strings without a slash are returned unchanged.
func NormalizeSlashDate(raw string) string {
	if !strings.Contains(raw, "/") {
		return raw
	}
	parts := strings.Split(raw, "/")
	d, m, y := parts[0], "", ""
	if len(parts) > 1 {
		m = parts[1]
	}
	if len(parts) > 2 {
		y = parts[2]
	}
	return y + "-" + PadLeft(m, 2) + "-" + PadLeft(d, 2)
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if _, ok := LookupCategory(c.Category); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c.Category)
	}
	return nil
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
