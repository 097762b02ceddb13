package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"monotributo/internal/core"
)

// ManualInput is a single invoice typed in by hand.
type ManualInput struct {
	Date        string `json:"date"`
	InvoiceType string `json:"invoiceType"`
	PointOfSale string `json:"pointOfSale"`
	Number      string `json:"number"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (in ManualInput) Validate() error {
	if strings.TrimSpace(in.Number) == "" {
		return core.ErrEmptyNumber
	}
	if _, ok := core.ParseAmount(in.Amount); !ok {
		return fmt.Errorf("%w: %q", core.ErrInvalidAmount, in.Amount)
	}
	date := core.NormalizeSlashDate(strings.TrimSpace(in.Date))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidDate, in.Date)
	}
	return nil
}

// NewManualInvoice validates the input and builds an invoice with the same
// padding and naming rules as the file importers.
func NewManualInvoice(in ManualInput, opts Options) (core.Invoice, error) {
	if err := opts.Direction.Validate(); err != nil {
		return core.Invoice{}, err
	}
	if err := in.Validate(); err != nil {
		return core.Invoice{}, err
	}

	amount, _ := core.ParseAmount(in.Amount)
	date := core.NormalizeSlashDate(strings.TrimSpace(in.Date))
	code := core.TypeCode(orDefault(strings.TrimSpace(in.InvoiceType), "011"))
	year, month := core.SplitDate(date)

	return core.Invoice{
		ID:              opts.newID(),
		ClientID:        opts.ClientID,
		Date:            date,
		InvoiceType:     code,
		InvoiceTypeName: core.InvoiceTypeName(code),
		PointOfSale:     core.CanonicalCode(orDefault(strings.TrimSpace(in.PointOfSale), "1"), 4),
		Number:          core.CanonicalCode(in.Number, 8),
		Description:     orDefault(strings.TrimSpace(in.Description), manualDescription(opts.Direction)),
		NetAmount:       amount,
		TaxAmount:       decimal.Zero,
		TotalAmount:     amount,
		Month:           month,
		Year:            year,
		IsSale:          opts.Direction.IsSale(),
	}, nil
}

func manualDescription(d core.Direction) string {
	if d.IsSale() {
		return "Venta Manual"
	}
	return "Compra Manual"
}
