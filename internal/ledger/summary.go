package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"monotributo/internal/core"
)

var ErrReportNotAvailable = errors.New("report not available")

type (
	Summary struct {
		ClientID       string        `json:"clientId"`
		ClientName     string        `json:"clientName"`
		CUIT           string        `json:"cuit"`
		Category       string        `json:"category"`
		Totals         Totals        `json:"totals"`
		Usage          CategoryUsage `json:"usage"`
		SalesCount     int           `json:"salesCount"`
		PurchasesCount int           `json:"purchasesCount"`
		OverLimit      bool          `json:"overLimit"`
	}

	MonthTotal struct {
		Month     int             `json:"month"`
		Name      string          `json:"name"`
		Sales     decimal.Decimal `json:"sales"`
		Purchases decimal.Decimal `json:"purchases"`
	}

	// PublicReport is the read-only status shown to the client.
	PublicReport struct {
		ClientName   string          `json:"clientName"`
		Category     string          `json:"category"`
		SalesTotal   decimal.Decimal `json:"salesTotal"`
		MaxBilling   decimal.Decimal `json:"maxBilling"`
		MonthlyQuota decimal.Decimal `json:"monthlyQuota"`
		Percent      float64         `json:"percent"`
		BarPercent   float64         `json:"barPercent"`
		OverLimit    bool            `json:"overLimit"`
		NextRenewal  string          `json:"nextRenewal"`
	}
)

func Summarize(c core.Client, invoices []core.Invoice) Summary {
	totals := ComputeTotals(invoices)
	usage := Usage(totals.SalesTotal, c.Category)
	sales, purchases := Partition(invoices)
	return Summary{
		ClientID:       c.ID,
		ClientName:     c.Name,
		CUIT:           c.CUIT,
		Category:       usage.Limit.Category,
		Totals:         totals,
		Usage:          usage,
		SalesCount:     len(sales),
		PurchasesCount: len(purchases),
		OverLimit:      usage.OverLimit(),
	}
}

// MonthlyBreakdown returns twelve rows for year with net sales and
// purchases per month. Invoices with an out-of-range month are ignored.
func MonthlyBreakdown(invoices []core.Invoice, year int) []MonthTotal {
	out := make([]MonthTotal, 12)
	for i := range out {
		out[i] = MonthTotal{
			Month:     i + 1,
			Name:      core.MonthNames[i],
			Sales:     decimal.Zero,
			Purchases: decimal.Zero,
		}
	}
	for _, inv := range invoices {
		if inv.Year != year || inv.Month < 1 || inv.Month > 12 {
			continue
		}
		row := &out[inv.Month-1]
		if inv.IsSale {
			row.Sales = row.Sales.Add(SignedAmount(inv))
		} else {
			row.Purchases = row.Purchases.Add(inv.TotalAmount)
		}
	}
	return out
}

// BuildReport derives the public report. A nil client means the id did
// not resolve and yields ErrReportNotAvailable.
func BuildReport(c *core.Client, invoices []core.Invoice) (PublicReport, error) {
	if c == nil {
		return PublicReport{}, ErrReportNotAvailable
	}
	totals := ComputeTotals(invoices)
	usage := Usage(totals.SalesTotal, c.Category)
	return PublicReport{
		ClientName:   c.Name,
		Category:     usage.Limit.Category,
		SalesTotal:   totals.SalesTotal,
		MaxBilling:   usage.Limit.MaxBilling,
		MonthlyQuota: usage.Limit.MonthlyQuota,
		Percent:      usage.Percent,
		BarPercent:   usage.BarPercent(),
		OverLimit:    usage.OverLimit(),
		NextRenewal:  c.NextRenewal,
	}, nil
}
