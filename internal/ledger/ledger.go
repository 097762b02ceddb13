// Package ledger aggregates a client's invoice collection: filtered views,
// collection-wide totals and category-limit usage.
package ledger

import (
	"math"

	"github.com/shopspring/decimal"

	"monotributo/internal/core"
)

// Usage above this percentage is highlighted as close to the limit.
const OverLimitPercent = 90.0

type (
	// Totals are computed over the whole collection, never period-scoped.
	Totals struct {
		PositiveSales  decimal.Decimal `json:"positiveSales"`
		NCSales        decimal.Decimal `json:"ncSales"`
		SalesTotal     decimal.Decimal `json:"salesTotal"`
		PurchasesTotal decimal.Decimal `json:"purchasesTotal"`
	}

	CategoryUsage struct {
		Limit     core.CategoryLimit `json:"limit"`
		Percent   float64            `json:"percent"`
		Remaining decimal.Decimal    `json:"remaining"`
	}

	// View is what a client's invoice tab shows: the filtered list plus
	// collection-wide figures.
	View struct {
		Invoices []core.Invoice `json:"invoices"`
		Totals   Totals         `json:"totals"`
		Usage    CategoryUsage  `json:"usage"`
	}
)

// Filter returns the invoices in direction whose date falls inside p,
// preserving order.
func Filter(invoices []core.Invoice, d core.Direction, p core.Period) []core.Invoice {
	out := make([]core.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.IsSale == d.IsSale() && p.Contains(inv.Date) {
			out = append(out, inv)
		}
	}
	return out
}

// Partition splits the collection by direction.
func Partition(invoices []core.Invoice) (sales, purchases []core.Invoice) {
	for _, inv := range invoices {
		if inv.IsSale {
			sales = append(sales, inv)
		} else {
			purchases = append(purchases, inv)
		}
	}
	return sales, purchases
}

// ComputeTotals sums the collection. Sale credit notes are subtracted from
// the net sales total; purchases ignore the distinction.
func ComputeTotals(invoices []core.Invoice) Totals {
	t := Totals{
		PositiveSales:  decimal.Zero,
		NCSales:        decimal.Zero,
		PurchasesTotal: decimal.Zero,
	}
	for _, inv := range invoices {
		switch {
		case !inv.IsSale:
			t.PurchasesTotal = t.PurchasesTotal.Add(inv.TotalAmount)
		case core.IsCreditNote(inv.InvoiceType):
			t.NCSales = t.NCSales.Add(inv.TotalAmount)
		default:
			t.PositiveSales = t.PositiveSales.Add(inv.TotalAmount)
		}
	}
	t.SalesTotal = t.PositiveSales.Sub(t.NCSales)
	return t
}

// Usage compares net sales against the category's billing limit. Unknown
// categories use the first table entry. A zero limit yields Inf or NaN.
func Usage(salesTotal decimal.Decimal, category string) CategoryUsage {
	limit := core.CategoryOrDefault(category)
	return CategoryUsage{
		Limit:     limit,
		Percent:   salesTotal.InexactFloat64() / limit.MaxBilling.InexactFloat64() * 100,
		Remaining: limit.MaxBilling.Sub(salesTotal),
	}
}

// OverLimit reports whether usage is past the highlight threshold.
func (u CategoryUsage) OverLimit() bool {
	return u.Percent > OverLimitPercent
}

// BarPercent clamps Percent to [0, 100] for progress bars.
func (u CategoryUsage) BarPercent() float64 {
	switch {
	case math.IsNaN(u.Percent), u.Percent < 0:
		return 0
	case u.Percent > 100:
		return 100
	}
	return u.Percent
}

// NewView filters for display and computes totals over the full collection.
func NewView(invoices []core.Invoice, d core.Direction, p core.Period, category string) View {
	totals := ComputeTotals(invoices)
	return View{
		Invoices: Filter(invoices, d, p),
		Totals:   totals,
		Usage:    Usage(totals.SalesTotal, category),
	}
}

// SignedAmount is the amount as it affects net sales: negative for sale
// credit notes.
func SignedAmount(inv core.Invoice) decimal.Decimal {
	if inv.IsSale && core.IsCreditNote(inv.InvoiceType) {
		return inv.TotalAmount.Neg()
	}
	return inv.TotalAmount
}
