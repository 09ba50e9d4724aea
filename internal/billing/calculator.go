package billing

import (
	"github.com/diewo77/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// Totals holds the three persisted amounts of a document.
type Totals struct {
	Subtotal  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Compute derives subtotal, VAT amount and grand total for an item set.
// Pure decimal arithmetic: subtotal = Σ price*qty, vat = subtotal*pct/100,
// total = subtotal+vat. An empty item list yields zeros.
func Compute(items []models.Item, vatPercentage decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].Total())
	}
	vat := subtotal.Mul(vatPercentage).Div(oneHundred)
	return Totals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     subtotal.Add(vat),
	}
}

// Apply computes totals from the invoice's items and stores them on the
// record. Callers persist the invoice afterwards; totals are never
// re-derived on read.
func Apply(inv *models.Invoice) {
	t := Compute(inv.Items, inv.VATPercentage)
	inv.Subtotal = t.Subtotal
	inv.VATAmount = t.VATAmount
	inv.Total = t.Total
}

// ApplyQuotation is Apply for quotations.
func ApplyQuotation(q *models.Quotation) {
	t := Compute(q.Items, q.VATPercentage)
	q.Subtotal = t.Subtotal
	q.VATAmount = t.VATAmount
	q.Total = t.Total
}
