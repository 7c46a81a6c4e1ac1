package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are derived from the line items and tax rate and never stored
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

func LineTotal(item LineItem) decimal.Decimal {
	return decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.Price))
}

func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineTotal(item))
	}
	return sum
}

func TaxAmount(subtotal decimal.Decimal, taxRate float64) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromFloat(taxRate)).Div(hundred)
}

// ComputeTotals derives subtotal, tax and total for the invoice
func ComputeTotals(inv Invoice) Totals {
	subtotal := Subtotal(inv.Items)
	tax := TaxAmount(subtotal, inv.TaxRate)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
