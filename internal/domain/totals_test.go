package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestComputeTotals_SingleItem(t *testing.T) {
	inv := Invoice{
		Items:   []LineItem{{ID: "a", Quantity: 10, Price: 100}},
		TaxRate: 5,
	}

	totals := ComputeTotals(inv)

	assert.True(t, totals.Subtotal.Equal(dec(1000)), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(dec(50)), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec(1050)), "total %s", totals.Total)
}

func TestComputeTotals_SecondItemAdded(t *testing.T) {
	inv := Invoice{
		Items: []LineItem{
			{ID: "a", Quantity: 10, Price: 100},
			{ID: "b", Quantity: 2, Price: 25},
		},
		TaxRate: 5,
	}

	totals := ComputeTotals(inv)

	assert.True(t, totals.Subtotal.Equal(dec(1050)), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(dec(52.5)), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec(1102.5)), "total %s", totals.Total)
}

func TestComputeTotals_NoItems(t *testing.T) {
	for _, rate := range []float64{0, 5, 21, 100} {
		totals := ComputeTotals(Invoice{TaxRate: rate})
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.TaxAmount.IsZero())
		assert.True(t, totals.Total.IsZero())
	}
}

func TestComputeTotals_NegativeValues(t *testing.T) {
	inv := Invoice{
		Items:   []LineItem{{Quantity: -2, Price: 50}},
		TaxRate: 10,
	}

	totals := ComputeTotals(inv)

	assert.True(t, totals.Subtotal.Equal(dec(-100)))
	assert.True(t, totals.Total.Equal(dec(-110)))
}

func TestComputeTotals_MatchesFloatArithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(8)
		items := make([]LineItem, n)
		want := 0.0
		for i := range items {
			q := float64(rng.Intn(50))
			p := math.Round(rng.Float64()*10000) / 100
			items[i] = LineItem{Quantity: q, Price: p}
			want += q * p
		}
		rate := float64(rng.Intn(30))

		totals := ComputeTotals(Invoice{Items: items, TaxRate: rate})

		sub := totals.Subtotal.InexactFloat64()
		assert.InDelta(t, want, sub, 1e-6)
		assert.InDelta(t, want+want*rate/100, totals.Total.InexactFloat64(), 1e-6)
		assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.TaxAmount)))
	}
}
