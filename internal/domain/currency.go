package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	VND Currency = "VND"
)

// Currencies lists the supported codes in display order
var Currencies = []Currency{USD, EUR, GBP, JPY, VND}

var currencySymbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	JPY: "¥",
	VND: "₫",
}

// Each currency is shown in the locale its users expect, not the UI language.
var currencyLocales = map[Currency]language.Tag{
	USD: language.MustParse("en-US"),
	EUR: language.MustParse("de-DE"),
	GBP: language.MustParse("en-GB"),
	JPY: language.MustParse("ja-JP"),
	VND: language.MustParse("vi-VN"),
}

// Locales that write the symbol after the amount.
var suffixSymbolLanguages = map[string]bool{
	"de": true, "vi": true, "fr": true, "es": true, "it": true,
	"pt": true, "pl": true, "cs": true, "sv": true, "fi": true,
	"da": true, "nb": true, "ru": true,
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &ValidationError{
			Field:   "currency",
			Message: fmt.Sprintf("unsupported currency %q", s),
		}
	}
	return c, nil
}

func (c Currency) Valid() bool {
	_, ok := currencySymbols[c]
	return ok
}

func (c Currency) Symbol() string {
	return currencySymbols[c]
}

// Locale returns the display locale for amounts in this currency
func (c Currency) Locale() language.Tag {
	if tag, ok := currencyLocales[c]; ok {
		return tag
	}
	return language.AmericanEnglish
}

// Scale returns the number of fraction digits the currency is written with
func (c Currency) Scale() int {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// FormatMoney renders amount for display. The value itself is never altered;
// only grouping, separators, rounding to the currency scale and symbol
// placement depend on the locale.
func FormatMoney(amount decimal.Decimal, c Currency, tag language.Tag) string {
	scale := c.Scale()
	neg := amount.IsNegative()
	abs := amount.Abs().Round(int32(scale))

	p := message.NewPrinter(tag)
	digits := p.Sprint(number.Decimal(abs.InexactFloat64(), number.Scale(scale)))

	sign := ""
	if neg && !abs.IsZero() {
		sign = "-"
	}

	base, _ := tag.Base()
	if suffixSymbolLanguages[base.String()] {
		return sign + digits + " " + c.Symbol()
	}
	return sign + c.Symbol() + digits
}

// FormatAmount formats amount in the currency's own locale
func FormatAmount(amount decimal.Decimal, c Currency) string {
	return FormatMoney(amount, c, c.Locale())
}
