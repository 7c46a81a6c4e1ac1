package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestNewInvoice_DefaultTemplate(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 4, 5, 0, time.Local)

	inv := NewInvoice(DefaultTemplate(), now)

	assert.True(t, inv.IsDraft())
	assert.Equal(t, "INV-001", inv.InvoiceNumber)
	assert.Equal(t, "2026-03-01", inv.Date.String())
	assert.Equal(t, "2026-03-31", inv.DueDate.String())
	assert.Equal(t, EUR, inv.Currency)
	assert.Equal(t, 5.0, inv.TaxRate)
	assert.Equal(t, DefaultLogoWidth, inv.From.LogoWidth)
	require.Len(t, inv.Items, 1)
	assert.NotEmpty(t, inv.Items[0].ID)
	assert.Equal(t, 10.0, inv.Items[0].Quantity)
}

func TestNewInvoice_FreshItemIDs(t *testing.T) {
	a := NewInvoice(DefaultTemplate(), time.Now())
	b := NewInvoice(DefaultTemplate(), time.Now())

	assert.NotEqual(t, a.Items[0].ID, b.Items[0].ID)
}

func TestNewLineItem(t *testing.T) {
	item := NewLineItem()

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "", item.Description)
	assert.Equal(t, 1.0, item.Quantity)
	assert.Equal(t, 0.0, item.Price)
}

func TestInvoice_CloneSharesNothing(t *testing.T) {
	logo, err := NewLogo(pngPixel)
	require.NoError(t, err)

	orig := NewInvoice(DefaultTemplate(), time.Now())
	orig.From.Logo = &logo

	clone := orig.Clone()
	clone.Items[0].Description = "changed"
	clone.From.Logo.Data[0] = 0

	assert.Equal(t, "Web Development Service", orig.Items[0].Description)
	assert.Equal(t, byte(0x89), orig.From.Logo.Data[0])
	assert.False(t, orig.Equal(clone))
}

func TestInvoice_JSONRoundTrip(t *testing.T) {
	logo, err := NewLogo(pngPixel)
	require.NoError(t, err)

	inv := NewInvoice(DefaultTemplate(), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	inv.ID = "9d0c4f7e-0000-4000-8000-000000000001"
	inv.From.Logo = &logo

	data, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2026-01-15"`)
	assert.Contains(t, string(data), `"logo":"data:image/png;base64,`)

	var back Invoice
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, inv.Equal(back))
}

func TestNewLogo_TooLarge(t *testing.T) {
	big := make([]byte, 3*1024*1024)
	copy(big, pngPixel)

	_, err := NewLogo(big)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "from.logo", FieldOf(err))
}

func TestNewLogo_NotAnImage(t *testing.T) {
	_, err := NewLogo([]byte("just some text"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateLogoWidth(t *testing.T) {
	assert.NoError(t, ValidateLogoWidth(50))
	assert.NoError(t, ValidateLogoWidth(300))
	assert.ErrorIs(t, ValidateLogoWidth(49), ErrValidation)
	assert.ErrorIs(t, ValidateLogoWidth(301), ErrValidation)
}

func TestParty_AddressLines(t *testing.T) {
	p := Party{Address: "123 Your Street, Your City, "}
	assert.Equal(t, []string{"123 Your Street", "Your City"}, p.AddressLines())
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("usd")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = ParseCurrency("BTC")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		cur    Currency
		tag    language.Tag
		want   string
	}{
		{"usd", 1102.5, USD, language.MustParse("en-US"), "$1,102.50"},
		{"eur german", 1102.5, EUR, language.MustParse("de-DE"), "1.102,50 €"},
		{"negative", -110, USD, language.MustParse("en-US"), "-$110.00"},
		{"yen has no fraction", 1050, JPY, language.MustParse("ja-JP"), "¥1,050"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(dec(tt.amount), tt.cur, tt.tag))
		})
	}
}
