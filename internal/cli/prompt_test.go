package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/andy/invoicer/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExplain(t *testing.T) {
	assert.NoError(t, explain(nil))

	err := explain(&domain.ValidationError{Field: "taxRate", Message: "must be a number"})
	assert.EqualError(t, err, "taxRate: must be a number")

	err = explain(fmt.Errorf("save: %w", domain.ErrUnauthenticated))
	assert.Contains(t, err.Error(), "invoicer auth signin")

	err = explain(fmt.Errorf("%w: no such table", domain.ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "invoicer setup")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	other := errors.New("boom")
	assert.Equal(t, other, explain(other))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Acme Co...", truncate("Acme Corporation", 10))
	assert.Equal(t, "Công t...", truncate("Công ty TNHH", 9))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0b9f3c1e", shortID("0b9f3c1e-5d2a-4c8e-9f00-123456789abc"))
	assert.Equal(t, "abc", shortID("abc"))
}
