package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Invoice.DefaultDueDays)
	assert.Equal(t, "EUR", cfg.Invoice.DefaultCurrency)
	assert.Equal(t, "light", cfg.Preferences.Theme)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Preferences.Language = "nl"
	cfg.Preferences.Theme = "dark"
	cfg.Invoice.DefaultTaxRate = 21
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nl", loaded.Preferences.Language)
	assert.Equal(t, "dark", loaded.Preferences.Theme)
	assert.Equal(t, 21.0, loaded.Invoice.DefaultTaxRate)
}

func TestWithEnv(t *testing.T) {
	t.Setenv("INVOICER_DATABASE_DRIVER", "postgres")
	t.Setenv("INVOICER_DATABASE_DSN", "postgres://localhost/invoices")
	t.Setenv("INVOICER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	effective := cfg.WithEnv()

	assert.Equal(t, "postgres", effective.Database.Driver)
	assert.Equal(t, "postgres://localhost/invoices", effective.Database.DSN)
	assert.Equal(t, "debug", effective.Log.Level)

	assert.Equal(t, "sqlite", cfg.Database.Driver, "file config must not pick up env values")
}
