package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "invoicer"

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Defaults for new invoices
	Invoice InvoiceConfig `yaml:"invoice"`

	// Sender details printed on new invoices
	User UserConfig `yaml:"user"`

	Preferences PreferencesConfig `yaml:"preferences"`

	Export ExportConfig `yaml:"export"`

	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`    // "sqlite" or "postgres"
	Path     string `yaml:"path"`      // Path to SQLite database
	DSN      string `yaml:"dsn"`       // Postgres connection string
	MaxConns int    `yaml:"max_conns"` // Postgres pool size
}

type InvoiceConfig struct {
	DefaultDueDays  int     `yaml:"default_due_days"`
	DefaultTaxRate  float64 `yaml:"default_tax_rate"` // Percentage (5 = 5%)
	DefaultCurrency string  `yaml:"default_currency"`
	DefaultNumber   string  `yaml:"default_number"`
	DefaultNotes    string  `yaml:"default_notes"`
	ClientName      string  `yaml:"client_name"`
	ClientAddress   string  `yaml:"client_address"`
	ClientEmail     string  `yaml:"client_email"`
}

type UserConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
}

type PreferencesConfig struct {
	Language string `yaml:"language"` // en, vi, nl; empty means detect
	Theme    string `yaml:"theme"`    // light or dark
}

type ExportConfig struct {
	OutputDir string  `yaml:"output_dir"`
	Scale     float64 `yaml:"scale"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Env   string `yaml:"env"` // development writes human readable lines
}

// Dir returns ~/.config/invoicer
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(homeDir, ".config", appName)
}

// DefaultConfigPath returns ~/.config/invoicer/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     filepath.Join(dir, "invoicer.db"),
			MaxConns: 4,
		},
		Invoice: InvoiceConfig{
			DefaultDueDays:  30,
			DefaultTaxRate:  5,
			DefaultCurrency: "EUR",
			DefaultNumber:   "INV-001",
			DefaultNotes:    "Thank you for your business. Please pay within 30 days.",
			ClientName:      "Client Company",
			ClientAddress:   "456 Client Avenue, Client City",
			ClientEmail:     "client.email@example.com",
		},
		User: UserConfig{
			Name:    "Your Company",
			Email:   "your.email@example.com",
			Address: "123 Your Street, Your City",
		},
		Preferences: PreferencesConfig{
			Theme: "light",
		},
		Export: ExportConfig{
			OutputDir: filepath.Join(dir, "exports"),
			Scale:     2,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "invoicer.log"),
			Env:   "production",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// WithEnv returns a copy of c with INVOICER_* environment overrides applied,
// e.g. INVOICER_DATABASE_DRIVER or INVOICER_LOG_LEVEL. The receiver is left
// alone so that Save never persists values that came from the environment.
func (c *Config) WithEnv() *Config {
	v := viper.New()
	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	out := *c
	out.Database.Driver = getString(v, "database.driver", out.Database.Driver)
	out.Database.Path = getString(v, "database.path", out.Database.Path)
	out.Database.DSN = getString(v, "database.dsn", out.Database.DSN)
	out.Database.MaxConns = getInt(v, "database.max_conns", out.Database.MaxConns)
	out.Preferences.Language = getString(v, "preferences.language", out.Preferences.Language)
	out.Preferences.Theme = getString(v, "preferences.theme", out.Preferences.Theme)
	out.Export.OutputDir = getString(v, "export.output_dir", out.Export.OutputDir)
	out.Log.Level = getString(v, "log.level", out.Log.Level)
	out.Log.File = getString(v, "log.file", out.Log.File)
	out.Log.Env = getString(v, "log.env", out.Log.Env)
	return &out
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return def
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, exports, etc.)
func (c *Config) EnsureDirectories() error {
	if c.Database.Path != "" {
		if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0700); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(c.Export.OutputDir, 0755); err != nil {
		return err
	}

	if c.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0755); err != nil {
			return err
		}
	}

	return nil
}
