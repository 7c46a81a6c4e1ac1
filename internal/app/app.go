package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"syscall"
	"time"

	"github.com/andy/invoicer/internal/auth"
	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/crypto"
	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/i18n"
	"github.com/andy/invoicer/internal/logger"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/andy/invoicer/internal/preview"
	"github.com/andy/invoicer/internal/repository"
	"github.com/andy/invoicer/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	// Config is the effective configuration, environment overrides included
	Config     *config.Config
	ConfigPath string
	fileConfig *config.Config

	Log     *logger.Logger
	Keyring crypto.Keyring

	// Exactly one of these is set, depending on database.driver
	DB   *db.DB
	Pool *pgxpool.Pool

	// Repositories
	Accounts repository.AccountRepository
	Invoices repository.InvoiceRepository

	// Services
	Auth     *auth.Service
	Store    service.InvoiceStore
	Editor   *service.Editor
	List     *service.InvoiceList
	Prefs    *prefs.Store
	Catalog  *i18n.Catalog
	Exporter *export.Exporter

	unwatch func()
}

// New creates a new App instance from the default config file.
// It handles:
// 1. Loading config and environment overrides
// 2. Getting secrets from the keyring
// 3. Opening the configured store
// 4. Creating repositories
// 5. Creating services and restoring the saved session
func New(ctx context.Context) (*App, error) {
	path := config.DefaultConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg, path)
}

// NewWithConfig creates an App with a provided config (useful for testing).
// path is where preference changes are written back.
func NewWithConfig(ctx context.Context, fileCfg *config.Config, path string) (*App, error) {
	cfg := fileCfg.WithEnv()

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	log, err := logger.New(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	a := &App{
		Config:     cfg,
		ConfigPath: path,
		fileConfig: fileCfg,
		Log:        log,
		Keyring:    crypto.NewKeyring(config.Dir()),
	}
	if err := a.openStore(ctx); err != nil {
		log.Close()
		return nil, err
	}

	secret, err := crypto.GetOrCreate(a.Keyring, crypto.KeyTokenSecret)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load token secret: %w", err)
	}

	a.Auth = auth.NewService(
		a.Accounts,
		auth.NewTokenIssuer(secret, "invoicer"),
		auth.NewKeyringSessions(a.Keyring),
		&auth.OutboxNotifier{Dir: filepath.Join(config.Dir(), "outbox"), Log: log.Named("auth")},
		log.Named("auth"),
		auth.Options{},
	)
	// An unreachable or unprovisioned store must not stop `invoicer setup`.
	if err := a.Auth.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore session")
	}

	a.Catalog, err = i18n.Load()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	a.Prefs = prefs.NewStore(prefs.Preferences{
		Language: cfg.Preferences.Language,
		Theme:    prefs.Theme(cfg.Preferences.Theme),
	}, prefs.PersistFunc(a.savePreferences), log.Named("prefs"))

	a.Store = service.NewStoreClient(a.Invoices, a.Auth, log)
	a.Editor = service.NewEditor(a.Store, a.Auth, a.newDraft, log)
	a.List = service.NewInvoiceList(a.Store, a.Editor)
	a.Exporter = export.NewExporter(log.Named("export"))
	a.unwatch = a.Editor.WatchIdentity(a.Auth)

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config.Database
	switch cfg.Driver {
	case "", "sqlite":
		key, err := a.databaseKey()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.Path, key)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := database.RunMigrations(); err != nil {
			database.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		a.DB = database
		a.Accounts = repository.NewAccountRepo(database)
		a.Invoices = repository.NewInvoiceRepo(database)

	case "postgres":
		pool, err := db.OpenPostgres(ctx, db.PostgresConfig{
			DSN:      cfg.DSN,
			MaxConns: int32(cfg.MaxConns),
		})
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		a.Pool = pool
		a.Accounts = repository.NewPgAccountRepo(pool)
		a.Invoices = repository.NewPgInvoiceRepo(pool)

	default:
		return fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	a.Log.Info().Str("driver", cfg.Driver).Msg("store opened")
	return nil
}

// databaseKey reads the SQLCipher key, asking for a new one on first run
// when the platform keychain can hold it
func (a *App) databaseKey() (string, error) {
	key, err := a.Keyring.Get(crypto.KeyDB)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, crypto.ErrNotFound) || !a.Keyring.IsAvailable() {
		return "", fmt.Errorf("failed to get encryption key: %w", err)
	}

	fmt.Println("Setting up database encryption for the first time...")
	key, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}
	if err := a.Keyring.Set(crypto.KeyDB, key); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return key, nil
}

// Provision prepares the configured store. SQLite is migrated on open, so
// this only has work to do for Postgres.
func (a *App) Provision(ctx context.Context) error {
	if a.Pool != nil {
		return db.ProvisionPostgres(ctx, a.Pool)
	}
	if a.DB != nil {
		return a.DB.RunMigrations()
	}
	return errors.New("no store configured")
}

// Template returns the values new invoices start with: the stock template
// with any configured defaults applied
func (a *App) Template() domain.Template {
	t := domain.DefaultTemplate()
	inv := a.Config.Invoice
	user := a.Config.User

	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&t.InvoiceNumber, inv.DefaultNumber)
	setIf(&t.Notes, inv.DefaultNotes)
	setIf(&t.From.Name, user.Name)
	setIf(&t.From.Email, user.Email)
	setIf(&t.From.Address, user.Address)
	setIf(&t.To.Name, inv.ClientName)
	setIf(&t.To.Email, inv.ClientEmail)
	setIf(&t.To.Address, inv.ClientAddress)

	if inv.DefaultDueDays > 0 {
		t.DueDays = inv.DefaultDueDays
	}
	if inv.DefaultTaxRate >= 0 {
		t.TaxRate = inv.DefaultTaxRate
	}
	if c, err := domain.ParseCurrency(inv.DefaultCurrency); err == nil {
		t.Currency = c
	}
	return t
}

func (a *App) newDraft() domain.Invoice {
	return domain.NewInvoice(a.Template(), time.Now())
}

// Translator returns a translator for the current UI language
func (a *App) Translator() i18n.Translator {
	return a.Catalog.For(a.Prefs.Get().Language)
}

// Render formats inv in the current UI language
func (a *App) Render(inv domain.Invoice) preview.Document {
	tr := a.Translator()
	return preview.Render(inv, tr, tr.Tag())
}

// Export renders inv and writes it to the configured output directory
func (a *App) Export(ctx context.Context, inv domain.Invoice, format export.Format) (string, error) {
	return a.Exporter.Export(ctx, a.Render(inv), export.Options{
		Format: format,
		Dir:    a.Config.Export.OutputDir,
		Scale:  a.Config.Export.Scale,
		Theme:  a.Prefs.Get().Theme,
	})
}

// savePreferences writes preference changes to the config file. Only the
// on-disk config is saved, so environment overrides never leak into it.
func (a *App) savePreferences(p prefs.Preferences) error {
	a.Config.Preferences.Language = p.Language
	a.Config.Preferences.Theme = string(p.Theme)
	a.fileConfig.Preferences.Language = p.Language
	a.fileConfig.Preferences.Theme = string(p.Theme)
	return a.SaveConfig()
}

// SaveConfig saves the on-disk configuration
func (a *App) SaveConfig() error {
	return a.fileConfig.Save(a.ConfigPath)
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.unwatch != nil {
		a.unwatch()
	}
	var err error
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.Log != nil {
		a.Log.Close()
	}
	return err
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("no terminal available to enter a database password")
	}

	fmt.Println()
	fmt.Println("Your invoices will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
