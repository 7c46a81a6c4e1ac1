//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Secrets that must come from the environment on platforms without a
// keychain. Everything else is kept in 0600 files under dir.
var envSecrets = map[string]string{
	KeyDB:          "INVOICER_DB_KEY",
	KeyTokenSecret: "INVOICER_TOKEN_SECRET",
}

type fallbackKeyring struct {
	dir string
}

func newPlatformKeyring(dir string) Keyring {
	return &fallbackKeyring{dir: filepath.Join(dir, "secrets")}
}

func (k *fallbackKeyring) path(name string) string {
	return filepath.Join(k.dir, name)
}

// Get reads the environment variable for name if there is one, then the file
func (k *fallbackKeyring) Get(name string) (string, error) {
	if env, ok := envSecrets[name]; ok {
		if value := os.Getenv(env); value != "" {
			return value, nil
		}
		if name == KeyDB {
			return "", fmt.Errorf("%s environment variable not set: %w", env, ErrNotFound)
		}
	}

	data, err := os.ReadFile(k.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("%s is empty: %w", name, ErrNotFound)
	}
	return value, nil
}

// Set writes the secret to its file. The database key is never written to
// disk next to the database it protects.
func (k *fallbackKeyring) Set(name, value string) error {
	if value == "" {
		return errors.New("secret cannot be empty")
	}
	if name == KeyDB {
		return fmt.Errorf("keyring not available on this platform: please set %s environment variable", envSecrets[KeyDB])
	}

	if err := os.MkdirAll(k.dir, 0700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}
	if err := os.WriteFile(k.path(name), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// Delete removes the stored secret. Missing secrets are ignored.
func (k *fallbackKeyring) Delete(name string) error {
	if name == KeyDB {
		return fmt.Errorf("keyring not available on this platform: please unset %s environment variable manually", envSecrets[KeyDB])
	}
	err := os.Remove(k.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// IsAvailable reports whether the database key can be read
func (k *fallbackKeyring) IsAvailable() bool {
	return os.Getenv(envSecrets[KeyDB]) != ""
}
