package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// Keyring provides secure storage for named secrets
type Keyring interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
	IsAvailable() bool
}

const ServiceName = "invoicer"

// Secret names
const (
	KeyDB          = "db-encryption-key"
	KeyTokenSecret = "token-signing-secret"
	KeySession     = "session-token"
)

// ErrNotFound is returned when a secret has never been stored
var ErrNotFound = errors.New("secret not found")

// NewKeyring returns the best available keyring implementation. dir is used
// by platforms without a system keychain.
func NewKeyring(dir string) Keyring {
	return newPlatformKeyring(dir)
}

// RandomSecret returns n random bytes, hex encoded
func RandomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GetOrCreate returns the named secret, generating and storing one first
// if it does not exist yet
func GetOrCreate(k Keyring, name string) (string, error) {
	value, err := k.Get(name)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	value, err = RandomSecret(32)
	if err != nil {
		return "", err
	}
	if err := k.Set(name, value); err != nil {
		return "", err
	}
	return value, nil
}
