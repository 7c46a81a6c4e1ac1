package auth

import (
	"errors"

	"github.com/andy/invoicer/internal/crypto"
)

// SessionStore persists the current session token between runs
type SessionStore interface {
	Load() (string, error) // empty string when there is no session
	Save(token string) error
	Clear() error
}

type keyringSessions struct {
	k crypto.Keyring
}

// NewKeyringSessions keeps the session token in the keyring
func NewKeyringSessions(k crypto.Keyring) SessionStore {
	return &keyringSessions{k: k}
}

func (s *keyringSessions) Load() (string, error) {
	token, err := s.k.Get(crypto.KeySession)
	if errors.Is(err, crypto.ErrNotFound) {
		return "", nil
	}
	return token, err
}

func (s *keyringSessions) Save(token string) error {
	return s.k.Set(crypto.KeySession, token)
}

func (s *keyringSessions) Clear() error {
	return s.k.Delete(crypto.KeySession)
}
