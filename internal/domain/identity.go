package domain

import "time"

// Identity is the signed-in principal that store operations are scoped to
type Identity struct {
	UserID string
	Email  string
}

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Account) Identity() Identity {
	return Identity{UserID: a.ID, Email: a.Email}
}

type AuthEventKind int

const (
	SignedIn AuthEventKind = iota + 1
	SignedOut
	PasswordUpdated
)

func (k AuthEventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case PasswordUpdated:
		return "password_updated"
	}
	return "unknown"
}

// AuthEvent is delivered to subscribers whenever the identity changes
type AuthEvent struct {
	Kind     AuthEventKind
	Identity Identity
}
