package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logger"
	"github.com/andy/invoicer/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memAccounts struct {
	mu      sync.Mutex
	byID    map[string]*domain.Account
	lookups int
	creates int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[string]*domain.Account)}
}

func (m *memAccounts) Create(ctx context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	for _, existing := range m.byID {
		if existing.Email == strings.ToLower(a.Email) {
			return repository.ErrDuplicate
		}
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, a := range m.byID {
		if a.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) UpdatePassword(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

type memSessions struct {
	token string
}

func (m *memSessions) Load() (string, error) { return m.token, nil }
func (m *memSessions) Save(t string) error   { m.token = t; return nil }
func (m *memSessions) Clear() error          { m.token = ""; return nil }

type captureNotifier struct {
	sent map[string]string
}

func (c *captureNotifier) SendReset(ctx context.Context, email, token string) error {
	if c.sent == nil {
		c.sent = make(map[string]string)
	}
	c.sent[email] = token
	return nil
}

type harness struct {
	svc      *Service
	accounts *memAccounts
	sessions *memSessions
	outbox   *captureNotifier
	tokens   *TokenIssuer
}

func newHarness() *harness {
	h := &harness{
		accounts: newMemAccounts(),
		sessions: &memSessions{},
		outbox:   &captureNotifier{},
		tokens:   NewTokenIssuer("test-secret", "invoicer-test"),
	}
	h.svc = NewService(h.accounts, h.tokens, h.sessions, h.outbox, logger.Nop(), Options{BcryptCost: bcrypt.MinCost})
	return h
}

func TestSignUp_SignsIn(t *testing.T) {
	h := newHarness()
	var events []domain.AuthEvent
	h.svc.Subscribe(func(ev domain.AuthEvent) { events = append(events, ev) })

	id, err := h.svc.SignUp(context.Background(), " New@Example.com ", "secret1", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", id.Email)
	current, ok := h.svc.Current()
	require.True(t, ok)
	assert.Equal(t, id, current)
	assert.NotEmpty(t, h.sessions.token)
	require.Len(t, events, 1)
	assert.Equal(t, domain.SignedIn, events[0].Kind)
}

func TestSignUp_Validation(t *testing.T) {
	tests := []struct {
		name, email, password, confirm, field string
	}{
		{"bad email", "not-an-email", "secret1", "secret1", "email"},
		{"short password", "a@example.com", "abc", "abc", "password"},
		{"mismatch", "a@example.com", "secret1", "secret2", "confirm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			_, err := h.svc.SignUp(context.Background(), tt.email, tt.password, tt.confirm)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.field, domain.FieldOf(err))
			assert.Equal(t, 0, h.accounts.creates)
		})
	}
}

func TestSignUp_ExistingEmail(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, "taken@example.com", "secret1", "secret1")
	require.NoError(t, err)
	require.NoError(t, h.svc.SignOut(ctx))

	_, err = h.svc.SignUp(ctx, "TAKEN@example.com", "other12", "other12")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "email", domain.FieldOf(err))
	assert.Equal(t, 1, h.accounts.creates, "no second create once the lookup found the email")
}

func TestSignIn(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)
	require.NoError(t, h.svc.SignOut(ctx))

	_, err = h.svc.SignIn(ctx, "me@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	id, err := h.svc.SignIn(ctx, "me@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", id.Email)
}

func TestSignOut_NotifiesAndUnsubscribes(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)

	var kinds []domain.AuthEventKind
	unsubscribe := h.svc.Subscribe(func(ev domain.AuthEvent) { kinds = append(kinds, ev.Kind) })

	require.NoError(t, h.svc.SignOut(ctx))
	_, ok := h.svc.Current()
	assert.False(t, ok)
	assert.Empty(t, h.sessions.token)
	assert.Equal(t, []domain.AuthEventKind{domain.SignedOut}, kinds)

	unsubscribe()
	unsubscribe()
	_, err = h.svc.SignIn(ctx, "me@example.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, kinds, 1, "no events after unsubscribe")

	// Signing out twice emits once.
	require.NoError(t, h.svc.SignOut(ctx))
	require.NoError(t, h.svc.SignOut(ctx))
}

func TestRestore(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id, err := h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)

	restarted := NewService(h.accounts, h.tokens, h.sessions, h.outbox, logger.Nop(), Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, restarted.Restore(ctx))

	current, ok := restarted.Current()
	require.True(t, ok)
	assert.Equal(t, id.UserID, current.UserID)
}

func TestRestore_ExpiredSession(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)

	h.tokens.now = func() time.Time { return time.Now().Add(365 * 24 * time.Hour) }
	fresh := NewService(h.accounts, h.tokens, h.sessions, h.outbox, logger.Nop(), Options{})
	require.NoError(t, fresh.Restore(ctx))

	_, ok := fresh.Current()
	assert.False(t, ok)
	assert.Empty(t, h.sessions.token)
}

func TestPasswordReset_DoesNotRevealAccounts(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)

	assert.NoError(t, h.svc.RequestPasswordReset(ctx, "me@example.com"))
	assert.NoError(t, h.svc.RequestPasswordReset(ctx, "ghost@example.com"))

	assert.Contains(t, h.outbox.sent, "me@example.com")
	assert.NotContains(t, h.outbox.sent, "ghost@example.com")

	assert.ErrorIs(t, h.svc.RequestPasswordReset(ctx, "garbage"), domain.ErrValidation)
}

func TestCompletePasswordReset(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)
	require.NoError(t, h.svc.SignOut(ctx))
	require.NoError(t, h.svc.RequestPasswordReset(ctx, "me@example.com"))
	token := h.outbox.sent["me@example.com"]

	_, err = h.svc.CompletePasswordReset(ctx, token, "newpass", "different")
	assert.Equal(t, "confirm", domain.FieldOf(err))

	_, err = h.svc.CompletePasswordReset(ctx, "not-a-token", "newpass", "newpass")
	assert.Equal(t, "token", domain.FieldOf(err))

	var kinds []domain.AuthEventKind
	h.svc.Subscribe(func(ev domain.AuthEvent) { kinds = append(kinds, ev.Kind) })

	_, err = h.svc.CompletePasswordReset(ctx, token, "newpass", "newpass")
	require.NoError(t, err)
	assert.Equal(t, []domain.AuthEventKind{domain.SignedIn, domain.PasswordUpdated}, kinds)

	require.NoError(t, h.svc.SignOut(ctx))
	_, err = h.svc.SignIn(ctx, "me@example.com", "newpass")
	assert.NoError(t, err)
}

func TestSessionTokenIsNotARecoveryToken(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)

	_, err = h.svc.CompletePasswordReset(ctx, h.sessions.token, "newpass", "newpass")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdatePassword(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	err := h.svc.UpdatePassword(ctx, "secret2", "secret2")
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))

	_, err = h.svc.SignUp(ctx, "me@example.com", "secret1", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "password", domain.FieldOf(h.svc.UpdatePassword(ctx, "123", "123")))
	require.NoError(t, h.svc.UpdatePassword(ctx, "secret2", "secret2"))

	require.NoError(t, h.svc.SignOut(ctx))
	_, err = h.svc.SignIn(ctx, "me@example.com", "secret2")
	assert.NoError(t, err)
}
