package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logger"
	"github.com/andy/invoicer/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const recoveryTTL = 15 * time.Minute

type Options struct {
	BcryptCost int
	SessionTTL time.Duration
}

// Service manages local accounts and the signed-in identity. Components
// read the identity through Current and react to changes via Subscribe.
type Service struct {
	accounts repository.AccountRepository
	tokens   *TokenIssuer
	sessions SessionStore
	resets   ResetNotifier
	validate *validator.Validate
	log      *logger.Logger
	opts     Options

	mu      sync.RWMutex
	current *domain.Identity

	subMu  sync.Mutex
	subs   map[int]func(domain.AuthEvent)
	nextID int
}

func NewService(
	accounts repository.AccountRepository,
	tokens *TokenIssuer,
	sessions SessionStore,
	resets ResetNotifier,
	log *logger.Logger,
	opts Options,
) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		sessions: sessions,
		resets:   resets,
		validate: validator.New(),
		log:      log.Named("auth"),
		opts:     opts,
		subs:     make(map[int]func(domain.AuthEvent)),
	}
}

// Current returns the signed-in identity, if any
func (s *Service) Current() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Identity{}, false
	}
	return *s.current, true
}

// Subscribe registers fn for identity changes. The returned function
// removes the registration; calling it more than once is harmless.
func (s *Service) Subscribe(fn func(domain.AuthEvent)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// emit calls subscribers in registration order, without holding any lock
func (s *Service) emit(ev domain.AuthEvent) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domain.AuthEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Restore picks up the session saved by a previous run. A missing, expired
// or orphaned token leaves the user signed out.
func (s *Service) Restore(ctx context.Context) error {
	token, err := s.sessions.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if token == "" {
		return nil
	}

	id, err := s.tokens.Parse(token, PurposeSession)
	if err != nil {
		s.log.Info().Err(err).Msg("discarding saved session")
		return s.sessions.Clear()
	}

	if _, err := s.accounts.GetByID(ctx, id.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.sessions.Clear()
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	return nil
}

type signUpInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"eqfield=Password"`
}

type signInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type passwordInput struct {
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"eqfield=Password"`
}

// SignUp creates an account and signs it in.
//
// Whether an email is taken is decided by a single lookup in the account
// repository. Sign-up therefore tells the caller that an address is already
// registered; password reset never does.
func (s *Service) SignUp(ctx context.Context, email, password, confirm string) (domain.Identity, error) {
	email = strings.TrimSpace(email)
	if err := s.check(signUpInput{Email: email, Password: password, Confirm: confirm}); err != nil {
		return domain.Identity{}, err
	}

	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.Identity{}, emailTaken()
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Identity{}, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Identity{}, emailTaken()
		}
		return domain.Identity{}, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info().Str("user_id", account.ID).Msg("account created")
	return s.establish(account.Identity())
}

func emailTaken() error {
	return &domain.ValidationError{Field: "email", Message: "this email is already registered, sign in instead"}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	email = strings.TrimSpace(email)
	if err := s.check(signInInput{Email: email, Password: password}); err != nil {
		return domain.Identity{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.log.Info().Str("user_id", account.ID).Msg("sign-in rejected")
		return domain.Identity{}, ErrInvalidCredentials
	}

	return s.establish(account.Identity())
}

// establish records id as the signed-in identity and persists a session
func (s *Service) establish(id domain.Identity) (domain.Identity, error) {
	token, err := s.tokens.Issue(id, PurposeSession, s.opts.SessionTTL)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.sessions.Save(token); err != nil {
		return domain.Identity{}, fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()

	s.emit(domain.AuthEvent{Kind: domain.SignedIn, Identity: id})
	return id, nil
}

// SignOut forgets the session. Signing out while signed out does nothing.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if prev == nil {
		return nil
	}

	s.emit(domain.AuthEvent{Kind: domain.SignedOut, Identity: *prev})
	return nil
}

// RequestPasswordReset sends a recovery token if the account exists. The
// result is the same whether or not it does.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return &domain.ValidationError{Field: "email", Message: "enter a valid email address"}
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debug().Msg("password reset for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := s.tokens.Issue(account.Identity(), PurposeRecovery, recoveryTTL)
	if err != nil {
		return err
	}
	return s.resets.SendReset(ctx, account.Email, token)
}

// CompletePasswordReset sets a new password using a recovery token and
// signs the account in
func (s *Service) CompletePasswordReset(ctx context.Context, token, password, confirm string) (domain.Identity, error) {
	if err := s.check(passwordInput{Password: password, Confirm: confirm}); err != nil {
		return domain.Identity{}, err
	}

	id, err := s.tokens.Parse(strings.TrimSpace(token), PurposeRecovery)
	if err != nil {
		return domain.Identity{}, &domain.ValidationError{Field: "token", Message: "reset link is invalid or has expired"}
	}

	if err := s.setPassword(ctx, id.UserID, password); err != nil {
		return domain.Identity{}, err
	}

	id, err = s.establish(id)
	if err != nil {
		return domain.Identity{}, err
	}
	s.emit(domain.AuthEvent{Kind: domain.PasswordUpdated, Identity: id})
	return id, nil
}

// UpdatePassword changes the signed-in user's password
func (s *Service) UpdatePassword(ctx context.Context, password, confirm string) error {
	id, ok := s.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}
	if err := s.check(passwordInput{Password: password, Confirm: confirm}); err != nil {
		return err
	}

	if err := s.setPassword(ctx, id.UserID, password); err != nil {
		return err
	}

	s.emit(domain.AuthEvent{Kind: domain.PasswordUpdated, Identity: id})
	return nil
}

func (s *Service) setPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("password updated")
	return nil
}

// check runs struct validation and reports the first failure inline
func (s *Service) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "this field is required"
	case "email":
		msg = "enter a valid email address"
	case "min":
		msg = fmt.Sprintf("must be at least %s characters", fe.Param())
	case "eqfield":
		msg = "passwords do not match"
	default:
		msg = fmt.Sprintf("failed %s check", fe.Tag())
	}
	return &domain.ValidationError{Field: field, Message: msg}
}
