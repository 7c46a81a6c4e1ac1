package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andy/invoicer/internal/logger"
)

// ResetNotifier delivers a recovery token to the account owner
type ResetNotifier interface {
	SendReset(ctx context.Context, email, token string) error
}

// OutboxNotifier drops recovery messages into a local outbox directory.
// A local install has no mail server; the owner reads the file instead.
type OutboxNotifier struct {
	Dir string
	Log *logger.Logger
}

func (n *OutboxNotifier) SendReset(ctx context.Context, email, token string) error {
	if err := os.MkdirAll(n.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create outbox: %w", err)
	}

	name := fmt.Sprintf("reset-%s-%d.txt", sanitizeEmail(email), time.Now().Unix())
	body := fmt.Sprintf(
		"To: %s\nSubject: Reset your password\n\nUse this token within 15 minutes:\n\n%s\n",
		email, token,
	)
	path := filepath.Join(n.Dir, name)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		return fmt.Errorf("failed to write reset message: %w", err)
	}

	if n.Log != nil {
		n.Log.Info().Str("path", path).Msg("password reset message written")
	}
	return nil
}

func sanitizeEmail(email string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, email)
}
