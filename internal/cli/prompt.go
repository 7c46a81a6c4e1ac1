package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/andy/invoicer/internal/domain"
	"golang.org/x/term"
)

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// readSecret reads a line without echo
func readSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("passwords can only be entered from a terminal")
	}
	fmt.Print(prompt)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(value), nil
}

// readNewPassword asks for a password twice
func readNewPassword() (password, confirm string, err error) {
	if password, err = readSecret("Password: "); err != nil {
		return "", "", err
	}
	if confirm, err = readSecret("Confirm password: "); err != nil {
		return "", "", err
	}
	return password, confirm, nil
}

// explain turns domain errors into something a user can act on
func explain(err error) error {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		return errors.New(verr.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return errors.New("not signed in; run `invoicer auth signin` first")
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fmt.Errorf("invoice store unavailable, run `invoicer setup`: %w", err)
	}
	return err
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
