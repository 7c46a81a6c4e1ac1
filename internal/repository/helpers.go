package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// timeLayout is the format for storing times in SQLite. The fixed-width
// fraction keeps text ordering identical to time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var timeNow = time.Now

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// encodeInvoice serializes the document body stored in invoice_data.
// The id column is authoritative, so it is left out of the blob.
func encodeInvoice(inv domain.Invoice) ([]byte, error) {
	inv.ID = ""
	data, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice: %w", err)
	}
	return data, nil
}

func decodeInvoice(id string, data []byte, updatedAt time.Time) (domain.Invoice, error) {
	var inv domain.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to decode invoice %s: %w", id, err)
	}
	inv.ID = id
	inv.UpdatedAt = updatedAt
	return inv, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// classifySQLite maps driver errors onto repository sentinels
func classifySQLite(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("%w: %v", ErrTableMissing, err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// classifyPostgres maps server error codes onto repository sentinels
func classifyPostgres(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UndefinedTable:
			return fmt.Errorf("%w: %v", ErrTableMissing, err)
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}
	return err
}
