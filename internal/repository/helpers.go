package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/billing/internal/domain"
)

// timeLayout is the RFC3339 format for storing timestamps
const timeLayout = time.RFC3339

// parseTime parses a time string in RFC3339 format
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime formats t in UTC so stored timestamps sort lexically
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatDate(t time.Time) string {
	return domain.DateOf(t).Format(domain.DateLayout)
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// storeErr marks a driver failure as domain.ErrStoreUnavailable while keeping the cause
func storeErr(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, domain.ErrStoreUnavailable, err)
}

// notFound maps sql.ErrNoRows onto domain.ErrNotFound
func notFound(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	}
	return storeErr("get "+what, err)
}

// requireAffected checks that an UPDATE or DELETE touched a row
func requireAffected(result sql.Result, missing error, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("get rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, missing)
	}
	return nil
}
