package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrConstraintViolation indicates a row violated a column constraint of the table.
	ErrConstraintViolation = errors.New("database: constraint violation")
	// ErrConnectionFailure indicates the store could not be reached.
	ErrConnectionFailure = errors.New("database: connection failure")
)

// classify wraps driver errors with the matching sentinel. Unknown errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrConnectionFailure) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
		case "08", "57":
			return fmt.Errorf("%w: %w", ErrConnectionFailure, err)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
			return fmt.Errorf("%w: %w", ErrConnectionFailure, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrConnectionFailure, err)
	}
	return err
}
