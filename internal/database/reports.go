package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/covid19-reports/reportsync/internal/report"
)

// insertChunk bounds the number of rows sent in one INSERT statement.
const insertChunk = 500

// Insert appends the records to the table in one transaction. Either every record is
// stored or none is.
func (s *Store) Insert(ctx context.Context, records []report.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]report.DailyRecord, len(records))
	for i, r := range records {
		r.LastUpdate = r.LastUpdate.UTC()
		rows[i] = r
	}

	query := s.insertQuery()
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += insertChunk {
			end := min(start+insertChunk, len(rows))
			if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
				return fmt.Errorf("failed to insert reports: %w", classify(err))
			}
		}
		return nil
	})
}

// MaxLastUpdate returns the latest persisted last_update, or nil when the table is empty.
func (s *Store) MaxLastUpdate(ctx context.Context) (*time.Time, error) {
	db, err := s.DB(ctx)
	if err != nil {
		return nil, err
	}

	// ORDER BY keeps the column type so drivers scan a time instead of text.
	query := fmt.Sprintf("SELECT last_update FROM %s ORDER BY last_update DESC LIMIT 1", s.opts.Schema.Table)

	var last time.Time
	if err := db.GetContext(ctx, &last, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query checkpoint: %w", classify(err))
	}
	last = last.UTC()
	return &last, nil
}

// DeleteDay removes every record whose last_update falls on the given UTC day and returns
// the number of removed rows.
func (s *Store) DeleteDay(ctx context.Context, day time.Time) (int64, error) {
	from, to := dayRange(day)
	query := fmt.Sprintf("DELETE FROM %s WHERE last_update >= ? AND last_update < ?", s.opts.Schema.Table)

	var deleted int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(query), from, to)
		if err != nil {
			return fmt.Errorf("failed to delete reports: %w", classify(err))
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count deleted reports: %w", classify(err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// CountByDay returns the number of records whose last_update falls on the given UTC day.
func (s *Store) CountByDay(ctx context.Context, day time.Time) (int64, error) {
	db, err := s.DB(ctx)
	if err != nil {
		return 0, err
	}

	from, to := dayRange(day)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE last_update >= ? AND last_update < ?", s.opts.Schema.Table)

	var count int64
	if err := db.GetContext(ctx, &count, db.Rebind(query), from, to); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", classify(err))
	}
	return count, nil
}

func (s *Store) insertQuery() string {
	cols := s.opts.Schema.Columns
	params := make([]string, len(cols))
	for i, c := range cols {
		params[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.opts.Schema.Table, strings.Join(cols, ", "), strings.Join(params, ", "))
}

// withTx runs fn in a transaction that is rolled back unless fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	db, err := s.DB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}
	return nil
}

func dayRange(t time.Time) (time.Time, time.Time) {
	from := report.Day(t)
	return from, from.Add(24 * time.Hour)
}
