package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/covid19-reports/reportsync/internal/report"
)

// findByDay returns the records of the given UTC day in insertion order.
func (s *Store) findByDay(ctx context.Context, day time.Time) ([]report.DailyRecord, error) {
	db, err := s.DB(ctx)
	if err != nil {
		return nil, err
	}

	from, to := dayRange(day)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE last_update >= ? AND last_update < ? ORDER BY id",
		strings.Join(s.opts.Schema.Columns, ", "), s.opts.Schema.Table)

	var records []report.DailyRecord
	if err := db.SelectContext(ctx, &records, db.Rebind(query), from, to); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].LastUpdate = records[i].LastUpdate.UTC()
	}
	return records, nil
}
