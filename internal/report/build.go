package report

import (
	"fmt"
	"time"
)

// lastUpdateLayouts covers every timestamp spelling used by the published daily reports.
var lastUpdateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
}

// ParseLastUpdate parses a last_update cell as UTC.
func ParseLastUpdate(value string) (time.Time, error) {
	for _, layout := range lastUpdateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised last_update %q", value)
}

// BuildRecords converts normalized rows into records ready for persistence. Rows without
// a region or a parseable last_update cannot be stored.
func BuildRecords(rows []Row) ([]DailyRecord, error) {
	records := make([]DailyRecord, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		if row.Region == "" {
			return nil, fmt.Errorf("%w: line %d: region is required", ErrMalformedRow, line)
		}
		if row.LastUpdate == "" {
			return nil, fmt.Errorf("%w: line %d: last_update is required", ErrMalformedRow, line)
		}
		lastUpdate, err := ParseLastUpdate(row.LastUpdate)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}

		records = append(records, DailyRecord{
			Region:     row.Region,
			Province:   row.Province,
			City:       row.City,
			Latitude:   row.Latitude,
			Longitude:  row.Longitude,
			LastUpdate: lastUpdate,
			Active:     row.Active,
			Confirmed:  row.Confirmed,
			Deaths:     row.Deaths,
			Recovered:  row.Recovered,
		})
	}
	return records, nil
}

// Decode turns the raw bytes of one daily report file into canonical records.
func Decode(content []byte) ([]DailyRecord, error) {
	table, err := ParseTable(content)
	if err != nil {
		return nil, err
	}
	rows, err := Normalize(table)
	if err != nil {
		return nil, err
	}
	return BuildRecords(rows)
}
