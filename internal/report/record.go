// Package report holds the canonical daily report record and the logic that turns one
// raw daily report CSV file into canonical records.
package report

import "time"

// DailyRecord is the normalized representation of one row of a daily report. It is the
// unit persisted in the daily_reports table.
type DailyRecord struct {
	Region     string    `db:"region" json:"region"`
	Province   *string   `db:"province" json:"province,omitempty"`
	City       *string   `db:"city" json:"city,omitempty"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	LastUpdate time.Time `db:"last_update" json:"last_update"`
	Active     int64     `db:"active" json:"active"`
	Confirmed  int64     `db:"confirmed" json:"confirmed"`
	Deaths     int64     `db:"deaths" json:"deaths"`
	Recovered  int64     `db:"recovered" json:"recovered"`
}

// Day returns the UTC midnight of the given time.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
