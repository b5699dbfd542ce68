package report

import "errors"

var (
	// ErrMalformedFilename indicates a listed file looks like a daily report but its name
	// is not a valid month-day-year calendar date.
	ErrMalformedFilename = errors.New("report: malformed filename")

	// ErrMalformedRow indicates file content that cannot be turned into canonical records.
	ErrMalformedRow = errors.New("report: malformed row")
)
