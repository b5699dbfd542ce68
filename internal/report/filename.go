package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var fileNamePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}\.csv$`)

const fileDateLayout = "01-02-2006"

// IsDailyReportName reports whether name has the MM-DD-YYYY.csv shape of a daily report.
func IsDailyReportName(name string) bool {
	return fileNamePattern.MatchString(name)
}

// FileDate returns the report date encoded in a daily report file name, at UTC midnight.
func FileDate(name string) (time.Time, error) {
	date, err := time.ParseInLocation(fileDateLayout, strings.TrimSuffix(name, ".csv"), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrMalformedFilename, name, err)
	}
	return date, nil
}
