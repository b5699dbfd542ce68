package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDailyReportName(t *testing.T) {
	assert.True(t, IsDailyReportName("01-22-2020.csv"))
	assert.True(t, IsDailyReportName("13-01-2020.csv"))
	assert.False(t, IsDailyReportName(".gitignore"))
	assert.False(t, IsDailyReportName("README.md"))
	assert.False(t, IsDailyReportName("01-22-2020.csv.bak"))
	assert.False(t, IsDailyReportName("1-22-2020.csv"))
}

func TestFileDate(t *testing.T) {
	date, err := FileDate("02-29-2020.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), date)

	_, err = FileDate("13-01-2020.csv")
	assert.ErrorIs(t, err, ErrMalformedFilename)

	_, err = FileDate("02-30-2021.csv")
	assert.ErrorIs(t, err, ErrMalformedFilename)
}
