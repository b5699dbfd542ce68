package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, csv string) []Row {
	t.Helper()
	table, err := ParseTable([]byte(csv))
	require.NoError(t, err)
	rows, err := Normalize(table)
	require.NoError(t, err)
	return rows
}

func TestNormalizeHeaderVariantsAgree(t *testing.T) {
	slash := "Province/State,Country/Region,Last Update,Confirmed,Deaths,Recovered,Latitude,Longitude\n" +
		"Hubei,Mainland China,2020-03-01T10:13:14,66907,2761,31536,30.9756,112.2707\n" +
		",Italy,2020-03-01T23:23:02,1694,34,83,43.0,12.0\n"
	underscore := "FIPS,Admin2,Province_State,Country_Region,Last_Update,Lat,Long_,Confirmed,Deaths,Recovered,Combined_Key\n" +
		",,Hubei,Mainland China,2020-03-01T10:13:14,30.9756,112.2707,66907,2761,31536,\"Hubei, Mainland China\"\n" +
		",,,Italy,2020-03-01T23:23:02,43.0,12.0,1694,34,83,Italy\n"

	canonical := "province,region,last_update,latitude,longitude,confirmed,deaths,recovered\n" +
		"Hubei,Mainland China,2020-03-01T10:13:14,30.9756,112.2707,66907,2761,31536\n" +
		",Italy,2020-03-01T23:23:02,43.0,12.0,1694,34,83\n"

	want := mustNormalize(t, slash)
	require.Len(t, want, 2)
	assert.Equal(t, want, mustNormalize(t, underscore))
	assert.Equal(t, want, mustNormalize(t, canonical))
}

func TestNormalizeCanonicalHeaderIsIdentity(t *testing.T) {
	header := []string{"region", "province", "city", "latitude", "longitude", "last_update", "active", "confirmed", "deaths", "recovered"}

	got, err := CanonicalHeader(header)
	require.NoError(t, err)
	assert.Equal(t, header, got)
}

func TestNormalizeShortLongAlias(t *testing.T) {
	rows := mustNormalize(t, "Country/Region,Last Update,Confirmed,Deaths,Recovered,Lat,Long\n"+
		"France,2020-03-05T15:03:23,423,7,12,46.2276,2.2137\n")

	require.Len(t, rows, 1)
	assert.Equal(t, 46.2276, rows[0].Latitude)
	assert.Equal(t, 2.2137, rows[0].Longitude)
}

func TestNormalizeSynthesizesMissingColumns(t *testing.T) {
	rows := mustNormalize(t, "Province/State,Country/Region,Last Update,Confirmed,Deaths,Recovered\n"+
		"Anhui,Mainland China,1/22/2020 17:00,1,,\n"+
		"Beijing,Mainland China,1/22/2020 17:00,14,,\n")

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Zero(t, row.Latitude)
		assert.Zero(t, row.Longitude)
		assert.Zero(t, row.Active)
		assert.Zero(t, row.Deaths)
		assert.Zero(t, row.Recovered)
	}
	assert.Equal(t, int64(14), rows[1].Confirmed)
}

func TestNormalizeBlankNumericCellsBecomeZero(t *testing.T) {
	rows := mustNormalize(t, "Admin2,Province_State,Country_Region,Last_Update,Lat,Long_,Confirmed,Deaths,Recovered,Active\n"+
		"Unassigned,Alabama,US,2020-04-01 21:58:49,,,3,,NaN,\n")

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Zero(t, row.Latitude)
	assert.Zero(t, row.Longitude)
	assert.Equal(t, int64(3), row.Confirmed)
	assert.Zero(t, row.Deaths)
	assert.Zero(t, row.Recovered)
	assert.Zero(t, row.Active)
	require.NotNil(t, row.City)
	assert.Equal(t, "Unassigned", *row.City)
}

func TestNormalizeNullableText(t *testing.T) {
	rows := mustNormalize(t, "Province/State,Country/Region,Last Update,Confirmed,Deaths,Recovered\n"+
		",Japan,1/22/2020 17:00,2,,\n")

	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Province)
	assert.Nil(t, rows[0].City)
	assert.Equal(t, "Japan", rows[0].Region)
	assert.Equal(t, "1/22/2020 17:00", rows[0].LastUpdate)
}

func TestNormalizeIntegralFloatCounts(t *testing.T) {
	rows := mustNormalize(t, "Country/Region,Last Update,Confirmed,Deaths,Recovered\n"+
		"Spain,2020-03-01T23:23:02,84.0,0.0,2.0\n")

	require.Len(t, rows, 1)
	assert.Equal(t, int64(84), rows[0].Confirmed)
	assert.Equal(t, int64(2), rows[0].Recovered)
}

func TestNormalizeRejectsNonNumeric(t *testing.T) {
	table, err := ParseTable([]byte("Country/Region,Last Update,Confirmed,Deaths,Recovered\n" +
		"Spain,2020-03-01T23:23:02,many,0,2\n"))
	require.NoError(t, err)

	_, err = Normalize(table)
	assert.ErrorIs(t, err, ErrMalformedRow)
	assert.ErrorContains(t, err, "line 2")
}

func TestNormalizeRejectsOutOfRangeCount(t *testing.T) {
	for _, value := range []string{"9223372036854775808", "9.3e18", "-9.3e18", "1e300"} {
		t.Run(value, func(t *testing.T) {
			table, err := ParseTable([]byte("Country/Region,Last Update,Confirmed,Deaths,Recovered\n" +
				"Spain,2020-03-01T23:23:02," + value + ",0,2\n"))
			require.NoError(t, err)

			_, err = Normalize(table)
			assert.ErrorIs(t, err, ErrMalformedRow)
			assert.ErrorContains(t, err, "out of range")
		})
	}

	count, err := parseCount(ColumnConfirmed, "9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), count)
}

func TestNormalizeRejectsMissingRequiredColumn(t *testing.T) {
	table, err := ParseTable([]byte("Country/Region,Last Update,Confirmed,Deaths\nSpain,2020-03-01T23:23:02,1,0\n"))
	require.NoError(t, err)

	_, err = Normalize(table)
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestNormalizeRejectsAmbiguousHeader(t *testing.T) {
	_, err := CanonicalHeader([]string{"Lat", "Latitude", "Confirmed"})
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestNormalizeKeepsRowCountAndOrder(t *testing.T) {
	rows := mustNormalize(t, "Country_Region,Last_Update,Confirmed,Deaths,Recovered\n"+
		"A,2020-03-22 23:45:00,1,0,0\n"+
		"B,2020-03-22 23:45:00,2,0,0\n"+
		"C,2020-03-22 23:45:00,3,0,0\n")

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{rows[0].Region, rows[1].Region, rows[2].Region})
}

func TestNormalizeHeaderOnly(t *testing.T) {
	rows := mustNormalize(t, "Country_Region,Last_Update,Confirmed,Deaths,Recovered\n")
	assert.Empty(t, rows)
}
