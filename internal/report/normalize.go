package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
)

// Canonical column names.
const (
	ColumnRegion     = "region"
	ColumnProvince   = "province"
	ColumnCity       = "city"
	ColumnLatitude   = "latitude"
	ColumnLongitude  = "longitude"
	ColumnLastUpdate = "last_update"
	ColumnActive     = "active"
	ColumnConfirmed  = "confirmed"
	ColumnDeaths     = "deaths"
	ColumnRecovered  = "recovered"
)

// columnNames maps every header spelling used across the historical daily reports to its
// canonical column. Canonical names map to themselves. Headers not listed here are dropped.
var columnNames = map[string]string{
	"Province/State": ColumnProvince,
	"Province_State": ColumnProvince,
	"Country/Region": ColumnRegion,
	"Country_Region": ColumnRegion,
	"Admin2":         ColumnCity,
	"Latitude":       ColumnLatitude,
	"Lat":            ColumnLatitude,
	"Longitude":      ColumnLongitude,
	"Long":           ColumnLongitude,
	"Long_":          ColumnLongitude,
	"Last Update":    ColumnLastUpdate,
	"Last_Update":    ColumnLastUpdate,
	"Active":         ColumnActive,
	"Confirmed":      ColumnConfirmed,
	"Deaths":         ColumnDeaths,
	"Recovered":      ColumnRecovered,

	ColumnRegion:     ColumnRegion,
	ColumnProvince:   ColumnProvince,
	ColumnCity:       ColumnCity,
	ColumnLatitude:   ColumnLatitude,
	ColumnLongitude:  ColumnLongitude,
	ColumnLastUpdate: ColumnLastUpdate,
	ColumnActive:     ColumnActive,
	ColumnConfirmed:  ColumnConfirmed,
	ColumnDeaths:     ColumnDeaths,
	ColumnRecovered:  ColumnRecovered,
}

// Every layout carries these, a file without one of them is malformed.
var requiredColumns = []string{ColumnConfirmed, ColumnDeaths, ColumnRecovered}

// missingValues are the cell spellings read as "no value", matching what the data
// publishers' own tooling treats as NA.
var missingValues = map[string]struct{}{
	"":     {},
	"NaN":  {},
	"nan":  {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"#N/A": {},
	"null": {},
	"NULL": {},
}

// Row is one normalized row. LastUpdate is carried through as it appeared in the file.
type Row struct {
	Region     string
	Province   *string
	City       *string
	Latitude   float64
	Longitude  float64
	LastUpdate string
	Active     int64
	Confirmed  int64
	Deaths     int64
	Recovered  int64
}

// rawRow is a row after renaming but before type coercion.
type rawRow struct {
	Region     string `csv:"region"`
	Province   string `csv:"province"`
	City       string `csv:"city"`
	Latitude   string `csv:"latitude"`
	Longitude  string `csv:"longitude"`
	LastUpdate string `csv:"last_update"`
	Active     string `csv:"active"`
	Confirmed  string `csv:"confirmed"`
	Deaths     string `csv:"deaths"`
	Recovered  string `csv:"recovered"`
}

// CanonicalHeader renames header to canonical column names. Unrecognised columns are
// replaced by unique placeholders that no canonical field decodes. Two source columns
// mapping to the same canonical column is an error.
func CanonicalHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]string, len(header))
	for i, name := range header {
		canonical, ok := columnNames[strings.TrimSpace(name)]
		if !ok {
			out[i] = fmt.Sprintf("_unmapped_%d", i)
			continue
		}
		if prev, dup := seen[canonical]; dup {
			return nil, fmt.Errorf("%w: columns %q and %q both map to %q", ErrMalformedRow, prev, name, canonical)
		}
		seen[canonical] = name
		out[i] = canonical
	}
	return out, nil
}

// Normalize maps a raw daily report table onto the canonical column set. The output has
// exactly one Row per input row, in input order.
func Normalize(t *Table) ([]Row, error) {
	header, err := CanonicalHeader(t.Header)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	for _, name := range requiredColumns {
		if !present[name] {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedRow, name)
		}
	}

	rows := make([]Row, 0, len(t.Rows))
	if len(t.Rows) == 0 {
		return rows, nil
	}

	dec, err := csvutil.NewDecoder(&tableReader{rows: t.Rows}, header...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}

	for line := 2; ; line++ {
		var raw rawRow
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}

		row, err := raw.normalize()
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (r rawRow) normalize() (Row, error) {
	row := Row{
		Region:     strings.TrimSpace(r.Region),
		Province:   optionalText(r.Province),
		City:       optionalText(r.City),
		LastUpdate: strings.TrimSpace(r.LastUpdate),
	}
	if isMissing(row.Region) {
		row.Region = ""
	}
	if isMissing(row.LastUpdate) {
		row.LastUpdate = ""
	}

	// Latitude, longitude and active are missing from older layouts. Their fields stay
	// empty after decoding and coerce to the zero default like any blank cell.
	var err error
	if row.Latitude, err = parseFloat(ColumnLatitude, r.Latitude); err != nil {
		return Row{}, err
	}
	if row.Longitude, err = parseFloat(ColumnLongitude, r.Longitude); err != nil {
		return Row{}, err
	}
	if row.Active, err = parseCount(ColumnActive, r.Active); err != nil {
		return Row{}, err
	}
	if row.Confirmed, err = parseCount(ColumnConfirmed, r.Confirmed); err != nil {
		return Row{}, err
	}
	if row.Deaths, err = parseCount(ColumnDeaths, r.Deaths); err != nil {
		return Row{}, err
	}
	if row.Recovered, err = parseCount(ColumnRecovered, r.Recovered); err != nil {
		return Row{}, err
	}

	return row, nil
}

func isMissing(value string) bool {
	_, ok := missingValues[strings.TrimSpace(value)]
	return ok
}

func optionalText(value string) *string {
	value = strings.TrimSpace(value)
	if isMissing(value) {
		return nil
	}
	return &value
}

func parseFloat(column, value string) (float64, error) {
	if isMissing(value) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("column %s: %q is not numeric", column, value)
	}
	return f, nil
}

// parseCount accepts integers and integral-looking floats ("12.0"); fractional counts are
// rounded to the nearest integer.
func parseCount(column, value string) (int64, error) {
	if isMissing(value) {
		return 0, nil
	}
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	f, err := parseFloat(column, value)
	if err != nil {
		return 0, err
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("column %s: %q is out of range", column, value)
	}
	return int64(math.Round(f)), nil
}
