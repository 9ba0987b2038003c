package temperature

import (
	"math"
	"strconv"
	"strings"
)

// ValidationStats summarizes one validation pass.
type ValidationStats struct {
	Accepted int
	Rejected int
}

// Validate keeps the rows whose max_temp and min_temp are finite numbers and
// whose Month is an integer in 1..12, in input order. Other rows are dropped
// without error.
func Validate(rows []RawRow) []Record {
	records, _ := ValidateWithStats(rows)
	return records
}

// ValidateWithStats is Validate plus a count of accepted and rejected rows.
func ValidateWithStats(rows []RawRow) ([]Record, ValidationStats) {
	records := make([]Record, 0, len(rows))
	var stats ValidationStats

	for _, row := range rows {
		rec, ok := parseRow(row)
		if !ok {
			stats.Rejected++
			continue
		}
		records = append(records, rec)
		stats.Accepted++
	}

	return records, stats
}

func parseRow(row RawRow) (Record, bool) {
	maxTemp, ok := parseFinite(row[ColumnMaxTemp])
	if !ok {
		return Record{}, false
	}
	minTemp, ok := parseFinite(row[ColumnMinTemp])
	if !ok {
		return Record{}, false
	}
	month, ok := parseInteger(row[ColumnMonth])
	if !ok || month < 1 || month > 12 {
		return Record{}, false
	}

	// Day is carried through without range checks; unparseable days become 0.
	day, _ := parseInteger(row[ColumnDay])

	return Record{
		Month:   month,
		Day:     day,
		MaxTemp: maxTemp,
		MinTemp: minTemp,
	}, true
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseInteger accepts integral text such as "3" or "3.0".
func parseInteger(s string) (int, bool) {
	v, ok := parseFinite(s)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
