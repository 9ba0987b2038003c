package temperature

// CSV header names of the columns the dashboard consumes.
const (
	ColumnMonth   = "Month"
	ColumnDay     = "Day"
	ColumnMaxTemp = "max_temp"
	ColumnMinTemp = "min_temp"
)

// RequiredColumns lists the header names a source document must carry.
var RequiredColumns = []string{ColumnMonth, ColumnDay, ColumnMaxTemp, ColumnMinTemp}

// RawRow is one untyped CSV row keyed by header name. Cells may be empty or
// non-numeric; unknown columns are carried along and ignored.
type RawRow map[string]string

// Record is a validated daily reading. Month is always within 1..12 and both
// temperatures are finite.
type Record struct {
	Month   int     `json:"month"`
	Day     int     `json:"day"`
	MaxTemp float64 `json:"maxTemp"`
	MinTemp float64 `json:"minTemp"`
}

// Granularity selects how records are aggregated for the line chart.
type Granularity string

const (
	Monthly Granularity = "monthly"
	Daily   Granularity = "daily"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	return g == Monthly || g == Daily
}

// Series is the chart-ready output of aggregation. The three slices have the
// same length and are aligned by index. A nil value means the bucket had no
// data; it is never replaced by a numeric stand-in.
type Series struct {
	Labels    []string   `json:"labels"`
	MaxValues []*float64 `json:"maxValues"`
	MinValues []*float64 `json:"minValues"`
}

// Len returns the number of points in the series.
func (s Series) Len() int {
	return len(s.Labels)
}
