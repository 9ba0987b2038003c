package temperature

// SeriesStyle describes how one dataset of a chart is drawn. The values are
// passed through to the rendering layer untouched.
type SeriesStyle struct {
	Label           string  `json:"label"`
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor"`
	BarColor        string  `json:"barColor"`
	Tension         float64 `json:"tension"`
}

// RGB is an opaque 8-bit color shared by the JSON styles and the image renderer.
type RGB struct {
	R, G, B uint8
}

var (
	MaxColor = RGB{R: 255, G: 99, B: 132}
	MinColor = RGB{R: 54, G: 162, B: 235}
)

const (
	MaxSeriesName = "Max Temp (°C)"
	MinSeriesName = "Min Temp (°C)"
)

// ChartOptions are the axis and legend colors of both charts.
type ChartOptions struct {
	Responsive  bool   `json:"responsive"`
	LegendColor string `json:"legendColor"`
	TickColor   string `json:"tickColor"`
}

// DefaultChartOptions renders light text on a dark panel.
var DefaultChartOptions = ChartOptions{
	Responsive:  true,
	LegendColor: "#fff",
	TickColor:   "#fff",
}

// Styles returns the max and min dataset styles for a line chart of the
// given granularity. Monthly curves are smoothed slightly more than daily ones.
func Styles(g Granularity) (maxStyle, minStyle SeriesStyle) {
	tension := 0.3
	if g == Monthly {
		tension = 0.4
	}
	return SeriesStyle{
			Label:           MaxSeriesName,
			BorderColor:     "rgba(255, 99, 132, 1)",
			BackgroundColor: "rgba(255, 99, 132, 0.2)",
			BarColor:        "rgba(255, 99, 132, 0.7)",
			Tension:         tension,
		}, SeriesStyle{
			Label:           MinSeriesName,
			BorderColor:     "rgba(54, 162, 235, 1)",
			BackgroundColor: "rgba(54, 162, 235, 0.2)",
			BarColor:        "rgba(54, 162, 235, 0.7)",
			Tension:         tension,
		}
}
