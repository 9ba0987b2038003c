// Package render draws temperature series as PNG or SVG charts.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

// Format is an output image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

var ErrUnsupportedFormat = errors.New("unsupported chart format")

// ParseFormat accepts "png" or "svg"; empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

var (
	panelColor = drawing.ColorFromHex("3a3a3a")
	textColor  = drawing.ColorWhite
)

// Renderer draws charts at a fixed canvas size.
type Renderer struct {
	width  int
	height int
}

func New(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Line draws s as two lines over its labels. Absent values are skipped. A
// series with no values at all yields an empty panel instead of an error.
func (r *Renderer) Line(w io.Writer, title string, s temperature.Series, format Format) error {
	maxXs, maxYs := present(s.MaxValues)
	minXs, minYs := present(s.MinValues)
	if len(maxYs)+len(minYs) == 0 {
		return r.blank(w, format)
	}

	var series []chart.Series
	if len(maxYs) > 0 {
		series = append(series, lineSeries(temperature.MaxSeriesName, temperature.MaxColor, maxXs, maxYs))
	}
	if len(minYs) > 0 {
		series = append(series, lineSeries(temperature.MinSeriesName, temperature.MinColor, minXs, minYs))
	}

	lo, hi := yBounds(append(append([]float64(nil), maxYs...), minYs...))
	ticks := xTicks(s.Labels)

	ch := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{FillColor: panelColor, Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Canvas:     chart.Style{FillColor: panelColor},
		XAxis: chart.XAxis{
			Style: axisStyle(),
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value},
		},
		YAxis: chart.YAxis{
			Name:  "°C",
			Style: axisStyle(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{FontColor: drawing.ColorBlack})}

	if err := ch.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

// Bar draws s as pairs of max/min bars, one pair per label. Absent values
// leave a gap.
func (r *Renderer) Bar(w io.Writer, title string, s temperature.Series, format Format) error {
	bars := make([]chart.Value, 0, 2*s.Len())
	var values []float64
	for i, label := range s.Labels {
		if v := s.MaxValues[i]; v != nil {
			bars = append(bars, barValue(label, *v, temperature.MaxColor))
			values = append(values, *v)
			label = ""
		}
		if v := s.MinValues[i]; v != nil {
			bars = append(bars, barValue(label, *v, temperature.MinColor))
			values = append(values, *v)
		}
	}
	if len(bars) == 0 {
		return r.blank(w, format)
	}

	lo, hi := yBounds(append(values, 0))
	barWidth, spacing := barGeometry(r.width, len(bars))

	bc := chart.BarChart{
		Title:        title,
		TitleStyle:   chart.Style{FontColor: textColor},
		Width:        r.width,
		Height:       r.height,
		BarWidth:     barWidth,
		BarSpacing:   spacing,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{FillColor: panelColor, Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Canvas:       chart.Style{FillColor: panelColor},
		XAxis:        axisStyle(),
		YAxis: chart.YAxis{
			Style: axisStyle(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}

	if err := bc.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func lineSeries(name string, c temperature.RGB, xs, ys []float64) chart.ContinuousSeries {
	col := drawing.Color{R: c.R, G: c.G, B: c.B, A: 255}
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
			DotColor:    col,
			DotWidth:    3,
		},
	}
}

func barValue(label string, v float64, c temperature.RGB) chart.Value {
	return chart.Value{
		Label: label,
		Value: v,
		Style: chart.Style{
			FillColor:   drawing.Color{R: c.R, G: c.G, B: c.B, A: 178},
			StrokeColor: drawing.Color{R: c.R, G: c.G, B: c.B, A: 255},
			StrokeWidth: 1,
		},
	}
}

func axisStyle() chart.Style {
	return chart.Style{
		FontColor:   textColor,
		StrokeColor: textColor,
	}
}

// xTicks labels each index. go-chart derives the X range from the ticks, so
// a single label is framed by two unlabelled ticks to keep the range non-zero.
func xTicks(labels []string) []chart.Tick {
	if len(labels) == 1 {
		return []chart.Tick{
			{Value: -0.5},
			{Value: 0, Label: labels[0]},
			{Value: 0.5},
		}
	}
	ticks := make([]chart.Tick, len(labels))
	for i, label := range labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	return ticks
}

// present returns the index and value of every non-nil entry.
func present(values []*float64) (xs, ys []float64) {
	for i, v := range values {
		if v == nil {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, *v)
	}
	return xs, ys
}

// yBounds pads the value range by one degree on each side so a flat series
// still has a non-zero range.
func yBounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return math.Floor(lo) - 1, math.Ceil(hi) + 1
}

func barGeometry(width, n int) (barWidth, spacing int) {
	usable := width - 120
	if usable < n {
		usable = n
	}
	slot := usable / n
	spacing = slot / 4
	barWidth = slot - spacing
	if barWidth < 1 {
		barWidth = 1
	}
	return barWidth, spacing
}

// blank writes an empty panel of the renderer's size.
func (r *Renderer) blank(w io.Writer, format Format) error {
	if format == SVG {
		_, err := fmt.Fprintf(w,
			`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="100%%" height="100%%" fill="#3a3a3a"/></svg>`,
			r.width, r.height)
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: panelColor.R, G: panelColor.G, B: panelColor.B, A: 255}}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode blank chart: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
