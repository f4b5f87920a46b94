package png

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	dchart "grain-stats/domain/chart"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Render draws a chart description as a PNG. Bar views are drawn as marked
// lines; undefined points are dropped.
func Render(w io.Writer, c dchart.Chart) error {
	graph := chart.Chart{
		Title:      c.Title,
		Width:      c.Width,
		Height:     c.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis(c.XAxis),
	}
	var xs, ys []float64
	for _, s := range c.Series {
		if series := toSeries(c.Mark, s); series != nil {
			graph.Series = append(graph.Series, series)
			sx, sy := bounds(series)
			xs = append(xs, sx...)
			ys = append(ys, sy...)
		}
	}
	if len(graph.Series) == 0 {
		return fmt.Errorf("%s: nothing to plot", c.Title)
	}
	// go-chart refuses a zero-width range, which a single week or a flat
	// season produces.
	pad := 1.0
	if c.XAxis.Type == "date" {
		pad = float64(24 * time.Hour)
	}
	if r := widen(xs, pad); r != nil {
		graph.XAxis.Range = r
	}
	if r := widen(ys, 1); r != nil {
		graph.YAxis.Range = r
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

func xAxis(a dchart.Axis) chart.XAxis {
	x := chart.XAxis{Name: a.Title}
	if a.Type == "date" {
		x.ValueFormatter = chart.TimeValueFormatterWithFormat("Jan 02")
	}
	if len(a.TickValues) > 0 && len(a.TickValues) == len(a.TickLabels) {
		for i, v := range a.TickValues {
			x.Ticks = append(x.Ticks, chart.Tick{Value: v, Label: a.TickLabels[i]})
		}
	}
	return x
}

func toSeries(mark string, s dchart.Series) chart.Series {
	col := color(s.Color)
	style := chart.Style{StrokeColor: col, StrokeWidth: math.Max(s.Width, 1)}
	if mark == "bar" {
		style.DotColor = col
		style.DotWidth = 3
	}

	if len(s.Dates) > 0 {
		var xs []time.Time
		var ys []float64
		for i, d := range s.Dates {
			if i < len(s.Y) && !math.IsNaN(s.Y[i]) {
				xs = append(xs, d)
				ys = append(ys, s.Y[i])
			}
		}
		if len(xs) == 0 {
			return nil
		}
		return chart.TimeSeries{Name: s.Name, Style: style, XValues: xs, YValues: ys}
	}

	var xs, ys []float64
	for i, x := range s.X {
		if i < len(s.Y) && !math.IsNaN(s.Y[i]) {
			xs = append(xs, x)
			ys = append(ys, s.Y[i])
		}
	}
	if len(xs) == 0 {
		return nil
	}
	return chart.ContinuousSeries{Name: s.Name, Style: style, XValues: xs, YValues: ys}
}

func bounds(s chart.Series) (xs, ys []float64) {
	switch v := s.(type) {
	case chart.TimeSeries:
		for _, t := range v.XValues {
			xs = append(xs, chart.TimeToFloat64(t))
		}
		return xs, v.YValues
	case chart.ContinuousSeries:
		return v.XValues, v.YValues
	}
	return nil, nil
}

// widen returns a padded range when every value is equal, nil otherwise.
func widen(values []float64, pad float64) *chart.ContinuousRange {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// color parses a series color; anything that is not #RGB or #RRGGBB falls
// back to the default stroke.
func color(hex string) drawing.Color {
	if !dchart.ValidHex(hex) {
		return chart.DefaultStrokeColor
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
