package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"grain-stats/domain/grain"
	"grain-stats/domain/report"

	lo "github.com/samber/lo"
)

// Kind names a chart view.
type Kind string

const (
	KindRaw     Kind = "raw"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

// Kinds lists the views in dashboard order.
var Kinds = []Kind{KindRaw, KindMonthly, KindWeekly}

// ParseKind resolves a view name.
func ParseKind(s string) (Kind, error) {
	if k, ok := lo.Find(Kinds, func(k Kind) bool { return string(k) == s }); ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// Chart is a renderer-agnostic description of one dashboard chart.
type Chart struct {
	Kind      Kind     `json:"kind"`
	Title     string   `json:"title"`
	Mark      string   `json:"mark"` // line|bar
	HoverMode string   `json:"hover_mode"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	XAxis     Axis     `json:"x_axis"`
	Series    []Series `json:"series"`
}

type Axis struct {
	Title      string    `json:"title,omitempty"`
	Type       string    `json:"type"` // linear|date
	TickFormat string    `json:"tick_format,omitempty"`
	TickValues []float64 `json:"tick_values,omitempty"`
	TickLabels []string  `json:"tick_labels,omitempty"`
}

// Series is one crop year. Date-axis charts fill Dates, the others X.
type Series struct {
	Name  string      `json:"name"`
	Year  int         `json:"year"`
	Role  Role        `json:"role"`
	Color string      `json:"color"`
	Width float64     `json:"width,omitempty"`
	X     []float64   `json:"x,omitempty"`
	Dates []time.Time `json:"dates,omitempty"`
	Y     Values      `json:"y"`
}

// Values encodes NaN as JSON null.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(v))
	for i := range v {
		if !math.IsNaN(v[i]) && !math.IsInf(v[i], 0) {
			out[i] = &v[i]
		}
	}
	return json.Marshal(out)
}

// Layout carries presentation settings shared by the three assemblers.
type Layout struct {
	Width   int
	Height  int
	Palette Palette
}

var DefaultLayout = Layout{Width: 1000, Height: 500, Palette: DefaultPalette}

// Build assembles the chart of the given kind.
func Build(kind Kind, r *report.Report, l Layout) Chart {
	switch kind {
	case KindWeekly:
		return Weekly(r, l)
	case KindMonthly:
		return Monthly(r, l)
	default:
		return Raw(r, l)
	}
}

func title(sel grain.Selection, suffix string) string {
	t := fmt.Sprintf("Canada - %s, %s", sel.Item, sel.Grain)
	if suffix != "" {
		t += ", " + suffix
	}
	return t
}

func frame(kind Kind, mark, ttl string, l Layout) Chart {
	return Chart{Kind: kind, Title: ttl, Mark: mark, HoverMode: "x unified", Width: l.Width, Height: l.Height}
}

// Raw plots cumulative values by grain week: older crop years as thin lines
// in the background sequence, then the prior and latest years emphasized.
// Older years keep RoleNeutral; the sequence replaces the neutral color only
// here, the bar charts use Palette.Neutral for them.
func Raw(r *report.Report, l Layout) Chart {
	p := l.Palette.WithDefaults()
	c := frame(KindRaw, "line", title(r.Selection, ""), l)
	c.XAxis = Axis{Title: "Week", Type: "linear"}

	older := lo.Filter(r.CropYears(), func(y int, _ int) bool { return y < r.LatestCropYear-1 })
	for i, year := range older {
		s := rawSeries(r, year)
		s.Color = p.sequenceColor(i)
		s.Width = 1
		c.Series = append(c.Series, s)
	}
	for _, year := range []int{r.LatestCropYear - 1, r.LatestCropYear} {
		s := rawSeries(r, year)
		if len(s.X) == 0 {
			continue
		}
		s.Color = p.Color(s.Role)
		s.Width = 2
		c.Series = append(c.Series, s)
	}
	return c
}

func rawSeries(r *report.Report, year int) Series {
	obs := r.SeriesFor(year)
	return Series{
		Name: strconv.Itoa(year),
		Year: year,
		Role: RoleFor(year, r.LatestCropYear),
		X:    lo.Map(obs, func(o grain.Observation, _ int) float64 { return float64(o.GrainWeek) }),
		Y:    lo.Map(obs, func(o grain.Observation, _ int) float64 { return o.Value }),
	}
}

// Weekly plots the weekly increments as bars by calendar date.
func Weekly(r *report.Report, l Layout) Chart {
	p := l.Palette.WithDefaults()
	c := frame(KindWeekly, "bar", title(r.Selection, "Weekly"), l)
	c.XAxis = Axis{Type: "date", TickFormat: "%b %d"}
	for _, year := range r.Weekly.Years {
		role := RoleFor(year, r.LatestCropYear)
		c.Series = append(c.Series, Series{
			Name:  strconv.Itoa(year),
			Year:  year,
			Role:  role,
			Color: p.Color(role),
			Dates: r.Weekly.Dates,
			Y:     r.Weekly.Column(year),
		})
	}
	return c
}

// Monthly plots the season-month increments as bars labeled Aug..Jul.
func Monthly(r *report.Report, l Layout) Chart {
	p := l.Palette.WithDefaults()
	c := frame(KindMonthly, "bar", title(r.Selection, "Monthly"), l)
	months := lo.Map(r.Monthly.Months, func(m int, _ int) float64 { return float64(m) })
	c.XAxis = Axis{Type: "linear", TickValues: months, TickLabels: report.MonthLabels}
	for _, year := range r.Monthly.Years {
		role := RoleFor(year, r.LatestCropYear)
		c.Series = append(c.Series, Series{
			Name:  strconv.Itoa(year),
			Year:  year,
			Role:  role,
			Color: p.Color(role),
			X:     months,
			Y:     r.Monthly.Column(year),
		})
	}
	return c
}
