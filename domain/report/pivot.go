package report

import (
	"math"
	"sort"
	"time"

	"grain-stats/domain/grain"

	lo "github.com/samber/lo"
)

// cumulative is the (grain_week × crop_year) grid of running totals with
// interior gaps interpolated.
type cumulative struct {
	weeks  []int
	years  []int
	values Grid
}

func buildCumulative(series []grain.Observation) cumulative {
	weeks := lo.Uniq(lo.Map(series, func(o grain.Observation, _ int) int { return o.GrainWeek }))
	years := lo.Uniq(lo.Map(series, func(o grain.Observation, _ int) int { return o.CropYear }))
	sort.Ints(weeks)
	sort.Ints(years)

	weekIdx := positions(weeks)
	yearIdx := positions(years)

	values := nanGrid(len(weeks), len(years))
	for _, o := range series {
		values[weekIdx[o.GrainWeek]][yearIdx[o.CropYear]] = o.Value
	}
	for j := range years {
		interpolateColumn(values, j)
	}
	return cumulative{weeks: weeks, years: years, values: values}
}

// interpolateColumn fills NaN cells of column j that lie between two defined
// cells, linearly by row position. Leading and trailing gaps stay NaN.
func interpolateColumn(g Grid, j int) {
	prev := -1
	for i := range g {
		if math.IsNaN(g[i][j]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			from, to := g[prev][j], g[i][j]
			span := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				g[k][j] = from + (to-from)*float64(k-prev)/span
			}
		}
		prev = i
	}
}

func positions(keys []int) map[int]int {
	m := make(map[int]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}

func nanGrid(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]float64, cols)
		for j := range g[i] {
			g[i][j] = math.NaN()
		}
	}
	return g
}

// seasonStart is the date grain week 0 maps to; every crop year is laid on the
// latest year's calendar.
func seasonStart(latest int) time.Time {
	return time.Date(latest, time.August, 1, 0, 0, 0, 0, time.UTC)
}

func weekDate(latest, week int) time.Time {
	return seasonStart(latest).AddDate(0, 0, 7*week)
}

// WeeklyPivot holds per-week increments indexed by calendar date, one column
// per crop year.
type WeeklyPivot struct {
	Dates     []time.Time `json:"dates"`
	Years     []int       `json:"years"`
	Values    Grid        `json:"values"`
	Revisions []Revision  `json:"revisions"`
}

// Revision records a negative weekly increment that was clamped to zero.
type Revision struct {
	Date     time.Time `json:"date"`
	CropYear int       `json:"crop_year"`
	Delta    float64   `json:"delta"`
}

func buildWeekly(cum cumulative, latest int) WeeklyPivot {
	p := WeeklyPivot{Years: cum.years, Revisions: []Revision{}}
	for i := 1; i < len(cum.weeks); i++ {
		row := make([]float64, len(cum.years))
		for j := range cum.years {
			row[j] = cum.values[i][j] - cum.values[i-1][j]
		}
		if lo.EveryBy(row, math.IsNaN) {
			continue
		}
		date := weekDate(latest, cum.weeks[i])
		for j, v := range row {
			if v < 0 {
				p.Revisions = append(p.Revisions, Revision{Date: date, CropYear: cum.years[j], Delta: v})
				row[j] = 0
			}
		}
		p.Dates = append(p.Dates, date)
		p.Values = append(p.Values, row)
	}
	return p
}

// Column returns the increments of one crop year, aligned with Dates.
func (p WeeklyPivot) Column(year int) []float64 {
	j := lo.IndexOf(p.Years, year)
	if j < 0 {
		return nil
	}
	return p.Values.column(j)
}
