package report

import (
	"fmt"
	"math"
	"sort"

	"grain-stats/domain/grain"

	lo "github.com/samber/lo"
)

// Report is the immutable result of building a dashboard for one selection.
type Report struct {
	Selection      grain.Selection     `json:"selection"`
	LatestCropYear int                 `json:"latest_crop_year"`
	LastWeek       int                 `json:"last_week"`
	Summary        Summary             `json:"summary"`
	Weekly         WeeklyPivot         `json:"weekly"`
	Monthly        MonthlyPivot        `json:"monthly"`
	Series         []grain.Observation `json:"-"`
}

type seriesKey struct {
	year int
	week int
}

// Build filters rows to the selection and derives the summary scalars and both
// pivots. It never mutates rows.
func Build(rows []grain.Observation, sel grain.Selection) (*Report, error) {
	series := lo.Filter(rows, func(o grain.Observation, _ int) bool { return sel.Matches(o) })
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w", sel, ErrSelectionNotFound)
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].CropYear != series[j].CropYear {
			return series[i].CropYear < series[j].CropYear
		}
		return series[i].GrainWeek < series[j].GrainWeek
	})

	index := make(map[seriesKey]float64, len(series))
	for _, o := range series {
		k := seriesKey{year: o.CropYear, week: o.GrainWeek}
		if _, dup := index[k]; dup {
			return nil, fmt.Errorf("%s crop_year=%d grain_week=%d: %w", sel, o.CropYear, o.GrainWeek, ErrDuplicateObservation)
		}
		index[k] = o.Value
	}

	years := lo.Uniq(lo.Map(series, func(o grain.Observation, _ int) int { return o.CropYear }))
	if len(years) < 2 {
		return nil, fmt.Errorf("%s: only crop year %d present: %w", sel, years[0], ErrInsufficientHistory)
	}
	latest := lo.Max(years)
	lastWeek := lo.Max(lo.FilterMap(series, func(o grain.Observation, _ int) (int, bool) {
		return o.GrainWeek, o.CropYear == latest
	}))

	summary, err := summarize(sel, index, latest, lastWeek)
	if err != nil {
		return nil, err
	}

	cum := buildCumulative(series)
	return &Report{
		Selection:      sel,
		LatestCropYear: latest,
		LastWeek:       lastWeek,
		Summary:        summary,
		Weekly:         buildWeekly(cum, latest),
		Monthly:        buildMonthly(cum, latest),
		Series:         series,
	}, nil
}

func summarize(sel grain.Selection, index map[seriesKey]float64, latest, lastWeek int) (Summary, error) {
	toDate := index[seriesKey{latest, lastWeek}]
	prev, ok := index[seriesKey{latest, lastWeek - 1}]
	if !ok {
		return Summary{}, fmt.Errorf("%s crop_year=%d: week %d has no preceding week %d: %w",
			sel, latest, lastWeek, lastWeek-1, ErrInsufficientHistory)
	}
	current := toDate - prev

	lastWeekValue := math.NaN()
	if before, ok := index[seriesKey{latest, lastWeek - 2}]; ok {
		lastWeekValue = prev - before
	}

	lastYear, ok := index[seriesKey{latest - 1, lastWeek}]
	if !ok {
		return Summary{}, fmt.Errorf("%s crop_year=%d grain_week=%d: %w", sel, latest-1, lastWeek, ErrMissingAlignment)
	}

	return Summary{
		CurrentWeekValue: current,
		WoWValue:         ratio(current, lastWeekValue),
		ToDateValue:      toDate,
		YoYValue:         ratio(toDate, lastYear),
		LastWeekValue:    lastWeekValue,
		LastYearValue:    lastYear,
	}, nil
}

// ratio returns num/den - 1, or NaN when the denominator is zero or undefined.
func ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return math.NaN()
	}
	return num/den - 1
}

// CropYears returns the crop years present in the series, ascending.
func (r *Report) CropYears() []int {
	return r.Weekly.Years
}

// SeriesFor returns the filtered observations of one crop year, by grain week.
func (r *Report) SeriesFor(year int) []grain.Observation {
	return lo.Filter(r.Series, func(o grain.Observation, _ int) bool { return o.CropYear == year })
}
