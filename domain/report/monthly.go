package report

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
	lo "github.com/samber/lo"
)

// seasonMonth maps a calendar month to its position in the crop year.
var seasonMonth = map[time.Month]int{
	time.August: 1, time.September: 2, time.October: 3, time.November: 4,
	time.December: 5, time.January: 6, time.February: 7, time.March: 8,
	time.April: 9, time.May: 10, time.June: 11, time.July: 12,
}

// MonthLabels are the tick labels of season-months 1..12.
var MonthLabels = []string{"Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul"}

// MonthlyPivot holds increments summed per season-month, one column per crop
// year. Months is always 1..12.
type MonthlyPivot struct {
	Months []int `json:"months"`
	Years  []int `json:"years"`
	Values Grid  `json:"values"`
}

// seasonDays is the daily skeleton of the latest season: the first grain week
// through July 31 of the following calendar year.
func seasonDays(latest int) []time.Time {
	first := weekDate(latest, 1)
	last := time.Date(latest+1, time.July, 31, 0, 0, 0, 0, time.UTC)
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func buildMonthly(cum cumulative, latest int) MonthlyPivot {
	byDate := make(map[time.Time][]float64, len(cum.weeks))
	for i, w := range cum.weeks {
		byDate[weekDate(latest, w)] = cum.values[i]
	}

	days := seasonDays(latest)
	daily := nanGrid(len(days), len(cum.years))
	for i, d := range days {
		if row, ok := byDate[d]; ok {
			copy(daily[i], row)
		}
	}

	// buckets[j][m-1] collects the defined daily increments of year j in month m.
	buckets := make([][][]float64, len(cum.years))
	for j := range cum.years {
		interpolateColumn(daily, j)
		buckets[j] = make([][]float64, 12)
		for i := 1; i < len(days); i++ {
			delta := daily[i][j] - daily[i-1][j]
			if math.IsNaN(delta) {
				continue
			}
			m := seasonMonth[days[i].Month()] - 1
			buckets[j][m] = append(buckets[j][m], delta)
		}
	}

	p := MonthlyPivot{Months: lo.RangeFrom(1, 12), Years: cum.years, Values: make(Grid, 12)}
	for m := range p.Values {
		p.Values[m] = make([]float64, len(cum.years))
		for j := range cum.years {
			p.Values[m][j] = sum(buckets[j][m])
		}
	}
	return p
}

// sum adds the values; an empty month sums to zero.
func sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s, err := stats.Sum(values)
	if err != nil {
		return 0
	}
	return s
}

// Column returns the monthly increments of one crop year, Aug..Jul.
func (p MonthlyPivot) Column(year int) []float64 {
	j := lo.IndexOf(p.Years, year)
	if j < 0 {
		return nil
	}
	return p.Values.column(j)
}

// Total is the season total of one crop year.
func (p MonthlyPivot) Total(year int) float64 {
	return sum(p.Column(year))
}
