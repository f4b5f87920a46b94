package report

import (
	"encoding/json"
	"fmt"
	"math"
)

// Undefined is how a NaN metric is shown to users.
const Undefined = "n/a"

// Summary holds the six dashboard scalars. Ratios are fractions (0.25 is
// +25%); a NaN field means the value is undefined.
type Summary struct {
	CurrentWeekValue float64
	WoWValue         float64
	ToDateValue      float64
	YoYValue         float64
	LastWeekValue    float64
	LastYearValue    float64
}

// Display is the summary formatted for the presentation layer.
type Display struct {
	CurrentWeek string `json:"current_week"`
	WoW         string `json:"wow"`
	ToDate      string `json:"to_date"`
	YoY         string `json:"yoy"`
	WeekAgo     string `json:"week_ago"`
	YearAgo     string `json:"year_ago"`
}

func (s Summary) Display() Display {
	return Display{
		CurrentWeek: FormatValue(s.CurrentWeekValue),
		WoW:         FormatRatio(s.WoWValue),
		ToDate:      FormatValue(s.ToDateValue),
		YoY:         FormatRatio(s.YoYValue),
		WeekAgo:     FormatValue(s.LastWeekValue),
		YearAgo:     FormatValue(s.LastYearValue),
	}
}

// MarshalJSON writes undefined values as null and embeds the display strings.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CurrentWeekValue *float64 `json:"current_week_value"`
		WoWValue         *float64 `json:"wow_value"`
		ToDateValue      *float64 `json:"to_date_value"`
		YoYValue         *float64 `json:"yoy_value"`
		LastWeekValue    *float64 `json:"last_week_value"`
		LastYearValue    *float64 `json:"last_year_value"`
		Display          Display  `json:"display"`
	}{
		CurrentWeekValue: nullable(s.CurrentWeekValue),
		WoWValue:         nullable(s.WoWValue),
		ToDateValue:      nullable(s.ToDateValue),
		YoYValue:         nullable(s.YoYValue),
		LastWeekValue:    nullable(s.LastWeekValue),
		LastYearValue:    nullable(s.LastYearValue),
		Display:          s.Display(),
	})
}

func FormatValue(v float64) string {
	if !defined(v) {
		return Undefined
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatRatio renders a fractional change as a percentage.
func FormatRatio(v float64) string {
	if !defined(v) {
		return Undefined
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func defined(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func nullable(v float64) *float64 {
	if !defined(v) {
		return nil
	}
	return &v
}
