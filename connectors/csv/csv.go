package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"grain-stats/domain/grain"
	"grain-stats/domain/report"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	lo "github.com/samber/lo"
)

// Columns the weekly report must carry. Extra columns are ignored.
var requiredColumns = []string{"grain", "item", "crop_year", "grain_week", "value"}

// ReadObservations parses the weekly report CSV. Rows without a value are
// skipped.
func ReadObservations(r io.Reader) ([]grain.Observation, error) {
	df := dataframe.ReadCSV(r, dataframe.WithTypes(map[string]series.Type{
		"grain":      series.String,
		"item":       series.String,
		"crop_year":  series.Int,
		"grain_week": series.Int,
		"value":      series.Float,
	}))
	if df.Err != nil {
		return nil, fmt.Errorf("weekly report: %w", df.Err)
	}
	names := df.Names()
	for _, col := range requiredColumns {
		if !lo.Contains(names, col) {
			return nil, fmt.Errorf("weekly report missing column %s", col)
		}
	}

	grains := df.Col("grain").Records()
	items := df.Col("item").Records()
	years, err := df.Col("crop_year").Int()
	if err != nil {
		return nil, fmt.Errorf("weekly report crop_year: %w", err)
	}
	weeks, err := df.Col("grain_week").Int()
	if err != nil {
		return nil, fmt.Errorf("weekly report grain_week: %w", err)
	}
	values := df.Col("value").Float()

	res := make([]grain.Observation, 0, df.Nrow())
	skipped := 0
	for i := 0; i < df.Nrow(); i++ {
		if math.IsNaN(values[i]) {
			skipped++
			continue
		}
		res = append(res, grain.Observation{
			Grain:     grains[i],
			Item:      items[i],
			CropYear:  years[i],
			GrainWeek: weeks[i],
			Value:     values[i],
		})
	}
	if skipped > 0 {
		slog.Warn("csv.read.skipped", "reason", "missing value", "count", skipped)
	}
	return res, nil
}

// ReadFile opens path and parses it with ReadObservations.
func ReadFile(path string) ([]grain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadObservations(f)
}

// WriteAllCSVs writes the summary and both pivots of r into dir.
func WriteAllCSVs(dir string, r *report.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := WriteSummaryCSV(filepath.Join(dir, "summary.csv"), r); err != nil {
		return err
	}
	if err := WriteWeeklyCSV(filepath.Join(dir, "weekly_pivot.csv"), r.Weekly); err != nil {
		return err
	}
	if err := WriteMonthlyCSV(filepath.Join(dir, "monthly_pivot.csv"), r.Monthly); err != nil {
		return err
	}
	return nil
}

func WriteSummaryCSV(path string, r *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"grain", "item", "crop_year", "grain_week", "metric", "value", "display"}); err != nil {
		return err
	}
	s, d := r.Summary, r.Summary.Display()
	metrics := []struct {
		name    string
		value   float64
		display string
	}{
		{"current_week_value", s.CurrentWeekValue, d.CurrentWeek},
		{"wow_value", s.WoWValue, d.WoW},
		{"to_date_value", s.ToDateValue, d.ToDate},
		{"yoy_value", s.YoYValue, d.YoY},
		{"last_week_value", s.LastWeekValue, d.WeekAgo},
		{"last_year_value", s.LastYearValue, d.YearAgo},
	}
	for _, m := range metrics {
		row := []string{
			string(r.Selection.Grain),
			string(r.Selection.Item),
			strconv.Itoa(r.LatestCropYear),
			strconv.Itoa(r.LastWeek),
			m.name,
			formatFloat(m.value),
			m.display,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteWeeklyCSV writes one row per date with a column per crop year.
// Undefined cells are left empty.
func WriteWeeklyCSV(path string, p report.WeeklyPivot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(append([]string{"date"}, yearHeaders(p.Years)...)); err != nil {
		return err
	}
	for i, d := range p.Dates {
		row := append([]string{d.Format(time.DateOnly)}, lo.Map(p.Values[i], func(v float64, _ int) string { return formatFloat(v) })...)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteMonthlyCSV writes one row per season-month with a column per crop year.
func WriteMonthlyCSV(path string, p report.MonthlyPivot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(append([]string{"month", "label"}, yearHeaders(p.Years)...)); err != nil {
		return err
	}
	for i, m := range p.Months {
		row := append([]string{strconv.Itoa(m), report.MonthLabels[m-1]}, lo.Map(p.Values[i], func(v float64, _ int) string { return formatFloat(v) })...)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func yearHeaders(years []int) []string {
	return lo.Map(years, func(y int, _ int) string { return strconv.Itoa(y) })
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
