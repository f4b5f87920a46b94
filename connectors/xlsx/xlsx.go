package xlsx

import (
	"fmt"
	"io"
	"math"

	"grain-stats/domain/report"

	lo "github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	WeeklySheet  = "Weekly"
	MonthlySheet = "Monthly"
)

// Workbook lays out the summary and both pivots of r on three sheets.
func Workbook(r *report.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{WeeklySheet, MonthlySheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := writeSummary(f, r); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeWeekly(f, r.Weekly); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeMonthly(f, r.Monthly); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook of r to w.
func Write(w io.Writer, r *report.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func writeSummary(f *excelize.File, r *report.Report) error {
	s, d := r.Summary, r.Summary.Display()
	rows := [][]any{
		{"Grain", string(r.Selection.Grain)},
		{"Item", string(r.Selection.Item)},
		{"Crop year", r.LatestCropYear},
		{"Grain week", r.LastWeek},
		{"Metric", "Value", "Display"},
		{"Current week", cell(s.CurrentWeekValue), d.CurrentWeek},
		{"Week over week", cell(s.WoWValue), d.WoW},
		{"To date", cell(s.ToDateValue), d.ToDate},
		{"Year over year", cell(s.YoYValue), d.YoY},
		{"Week ago", cell(s.LastWeekValue), d.WeekAgo},
		{"Year ago", cell(s.LastYearValue), d.YearAgo},
	}
	return setRows(f, SummarySheet, rows)
}

func writeWeekly(f *excelize.File, p report.WeeklyPivot) error {
	rows := [][]any{append([]any{"Date"}, years(p.Years)...)}
	for i, date := range p.Dates {
		rows = append(rows, append([]any{date}, cells(p.Values[i])...))
	}
	return setRows(f, WeeklySheet, rows)
}

func writeMonthly(f *excelize.File, p report.MonthlyPivot) error {
	rows := [][]any{append([]any{"Month"}, years(p.Years)...)}
	for i, m := range p.Months {
		rows = append(rows, append([]any{report.MonthLabels[m-1]}, cells(p.Values[i])...))
	}
	totals := lo.Map(p.Years, func(y int, _ int) any { return p.Total(y) })
	rows = append(rows, append([]any{"Total"}, totals...))
	return setRows(f, MonthlySheet, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func years(ys []int) []any {
	return lo.Map(ys, func(y int, _ int) any { return y })
}

func cells(values []float64) []any {
	return lo.Map(values, func(v float64, _ int) any { return cell(v) })
}

// cell leaves undefined values empty.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
