package report

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"grain-stats/domain/grain"
)

var wheatExports = grain.Selection{Grain: grain.Wheat, Item: grain.Exports}

func observations(g grain.Grain, it grain.Item, year int, values ...float64) []grain.Observation {
	rows := make([]grain.Observation, len(values))
	for i, v := range values {
		rows[i] = grain.Observation{Grain: string(g), Item: string(it), CropYear: year, GrainWeek: i + 1, Value: v}
	}
	return rows
}

func wheatExportsTable() []grain.Observation {
	var rows []grain.Observation
	rows = append(rows, observations(grain.Wheat, grain.Exports, 2022, 100, 150, 230, 230, 310, 380, 420, 500, 560, 600)...)
	rows = append(rows, observations(grain.Wheat, grain.Exports, 2023, 80, 140, 210, 300)...)
	// noise from other selections must be ignored
	rows = append(rows, observations(grain.Barley, grain.Exports, 2024, 1, 2, 3)...)
	rows = append(rows, observations(grain.Wheat, grain.Domestic, 2024, 5, 6)...)
	return rows
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildWheatExports(t *testing.T) {
	r, err := Build(wheatExportsTable(), wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.LatestCropYear != 2023 || r.LastWeek != 4 {
		t.Fatalf("latest=%d lastWeek=%d, want 2023/4", r.LatestCropYear, r.LastWeek)
	}
	s := r.Summary
	checks := []struct {
		name      string
		got, want float64
	}{
		{"current_week_value", s.CurrentWeekValue, 90},
		{"last_week_value", s.LastWeekValue, 70},
		{"wow_value", s.WoWValue, 90.0/70.0 - 1},
		{"to_date_value", s.ToDateValue, 300},
		{"last_year_value", s.LastYearValue, 230},
		{"yoy_value", s.YoYValue, 300.0/230.0 - 1},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(r.Series) != 14 {
		t.Errorf("filtered series has %d rows, want 14", len(r.Series))
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		rows []grain.Observation
		want error
	}{
		{"empty selection", observations(grain.Oat, grain.Exports, 2023, 1, 2, 3), ErrSelectionNotFound},
		{"single crop year", observations(grain.Wheat, grain.Exports, 2023, 1, 2, 3), ErrInsufficientHistory},
		{
			"one week in latest year",
			append(observations(grain.Wheat, grain.Exports, 2022, 1, 2, 3), observations(grain.Wheat, grain.Exports, 2023, 5)...),
			ErrInsufficientHistory,
		},
		{
			"gap before last week",
			append(observations(grain.Wheat, grain.Exports, 2022, 1, 2, 3, 4),
				grain.Observation{Grain: "Wheat", Item: "Exports", CropYear: 2023, GrainWeek: 1, Value: 1},
				grain.Observation{Grain: "Wheat", Item: "Exports", CropYear: 2023, GrainWeek: 3, Value: 3}),
			ErrInsufficientHistory,
		},
		{
			"prior year too short",
			append(observations(grain.Wheat, grain.Exports, 2022, 1, 2), observations(grain.Wheat, grain.Exports, 2023, 1, 2, 3)...),
			ErrMissingAlignment,
		},
		{
			"prior year absent",
			append(observations(grain.Wheat, grain.Exports, 2020, 1, 2, 3), observations(grain.Wheat, grain.Exports, 2023, 1, 2, 3)...),
			ErrMissingAlignment,
		},
		{
			"duplicate week",
			append(wheatExportsTable(), grain.Observation{Grain: "Wheat", Item: "Exports", CropYear: 2023, GrainWeek: 2, Value: 141}),
			ErrDuplicateObservation,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := Build(c.rows, wheatExports)
			if !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
			if r != nil {
				t.Fatalf("expected no partial report")
			}
		})
	}
}

func TestBuildTwoWeeksLeavesPriorWeekUndefined(t *testing.T) {
	rows := append(observations(grain.Wheat, grain.Exports, 2022, 10, 20, 30), observations(grain.Wheat, grain.Exports, 2023, 5, 15)...)
	r, err := Build(rows, wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Summary.CurrentWeekValue != 10 {
		t.Errorf("current_week_value = %v, want 10", r.Summary.CurrentWeekValue)
	}
	if !math.IsNaN(r.Summary.LastWeekValue) || !math.IsNaN(r.Summary.WoWValue) {
		t.Errorf("expected undefined last_week/wow, got %v/%v", r.Summary.LastWeekValue, r.Summary.WoWValue)
	}
	if !approx(r.Summary.YoYValue, 15.0/20.0-1) {
		t.Errorf("yoy_value = %v", r.Summary.YoYValue)
	}
}

func TestRatioUndefinedOnZero(t *testing.T) {
	rows := append(observations(grain.Wheat, grain.Exports, 2022, 0, 0, 0, 0), observations(grain.Wheat, grain.Exports, 2023, 10, 10, 20)...)
	r, err := Build(rows, wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Summary.LastWeekValue != 0 {
		t.Fatalf("last_week_value = %v, want 0", r.Summary.LastWeekValue)
	}
	if !math.IsNaN(r.Summary.WoWValue) {
		t.Errorf("wow_value = %v, want NaN", r.Summary.WoWValue)
	}
	if !math.IsNaN(r.Summary.YoYValue) {
		t.Errorf("yoy_value = %v, want NaN", r.Summary.YoYValue)
	}
	if got := r.Summary.Display().WoW; got != Undefined {
		t.Errorf("display wow = %q, want %q", got, Undefined)
	}
}

func TestCurrentWeekIsLastDifference(t *testing.T) {
	for _, weeks := range [][]float64{{1, 4}, {1, 4, 9}, {3, 3, 8, 20, 21}} {
		rows := append(observations(grain.Canola, grain.Domestic, 2021, 1, 2, 3, 4, 5, 6), observations(grain.Canola, grain.Domestic, 2022, weeks...)...)
		r, err := Build(rows, grain.Selection{Grain: grain.Canola, Item: grain.Domestic})
		if err != nil {
			t.Fatalf("Build(%v): %v", weeks, err)
		}
		n := len(weeks)
		if want := weeks[n-1] - weeks[n-2]; r.Summary.CurrentWeekValue != want {
			t.Errorf("weeks %v: current_week_value = %v, want %v", weeks, r.Summary.CurrentWeekValue, want)
		}
	}
}

func TestWeeklyPivot(t *testing.T) {
	r, err := Build(wheatExportsTable(), wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	w := r.Weekly
	if len(w.Dates) != 9 {
		t.Fatalf("weekly rows = %d, want 9", len(w.Dates))
	}
	if want := time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC); !w.Dates[0].Equal(want) {
		t.Errorf("first date = %v, want %v", w.Dates[0], want)
	}
	latest := w.Column(2023)
	for i, want := range []float64{60, 70, 90} {
		if latest[i] != want {
			t.Errorf("2023 row %d = %v, want %v", i, latest[i], want)
		}
	}
	if !math.IsNaN(latest[3]) {
		t.Errorf("2023 must not be extrapolated past week 4, got %v", latest[3])
	}
	if prior := w.Column(2022); prior[2] != 0 {
		t.Errorf("2022 week 4 increment = %v, want 0", prior[2])
	}
	if w.Column(1999) != nil {
		t.Error("unknown year must yield nil column")
	}
}

func TestWeeklyClampRecordsRevision(t *testing.T) {
	rows := append(observations(grain.Rye, grain.Exports, 2022, 10, 30, 25, 40), observations(grain.Rye, grain.Exports, 2023, 5, 9, 12)...)
	r, err := Build(rows, grain.Selection{Grain: grain.Rye, Item: grain.Exports})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, row := range r.Weekly.Values {
		for j, v := range row {
			if v < 0 {
				t.Errorf("cell (%d,%d) = %v is negative", i, j, v)
			}
		}
	}
	if got := r.Weekly.Column(2022)[1]; got != 0 {
		t.Errorf("clamped cell = %v, want 0", got)
	}
	if len(r.Weekly.Revisions) != 1 {
		t.Fatalf("revisions = %v, want one", r.Weekly.Revisions)
	}
	rev := r.Weekly.Revisions[0]
	if rev.CropYear != 2022 || rev.Delta != -5 || !rev.Date.Equal(weekDate(2023, 3)) {
		t.Errorf("revision = %+v", rev)
	}
}

func TestInterpolatesInteriorGaps(t *testing.T) {
	rows := []grain.Observation{
		{Grain: "Oat", Item: "Domestic", CropYear: 2022, GrainWeek: 1, Value: 10},
		{Grain: "Oat", Item: "Domestic", CropYear: 2022, GrainWeek: 4, Value: 40},
		{Grain: "Oat", Item: "Domestic", CropYear: 2022, GrainWeek: 5, Value: 50},
	}
	rows = append(rows, observations(grain.Oat, grain.Domestic, 2023, 1, 2, 3, 4, 5)...)
	r, err := Build(rows, grain.Selection{Grain: grain.Oat, Item: grain.Domestic})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, v := range r.Weekly.Column(2022) {
		if v != 10 {
			t.Errorf("2022 row %d = %v, want 10", i, v)
		}
	}
}

func TestLeadingGapsStayUndefined(t *testing.T) {
	rows := []grain.Observation{
		{Grain: "Corn", Item: "Exports", CropYear: 2022, GrainWeek: 3, Value: 30},
		{Grain: "Corn", Item: "Exports", CropYear: 2022, GrainWeek: 4, Value: 40},
		{Grain: "Corn", Item: "Exports", CropYear: 2022, GrainWeek: 5, Value: 55},
	}
	rows = append(rows, observations(grain.Corn, grain.Exports, 2023, 1, 2, 3, 4, 5)...)
	r, err := Build(rows, grain.Selection{Grain: grain.Corn, Item: grain.Exports})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(r.Weekly.Dates) != 4 {
		t.Fatalf("weekly rows = %d, want 4", len(r.Weekly.Dates))
	}
	prior := r.Weekly.Column(2022)
	for i, want := range []float64{math.NaN(), math.NaN(), 10, 15} {
		if math.IsNaN(want) {
			if !math.IsNaN(prior[i]) {
				t.Errorf("2022 row %d = %v, want undefined before the first observed week", i, prior[i])
			}
			continue
		}
		if prior[i] != want {
			t.Errorf("2022 row %d = %v, want %v", i, prior[i], want)
		}
	}
	if got := r.Monthly.Total(2022); !approx(got, 25) {
		t.Errorf("2022 monthly total = %v, want 25", got)
	}
}

func TestMonthlyPivot(t *testing.T) {
	r, err := Build(wheatExportsTable(), wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := r.Monthly
	if len(m.Months) != 12 || m.Months[0] != 1 || m.Months[11] != 12 {
		t.Fatalf("months = %v", m.Months)
	}
	latest := m.Column(2023)
	if !approx(latest[0], 220) {
		t.Errorf("2023 August = %v, want 220", latest[0])
	}
	for i := 1; i < 12; i++ {
		if latest[i] != 0 {
			t.Errorf("2023 month %d = %v, want 0", i+1, latest[i])
		}
	}
	// Aug 29 → Sep 5 adds 80 spread over seven days, two of them in August.
	if got, want := m.Column(2022)[0], 130+80.0*2/7; !approx(got, want) {
		t.Errorf("2022 August = %v, want %v", got, want)
	}
}

func TestMonthlyConservesWeeklyTotals(t *testing.T) {
	r, err := Build(wheatExportsTable(), wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, year := range r.CropYears() {
		weekly := 0.0
		for _, v := range r.Weekly.Column(year) {
			if !math.IsNaN(v) {
				weekly += v
			}
		}
		if monthly := r.Monthly.Total(year); !approx(monthly, weekly) {
			t.Errorf("crop year %d: monthly total %v != weekly total %v", year, monthly, weekly)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	rows := wheatExportsTable()
	a, err := Build(rows, wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(rows, wheatExports)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Errorf("reports differ:\n%s\n%s", ja, jb)
	}
	if rows[0].CropYear != 2022 || rows[len(rows)-1].Grain != "Wheat" {
		t.Error("Build must not reorder the input table")
	}
}

func TestSummaryJSONUsesNullForUndefined(t *testing.T) {
	s := Summary{CurrentWeekValue: 12.3456, WoWValue: math.NaN(), ToDateValue: 100, YoYValue: 0.25, LastWeekValue: 0, LastYearValue: 80}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out["wow_value"] != nil {
		t.Errorf("wow_value = %v, want null", out["wow_value"])
	}
	d := out["display"].(map[string]any)
	if d["current_week"] != "12.35" || d["yoy"] != "25.00%" || d["wow"] != Undefined {
		t.Errorf("display = %v", d)
	}
}
