package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grain-stats/domain/grain"
	"grain-stats/domain/report"
)

const sample = `grain,item,crop_year,grain_week,value,region
Wheat,Exports,2022,1,100,Canada
Wheat,Exports,2022,2,150,Canada
Wheat,Exports,2022,3,230,Canada
Wheat,Exports,2023,1,80,Canada
Wheat,Exports,2023,2,140,Canada
Wheat,Exports,2023,3,,Canada
Amber Durum,Domestic,2023,1,12.5,Canada
`

func TestReadObservations(t *testing.T) {
	rows, err := ReadObservations(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadObservations: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6 (blank value skipped)", len(rows))
	}
	want := grain.Observation{Grain: "Amber Durum", Item: "Domestic", CropYear: 2023, GrainWeek: 1, Value: 12.5}
	if rows[5] != want {
		t.Errorf("last row = %+v, want %+v", rows[5], want)
	}
}

func TestReadObservationsMissingColumn(t *testing.T) {
	_, err := ReadObservations(strings.NewReader("grain,item,crop_year,value\nWheat,Exports,2022,1\n"))
	if err == nil || !strings.Contains(err.Error(), "grain_week") {
		t.Errorf("err = %v, want missing grain_week", err)
	}
}

func TestWriteAllCSVs(t *testing.T) {
	rows, err := ReadObservations(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	r, err := report.Build(rows, grain.Selection{Grain: grain.Wheat, Item: grain.Exports})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dir := t.TempDir()
	if err := WriteAllCSVs(dir, r); err != nil {
		t.Fatalf("WriteAllCSVs: %v", err)
	}

	weekly := readAll(t, filepath.Join(dir, "weekly_pivot.csv"))
	if strings.Join(weekly[0], ",") != "date,2022,2023" {
		t.Errorf("weekly header = %v", weekly[0])
	}
	if strings.Join(weekly[1], ",") != "2023-08-15,50,60" {
		t.Errorf("weekly row = %v", weekly[1])
	}
	if strings.Join(weekly[2], ",") != "2023-08-22,80," {
		t.Errorf("weekly row = %v", weekly[2])
	}

	monthly := readAll(t, filepath.Join(dir, "monthly_pivot.csv"))
	if len(monthly) != 13 || monthly[1][1] != "Aug" || monthly[12][1] != "Jul" {
		t.Errorf("monthly = %v", monthly)
	}

	summary := readAll(t, filepath.Join(dir, "summary.csv"))
	if len(summary) != 7 || summary[1][4] != "current_week_value" || summary[1][5] != "60" {
		t.Errorf("summary = %v", summary)
	}
	if summary[2][4] != "wow_value" || summary[2][5] != "" || summary[2][6] != report.Undefined {
		t.Errorf("wow row = %v", summary[2])
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return recs
}
