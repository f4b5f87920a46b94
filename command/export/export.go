package export

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"grain-stats/command/shared"
	"grain-stats/connectors/config"
	ccsv "grain-stats/connectors/csv"
	"grain-stats/connectors/xlsx"
)

// Run writes the summary and both pivots of one selection as CSV files and,
// unless -xlsx is empty, as an xlsx workbook.
//
// Usage:
//
//	grain-stats export [-grain Wheat] [-item Exports] [-source path] [-dir ./data/out] [-xlsx report.xlsx]
func Run(args []string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := shared.Register(fs, cfg)
	dir := fs.String("dir", filepath.Join("data", "out"), "output directory")
	book := fs.String("xlsx", "report.xlsx", "workbook file name inside -dir (empty to skip)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shared.BuildReport(context.Background(), cfg, opts)
	if err != nil {
		return err
	}
	if err := ccsv.WriteAllCSVs(*dir, r); err != nil {
		slog.Error("export.csv.write.error", "dir", *dir, "error", err)
		return fmt.Errorf("failed to write CSV outputs: %w", err)
	}
	if *book != "" {
		path := filepath.Join(*dir, *book)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := xlsx.Write(f, r); err != nil {
			f.Close()
			slog.Error("export.xlsx.write.error", "path", path, "error", err)
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	slog.Info("export.done", "dir", *dir, "weeks", len(r.Weekly.Dates), "years", len(r.Weekly.Years))
	return nil
}
