package render

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"grain-stats/command/shared"
	"grain-stats/connectors/config"
	"grain-stats/connectors/png"
	"grain-stats/domain/chart"
)

// Run writes the three dashboard charts of one selection as PNG images and
// JSON descriptions.
//
// Usage:
//
//	grain-stats render [-grain Wheat] [-item Exports] [-source path] [-dir ./data/charts]
func Run(args []string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := shared.Register(fs, cfg)
	dir := fs.String("dir", filepath.Join("data", "charts"), "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shared.BuildReport(context.Background(), cfg, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	layout := cfg.Layout()
	for _, kind := range chart.Kinds {
		c := chart.Build(kind, r, layout)
		if err := writeChart(filepath.Join(*dir, string(kind)), c); err != nil {
			slog.Error("render.chart.error", "kind", kind, "error", err)
			return fmt.Errorf("render %s chart: %w", kind, err)
		}
		slog.Info("render.chart.done", "kind", kind, "series", len(c.Series))
	}
	return nil
}

// writeChart writes base.png and base.json.
func writeChart(base string, c chart.Chart) error {
	f, err := os.Create(base + ".png")
	if err != nil {
		return err
	}
	if err := png.Render(f, c); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(base+".json", b, 0o644)
}
