package fetch

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"grain-stats/connectors/config"
	"grain-stats/connectors/source"
)

// Run downloads the configured weekly report to a local file so later runs
// can point -source at it.
//
// Usage:
//
//	grain-stats fetch [-source gs://bucket/object] [-out ./data/weekly_report.csv]
func Run(args []string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	src := fs.String("source", cfg.Source.URI, "weekly report CSV (path, gs:// or Azure blob URL)")
	out := fs.String("out", filepath.Join("data", "weekly_report.csv"), "destination file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Source.URI = *src

	slog.Info("fetch.start", "source", *src, "out", *out)
	ctx := context.Background()
	rc, err := source.Open(ctx, cfg)
	if err != nil {
		slog.Error("fetch.open.error", "source", *src, "error", err)
		return err
	}
	defer rc.Close()

	n, err := writeFile(*out, rc)
	if err != nil {
		slog.Error("fetch.write.error", "out", *out, "error", err)
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	slog.Info("fetch.done", "out", *out, "bytes", n)
	return nil
}

// writeFile copies r to path through a temp file so a failed download never
// leaves a truncated report behind.
func writeFile(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".weekly_report-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	return n, os.Rename(tmp.Name(), path)
}
