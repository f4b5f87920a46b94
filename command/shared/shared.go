// Package shared holds the flag and loading plumbing common to subcommands.
package shared

import (
	"context"
	"flag"
	"log/slog"

	"grain-stats/connectors/config"
	"grain-stats/connectors/source"
	"grain-stats/domain/grain"
	"grain-stats/domain/report"
)

// Options are the selection and source flags every report-building command takes.
type Options struct {
	Grain  *string
	Item   *string
	Source *string
}

// Register adds -grain, -item and -source to fs with config defaults.
func Register(fs *flag.FlagSet, cfg *config.Config) Options {
	return Options{
		Grain:  fs.String("grain", cfg.Defaults.Grain, "commodity: Wheat, Barley, Corn, Oat, Rye, Canola, Soybeans, Amber Durum"),
		Item:   fs.String("item", cfg.Defaults.Item, "measure: Domestic, Producer Deliveries, Exports, Producer Shipments"),
		Source: fs.String("source", cfg.Source.URI, "weekly report CSV (path, gs:// or Azure blob URL)"),
	}
}

// Selection parses the -grain and -item flags.
func (o Options) Selection() (grain.Selection, error) {
	return grain.ParseSelection(*o.Grain, *o.Item)
}

// BuildReport loads the source named by the flags and builds the report.
func BuildReport(ctx context.Context, cfg *config.Config, o Options) (*report.Report, error) {
	sel, err := o.Selection()
	if err != nil {
		return nil, err
	}
	cfg.Source.URI = *o.Source
	rows, err := source.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r, err := report.Build(rows, sel)
	if err != nil {
		slog.Error("report.build.error", "selection", sel.String(), "error", err)
		return nil, err
	}
	slog.Info("report.build.done", "selection", sel.String(), "crop_year", r.LatestCropYear, "week", r.LastWeek)
	return r, nil
}
