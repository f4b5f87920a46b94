// Package source resolves the weekly report CSV from a local path, Google
// Cloud Storage or Azure Blob Storage and parses it into observations.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"grain-stats/connectors/azure"
	"grain-stats/connectors/config"
	ccsv "grain-stats/connectors/csv"
	"grain-stats/connectors/gcp"
	"grain-stats/domain/grain"
)

// Open returns a reader over the configured source. The caller closes it.
func Open(ctx context.Context, cfg *config.Config) (io.ReadCloser, error) {
	uri := strings.TrimSpace(cfg.Source.URI)
	switch {
	case uri == "":
		return nil, fmt.Errorf("source.uri is empty")
	case strings.HasPrefix(uri, "gs://"):
		bucket, object, err := gcp.ParseURI(uri)
		if err != nil {
			return nil, err
		}
		var key []byte
		if cfg.Source.Credentials != "" {
			if key, err = os.ReadFile(cfg.Source.Credentials); err != nil {
				return nil, fmt.Errorf("read credentials: %w", err)
			}
		}
		client, err := gcp.NewClient(ctx, key)
		if err != nil {
			return nil, err
		}
		return client.ReadObject(ctx, bucket, object)
	case azure.IsBlobURL(uri):
		az := cfg.Source.Azure
		client := azure.NewClient(ctx, azure.Credentials{TenantID: az.TenantID, ClientID: az.ClientID, ClientSecret: az.ClientSecret})
		return client.ReadBlob(ctx, uri)
	default:
		return os.Open(uri)
	}
}

// Load reads and parses the configured weekly report.
func Load(ctx context.Context, cfg *config.Config) ([]grain.Observation, error) {
	slog.Info("source.load.start", "uri", cfg.Source.URI)
	rc, err := Open(ctx, cfg)
	if err != nil {
		slog.Error("source.load.error", "uri", cfg.Source.URI, "error", err)
		return nil, err
	}
	defer rc.Close()
	rows, err := ccsv.ReadObservations(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Source.URI, err)
	}
	slog.Info("source.load.done", "uri", cfg.Source.URI, "rows", len(rows))
	return rows, nil
}
