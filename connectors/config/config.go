package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"grain-stats/domain/chart"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "./config.yml"

// Config represents the structure of config.yml used by the tool.
type Config struct {
	Source struct {
		// URI of the weekly report CSV: a local path, gs://bucket/object or
		// https://<account>.blob.core.windows.net/<container>/<blob>.
		URI string `yaml:"uri"`
		// Credentials is a service account JSON file for gs:// sources. Empty
		// means application default credentials.
		Credentials string `yaml:"credentials"`
		Azure       struct {
			TenantID     string `yaml:"tenant_id"`
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
		} `yaml:"azure"`
	} `yaml:"source"`
	Web struct {
		Addr           string   `yaml:"addr"`
		UI             string   `yaml:"ui"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"web"`
	Charts struct {
		Width   int           `yaml:"width"`
		Height  int           `yaml:"height"`
		Palette chart.Palette `yaml:"palette"`
	} `yaml:"charts"`
	Defaults struct {
		Grain string `yaml:"grain" json:"grain"`
		Item  string `yaml:"item" json:"item"`
	} `yaml:"defaults"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Source.URI = "gs://sm_data_bucket/canada/weekly_report.csv"
	c.Web.Addr = ":8080"
	c.Web.UI = "./ui/dist"
	c.Charts.Width = chart.DefaultLayout.Width
	c.Charts.Height = chart.DefaultLayout.Height
	c.Charts.Palette = chart.DefaultPalette
	c.Defaults.Grain = "Wheat"
	c.Defaults.Item = "Domestic"
	return &c
}

// Load parses the YAML configuration file at path over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Charts.Palette.Validate(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.Source.Azure.ClientSecret == "" {
		c.Source.Azure.ClientSecret = os.Getenv("AZURE_CLIENT_SECRET")
	}
	slog.Info("config.loaded", "path", path)
	return c, nil
}

// Resolve loads CONFIG_PATH (or DefaultPath). A missing file yields the
// defaults; any other failure is returned.
func Resolve() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("config.missing", "path", path)
		return Default(), nil
	}
	return c, err
}

// Layout returns the chart layout described by the config.
func (c *Config) Layout() chart.Layout {
	l := chart.DefaultLayout
	if c.Charts.Width > 0 {
		l.Width = c.Charts.Width
	}
	if c.Charts.Height > 0 {
		l.Height = c.Charts.Height
	}
	l.Palette = c.Charts.Palette.WithDefaults()
	return l
}
