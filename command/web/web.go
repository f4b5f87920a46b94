package web

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"grain-stats/connectors/config"
	"grain-stats/connectors/png"
	"grain-stats/connectors/source"
	"grain-stats/connectors/xlsx"
	"grain-stats/domain/chart"
	"grain-stats/domain/grain"
	"grain-stats/domain/report"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Run starts an Echo web server exposing the dashboard as JSON APIs and an optional SPA.
//
// Usage:
//
//	grain-stats web [-addr :8080] [-source path|gs://...] [-ui ./ui/dist]
//
// Endpoints:
//
//	GET /api/options                          -> selectable grains and items
//	GET /api/report?grain=&item=              -> summary, weekly and monthly pivots
//	GET /api/charts/:kind?grain=&item=        -> chart description (raw|weekly|monthly)
//	GET /api/charts/:kind/png?grain=&item=    -> chart rendered as PNG
//	GET /api/export.xlsx?grain=&item=         -> workbook with summary and pivots
//
// The weekly report is loaded once at startup; every request builds its report
// from that snapshot.
func Run(args []string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Web.Addr, "http listen address (host:port)")
	src := fs.String("source", cfg.Source.URI, "weekly report CSV (path, gs:// or Azure blob URL)")
	uiDir := fs.String("ui", cfg.Web.UI, "directory containing built UI (Vite dist)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Source.URI = *src
	cfg.Web.UI = *uiDir

	rows, err := source.Load(context.Background(), cfg)
	if err != nil {
		return err
	}
	e := NewServer(rows, cfg)
	slog.Info("web.listen", "addr", *addr, "rows", len(rows))
	return e.Start(*addr)
}

// renderPNG and writeXLSX produce the download bodies.
var (
	renderPNG = png.Render
	writeXLSX = xlsx.Write
)

type server struct {
	rows   []grain.Observation
	layout chart.Layout
	cfg    *config.Config
}

// NewServer wires the API routes over an immutable table snapshot.
func NewServer(rows []grain.Observation, cfg *config.Config) *echo.Echo {
	s := &server{rows: rows, layout: cfg.Layout(), cfg: cfg}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	if len(cfg.Web.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Web.AllowedOrigins,
			AllowMethods: []string{http.MethodGet},
		}))
	}

	e.GET("/api/options", s.options)
	e.GET("/api/report", s.report)
	e.GET("/api/charts/:kind", s.chart)
	e.GET("/api/charts/:kind/png", s.chartPNG)
	e.GET("/api/export.xlsx", s.export)

	// Static UI (optional)
	indexPath := filepath.Join(cfg.Web.UI, "index.html")
	if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
		e.Static("/", cfg.Web.UI)
		e.GET("/", func(c echo.Context) error { return c.File(indexPath) })

		// Fallback to index.html for non-API 404s (SPA routing) while keeping static assets working
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
				if !strings.HasPrefix(c.Request().URL.Path, "/api") {
					_ = c.File(indexPath)
					return
				}
			}
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
	return e
}

func (s *server) options(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"grains":   grain.Grains,
		"items":    grain.Items,
		"charts":   chart.Kinds,
		"defaults": s.cfg.Defaults,
	})
}

func (s *server) report(c echo.Context) error {
	r, err := s.build(c)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *server) chart(c echo.Context) error {
	kind, r, err := s.chartInputs(c)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, chart.Build(kind, r, s.layout))
}

func (s *server) chartPNG(c echo.Context) error {
	kind, r, err := s.chartInputs(c)
	if err != nil {
		return s.fail(c, err)
	}
	var buf bytes.Buffer
	if err := renderPNG(&buf, chart.Build(kind, r, s.layout)); err != nil {
		slog.Error("web.png.render.error", "kind", kind, "error", err)
		return s.fail(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *server) export(c echo.Context) error {
	r, err := s.build(c)
	if err != nil {
		return s.fail(c, err)
	}
	var buf bytes.Buffer
	if err := writeXLSX(&buf, r); err != nil {
		slog.Error("web.xlsx.write.error", "selection", r.Selection.String(), "error", err)
		return s.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q",
		strings.ReplaceAll(strings.ToLower(r.Selection.String()), " ", "_")+".xlsx"))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *server) chartInputs(c echo.Context) (chart.Kind, *report.Report, error) {
	kind, err := chart.ParseKind(c.Param("kind"))
	if err != nil {
		return "", nil, badRequest{err}
	}
	r, err := s.build(c)
	return kind, r, err
}

// build reads the selection from the query, falling back to config defaults.
func (s *server) build(c echo.Context) (*report.Report, error) {
	g := c.QueryParam("grain")
	if g == "" {
		g = s.cfg.Defaults.Grain
	}
	it := c.QueryParam("item")
	if it == "" {
		it = s.cfg.Defaults.Item
	}
	sel, err := grain.ParseSelection(g, it)
	if err != nil {
		return nil, badRequest{err}
	}
	return report.Build(s.rows, sel)
}

type badRequest struct{ error }

func (b badRequest) Unwrap() error { return b.error }

// fail maps report failures onto HTTP statuses.
func (s *server) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var br badRequest
	switch {
	case errors.As(err, &br):
		status = http.StatusBadRequest
	case errors.Is(err, report.ErrSelectionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, report.ErrInsufficientHistory),
		errors.Is(err, report.ErrMissingAlignment),
		errors.Is(err, report.ErrDuplicateObservation):
		status = http.StatusUnprocessableEntity
	}
	slog.Warn("web.report.error", "path", c.Request().URL.Path, "status", status, "error", err)
	return c.JSON(status, map[string]any{
		"error":   err.Error(),
		"message": http.StatusText(status),
	})
}
