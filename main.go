package main

import (
	"errors"
	"fmt"
	cmdexport "grain-stats/command/export"
	cmdfetch "grain-stats/command/fetch"
	cmdrender "grain-stats/command/render"
	cmdreport "grain-stats/command/report"
	cmdweb "grain-stats/command/web"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Weekly Canadian grain statistics dashboard.
// Usage:
//   grain-stats fetch  [-source gs://bucket/object] [-out ./data/weekly_report.csv]
//   grain-stats report [-grain Wheat] [-item Exports] [-source ...] [-json]
//   grain-stats export [-grain ...] [-item ...] [-dir ./data/out] [-xlsx report.xlsx]
//   grain-stats render [-grain ...] [-item ...] [-dir ./data/charts]
//   grain-stats web    [-addr :8080] [-source ...] [-ui ./ui/dist]
// Notes:
// - A .env file in the working directory is loaded first; CONFIG_PATH and cloud
//   credentials (GOOGLE_APPLICATION_CREDENTIALS, AZURE_CLIENT_SECRET) may live there.

var commands = map[string]func([]string) error{
	"fetch":  cmdfetch.Run,
	"report": cmdreport.Run,
	"export": cmdexport.Run,
	"render": cmdrender.Run,
	"web":    cmdweb.Run,
}

func main() {
	args := os.Args
	// Initialize slog logger (text to stderr)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dotenv.load.error", "error", err)
	}

	if len(args) > 1 {
		if run, ok := commands[args[1]]; ok {
			if err := run(append([]string{}, args[2:]...)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: grain-stats fetch | report | export | render | web [flags]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml)")
	os.Exit(2)
}
