package report

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"grain-stats/command/shared"
	"grain-stats/connectors/config"
	dreport "grain-stats/domain/report"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(22)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#525252"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#109618"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD5C5C"))
)

// Run prints the summary metrics of one selection.
//
// Usage:
//
//	grain-stats report [-grain Wheat] [-item Exports] [-source path] [-json]
func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, out io.Writer) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := shared.Register(fs, cfg)
	asJSON := fs.Bool("json", false, "print the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shared.BuildReport(context.Background(), cfg, opts)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err = fmt.Fprintln(out, Render(r))
	return err
}

// Render lays the six metrics out as four cards, like the dashboard header.
func Render(r *dreport.Report) string {
	s, d := r.Summary, r.Summary.Display()
	title := titleStyle.Render(fmt.Sprintf("Canada - %s, %s  (crop year %d, week %d)",
		r.Selection.Item, r.Selection.Grain, r.LatestCropYear, r.LastWeek))
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Current Week", d.CurrentWeek, d.WoW, s.WoWValue),
		card("To Date", d.ToDate, d.YoY, s.YoYValue),
		card("Week ago", d.WeekAgo, "", 0),
		card("Year ago", d.YearAgo, "", 0),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, cards)
}

func card(label, value, delta string, change float64) string {
	lines := []string{labelStyle.Render(label), valueStyle.Render(value)}
	if delta != "" {
		style := upStyle
		if change < 0 {
			style = downStyle
		}
		lines = append(lines, style.Render(delta))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
