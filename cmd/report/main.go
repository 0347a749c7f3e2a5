// Command report analyses a METAR file offline and prints compliance
// statistics for one station, optionally writing an xlsx workbook.
//
// Usage:
//
//	go run ./cmd/report -file metar_data.txt -station EHAM -limits limits.yaml -year 2024 -month 3 -days 30 -xlsx eham.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/metar-minima/internal/config"
	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/metar"
	"github.com/couchcryptid/metar-minima/internal/report"
	"github.com/couchcryptid/metar-minima/internal/solar"
	"github.com/couchcryptid/metar-minima/internal/stats"
	"github.com/fatih/color"
)

var (
	sectionColor  = color.New(color.FgBlue, color.Bold)
	labelColor    = color.New(color.FgCyan)
	okColor       = color.New(color.FgGreen)
	warningColor  = color.New(color.FgYellow)
	criticalColor = color.New(color.FgRed)
)

// defaultLimit is used when no limits file is given.
var defaultLimit = domain.Limit{
	ID:             "default",
	Name:           "Default",
	MinVisibility:  5000,
	CloudRule:      domain.CloudRuleStrict,
	MaxCloudHeight: 1000,
	TimePeriod:     domain.PeriodUDP,
}

type options struct {
	file       string
	station    string
	limitsFile string
	year       int
	month      int
	days       int
	recent     int
	xlsx       string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.file, "file", "", "METAR file, one report per line (required)")
	fs.StringVar(&o.station, "station", solar.DefaultStation, "ICAO station code")
	fs.StringVar(&o.limitsFile, "limits", "", "YAML limits file (default: one built-in limit)")
	fs.IntVar(&o.year, "year", 0, "reference year; with -month selects explicit mode")
	fs.IntVar(&o.month, "month", 0, "reference month (1-12)")
	fs.IntVar(&o.days, "days", 30, "trailing days in the daily table, 0 for all")
	fs.IntVar(&o.recent, "recent", 10, "recent violations per limit")
	fs.StringVar(&o.xlsx, "xlsx", "", "write an xlsx workbook to this path")
	noColor := fs.Bool("no-color", false, "disable color output")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *noColor {
		color.NoColor = true
	}
	if o.file == "" {
		fs.Usage()
		return 2
	}

	if err := analyse(o, stdout); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func analyse(o options, w io.Writer) error {
	ref, err := reference(o.year, o.month)
	if err != nil {
		return err
	}

	limits := []domain.Limit{defaultLimit}
	if o.limitsFile != "" {
		if limits, err = config.LoadLimits(o.limitsFile); err != nil {
			return err
		}
	}

	f, err := os.Open(o.file)
	if err != nil {
		return fmt.Errorf("open metar file: %w", err)
	}
	defer f.Close()

	obs, parsed, err := metar.ParseReader(f, ref)
	if err != nil {
		return err
	}
	if parsed.Accepted == 0 {
		return metar.ErrNoRecords
	}

	station := strings.ToUpper(o.station)
	sun := solar.NewEngine(station, 1024)
	agg := stats.NewAggregator(sun)

	printSummary(w, station, ref, parsed, stats.Summarize(obs))
	printOverall(w, agg.Overall(obs, limits, station))
	for _, l := range limits {
		printLimit(w, agg, obs, l, station, o)
	}

	if o.xlsx == "" {
		return nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	data, err := report.NewGenerator(agg, logger).Generate(context.Background(), report.Input{
		Station:      station,
		Observations: obs,
		Limits:       limits,
		Days:         o.days,
		Recent:       o.recent,
		GeneratedAt:  domain.Now(),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.xlsx, data, 0o600); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	fmt.Fprintf(w, "\nWorkbook written to %s\n", o.xlsx)
	return nil
}

func reference(year, month int) (metar.Reference, error) {
	switch {
	case year == 0 && month == 0:
		return metar.Inferred(domain.Now()), nil
	case year == 0 || month == 0:
		return metar.Reference{}, errors.New("-year and -month must be given together")
	case month < 1 || month > 12:
		return metar.Reference{}, errors.New("-month must be between 1 and 12")
	}
	return metar.Explicit(year, time.Month(month)), nil
}

func printSummary(w io.Writer, station string, ref metar.Reference, parsed metar.Stats, summary stats.DatasetSummary) {
	sectionColor.Fprintf(w, "=== Weather minima compliance: %s ===\n", station)
	labelColor.Fprint(w, "Parse mode:   ")
	fmt.Fprintf(w, "%s (%04d-%02d)\n", ref.Mode(), ref.Year, int(ref.Month))
	labelColor.Fprint(w, "Lines:        ")
	fmt.Fprintf(w, "%d read, %d accepted, %d rejected\n", parsed.Lines, parsed.Accepted, parsed.Rejected)
	labelColor.Fprint(w, "Date range:   ")
	fmt.Fprintf(w, "%s to %s\n", summary.First.Format("2006-01-02 15:04"), summary.Last.Format("2006-01-02 15:04"))
	labelColor.Fprint(w, "Stations:     ")
	parts := make([]string, 0, len(summary.Stations))
	for _, s := range summary.Stations {
		parts = append(parts, fmt.Sprintf("%s=%d", s.ICAO, s.Count))
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}

func printOverall(w io.Writer, overall []stats.LimitSummary) {
	fmt.Fprintln(w)
	sectionColor.Fprintln(w, "--- Overall ---")
	for _, s := range overall {
		fmt.Fprintf(w, "  %-24s %-12s %5d relevant %5d violations  ", s.Limit.Name, s.Limit.TimePeriod, s.Total, s.Violations)
		severityColor(s.Severity()).Fprintf(w, "%5.1f%% %s\n", domain.Round1(s.Percentage), s.Severity())
	}
}

func printLimit(w io.Writer, agg *stats.Aggregator, obs []domain.Observation, l domain.Limit, station string, o options) {
	fmt.Fprintln(w)
	sectionColor.Fprintf(w, "--- %s (vis >= %dm, ceiling >= %dft, %s, %s) ---\n",
		l.Name, l.MinVisibility, l.MaxCloudHeight, l.CloudRule, l.TimePeriod)

	labelColor.Fprintln(w, "  Monthly")
	for _, m := range agg.Monthly(obs, l, station) {
		fmt.Fprintf(w, "    %s %5d relevant %5d violations  ", m.Period(), m.Total, m.Violations)
		pct := m.Percentage()
		severityColor(stats.SeverityOf(pct)).Fprintf(w, "%5.1f%%\n", domain.Round1(pct))
	}

	labelColor.Fprintln(w, "  Daily (UDP / outside UDP)")
	for _, d := range stats.LastDays(agg.Daily(obs, l, station), o.days) {
		fmt.Fprintf(w, "    %s  %3d/%-3d %5.1f%%   %3d/%-3d %5.1f%%\n", d.Date,
			d.UDPViolations, d.UDPTotal, domain.Round1(d.UDPPercentage()),
			d.NonUDPViolations, d.NonUDPTotal, domain.Round1(d.NonUDPPercentage()))
	}

	labelColor.Fprintln(w, "  Recent violations")
	recent := agg.RecentViolations(obs, l, station, o.recent)
	if len(recent) == 0 {
		okColor.Fprintln(w, "    none")
	}
	for _, v := range recent {
		fmt.Fprintf(w, "    %s  ", v.Observation.Time.Format("2006-01-02 15:04"))
		criticalColor.Fprintln(w, v.Reason)
	}
}

func severityColor(s stats.Severity) *color.Color {
	switch s {
	case stats.SeverityCritical:
		return criticalColor
	case stats.SeverityWarning:
		return warningColor
	default:
		return okColor
	}
}
