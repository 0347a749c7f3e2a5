// Package report renders compliance statistics as an xlsx workbook.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/stats"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetMonthly    = "Monthly"
	SheetDaily      = "Daily"
	SheetViolations = "Violations"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Input selects what goes into a workbook.
type Input struct {
	Station      string
	Observations []domain.Observation
	Limits       []domain.Limit
	Days         int // trailing days on the Daily sheet, 0 for all
	Recent       int // violations per limit, 0 for all
	GeneratedAt  time.Time
}

// Generator builds workbooks from an Aggregator.
type Generator struct {
	agg    *stats.Aggregator
	logger *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(agg *stats.Aggregator, logger *slog.Logger) *Generator {
	return &Generator{agg: agg, logger: logger}
}

// Generate renders the workbook and returns its bytes.
func (g *Generator) Generate(ctx context.Context, in Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Weather minima compliance - " + in.Station,
		Subject:     "METAR compliance analysis",
		Creator:     "metar-minima",
		Description: fmt.Sprintf("%d observations, %d limits", len(in.Observations), len(in.Limits)),
		Created:     in.GeneratedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("set doc props: %w", err)
	}

	w := &sheetWriter{f: f}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	steps := []struct {
		sheet string
		fill  func(*sheetWriter, Input) error
	}{
		{SheetSummary, g.summarySheet},
		{SheetMonthly, g.monthlySheet},
		{SheetDaily, g.dailySheet},
		{SheetViolations, g.violationsSheet},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.sheet != SheetSummary {
			if _, err := f.NewSheet(s.sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", s.sheet, err)
			}
		}
		w.sheet = s.sheet
		w.row = 1
		if err := s.fill(w, in); err != nil {
			return nil, fmt.Errorf("fill sheet %s: %w", s.sheet, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	g.logger.Info("report generated", "station", in.Station, "limits", len(in.Limits), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (g *Generator) summarySheet(w *sheetWriter, in Input) error {
	summary := stats.Summarize(in.Observations)
	rows := [][]any{
		{"Weather minima compliance", in.Station},
		{"Generated", in.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Observations", summary.Total},
	}
	if summary.Total > 0 {
		rows = append(rows,
			[]any{"First observation", summary.First.UTC().Format(time.RFC3339)},
			[]any{"Last observation", summary.Last.UTC().Format(time.RFC3339)},
		)
	}
	for _, r := range rows {
		if err := w.append(r...); err != nil {
			return err
		}
	}
	w.row++

	if err := w.append("Station", "Records"); err != nil {
		return err
	}
	for _, s := range summary.Stations {
		if err := w.append(s.ICAO, s.Count); err != nil {
			return err
		}
	}
	w.row++

	if err := w.append("Limit", "Time period", "Relevant", "Violations", "Non-compliance %", "Severity"); err != nil {
		return err
	}
	for _, s := range g.agg.Overall(in.Observations, in.Limits, in.Station) {
		if err := w.append(s.Limit.Name, string(s.Limit.TimePeriod), s.Total, s.Violations,
			domain.Round1(s.Percentage), string(s.Severity())); err != nil {
			return err
		}
	}
	return w.widths(28, 18, 12, 12, 18, 12)
}

func (g *Generator) monthlySheet(w *sheetWriter, in Input) error {
	if err := w.append("Limit", "Month", "Relevant", "Violations", "Non-compliance %"); err != nil {
		return err
	}
	for _, l := range in.Limits {
		for _, m := range g.agg.Monthly(in.Observations, l, in.Station) {
			if err := w.append(l.Name, m.Period(), m.Total, m.Violations, domain.Round1(m.Percentage())); err != nil {
				return err
			}
		}
	}
	return w.widths(28, 10, 12, 12, 18)
}

func (g *Generator) dailySheet(w *sheetWriter, in Input) error {
	if err := w.append("Limit", "Date", "UDP total", "UDP violations", "UDP %",
		"Outside total", "Outside violations", "Outside %"); err != nil {
		return err
	}
	for _, l := range in.Limits {
		daily := stats.LastDays(g.agg.Daily(in.Observations, l, in.Station), in.Days)
		for _, d := range daily {
			if err := w.append(l.Name, d.Date,
				d.UDPTotal, d.UDPViolations, domain.Round1(d.UDPPercentage()),
				d.NonUDPTotal, d.NonUDPViolations, domain.Round1(d.NonUDPPercentage())); err != nil {
				return err
			}
		}
	}
	return w.widths(28, 12, 10, 14, 8, 14, 18, 10)
}

func (g *Generator) violationsSheet(w *sheetWriter, in Input) error {
	if err := w.append("Limit", "Observed at", "Visibility (m)", "Reason", "Report"); err != nil {
		return err
	}
	for _, l := range in.Limits {
		for _, v := range g.agg.RecentViolations(in.Observations, l, in.Station, in.Recent) {
			if err := w.append(l.Name, v.Observation.Time.UTC().Format("2006-01-02 15:04"),
				v.Observation.Visibility, v.Reason, v.Observation.Raw); err != nil {
				return err
			}
		}
	}
	return w.widths(28, 18, 14, 36, 60)
}

// sheetWriter appends rows to one sheet.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) append(values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *sheetWriter) widths(widths ...float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
