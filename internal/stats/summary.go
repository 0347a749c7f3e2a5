package stats

import (
	"sort"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/solar"
)

// Severity buckets a non-compliance percentage for display.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SeverityOf maps a percentage to a badge: above 20% critical, above 10%
// warning.
func SeverityOf(pct float64) Severity {
	switch {
	case pct > 20:
		return SeverityCritical
	case pct > 10:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

// LimitSummary is the whole-dataset compliance of one limit at one station.
type LimitSummary struct {
	Limit      domain.Limit `json:"limit"`
	Total      int          `json:"total"`
	Violations int          `json:"violations"`
	Percentage float64      `json:"percentage"`
}

// Severity is the badge for the summary's percentage.
func (s LimitSummary) Severity() Severity { return SeverityOf(s.Percentage) }

// Overall sums the monthly statistics of each limit.
func (a *Aggregator) Overall(observations []domain.Observation, limits []domain.Limit, station string) []LimitSummary {
	out := make([]LimitSummary, 0, len(limits))
	for _, l := range limits {
		var total, violations int
		for _, m := range a.Monthly(observations, l, station) {
			total += m.Total
			violations += m.Violations
		}
		out = append(out, LimitSummary{
			Limit:      l,
			Total:      total,
			Violations: violations,
			Percentage: domain.Percentage(violations, total),
		})
	}
	return out
}

// Violation is a violated observation with the reason.
type Violation struct {
	Observation domain.Observation `json:"observation"`
	Reason      string             `json:"reason"`
}

// RecentViolations returns up to n of the last violations of station in
// dataset order, newest first.
func (a *Aggregator) RecentViolations(observations []domain.Observation, limit domain.Limit, station string, n int) []Violation {
	all := make([]Violation, 0)
	for _, obs := range observations {
		if obs.Station != station {
			continue
		}
		if v := a.evaluator.Evaluate(obs, limit); v.Violated {
			all = append(all, Violation{Observation: obs, Reason: v.Reason})
		}
	}
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all
}

// StationCount is the number of records for one station.
type StationCount struct {
	ICAO  string `json:"icao"`
	Count int    `json:"count"`
}

// DatasetSummary describes a loaded dataset.
type DatasetSummary struct {
	Total    int            `json:"total"`
	Stations []StationCount `json:"stations"`
	First    time.Time      `json:"first,omitzero"`
	Last     time.Time      `json:"last,omitzero"`
}

// Summarize counts records per station. All known stations are listed, with
// zero where absent, followed by any other in-scope codes found. First and
// Last follow dataset order, not chronology.
func Summarize(observations []domain.Observation) DatasetSummary {
	counts := make(map[string]int)
	for _, obs := range observations {
		counts[obs.Station]++
	}

	summary := DatasetSummary{Total: len(observations), Stations: make([]StationCount, 0, len(counts))}
	for _, s := range solar.Stations() {
		summary.Stations = append(summary.Stations, StationCount{ICAO: s.ICAO, Count: counts[s.ICAO]})
		delete(counts, s.ICAO)
	}
	extra := make([]string, 0, len(counts))
	for icao := range counts {
		extra = append(extra, icao)
	}
	sort.Strings(extra)
	for _, icao := range extra {
		summary.Stations = append(summary.Stations, StationCount{ICAO: icao, Count: counts[icao]})
	}

	if len(observations) > 0 {
		summary.First = observations[0].Time
		summary.Last = observations[len(observations)-1].Time
	}
	return summary
}
