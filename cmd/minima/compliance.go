package main

import (
	"log/slog"

	"github.com/couchcryptid/metar-minima/internal/stats"
	"github.com/couchcryptid/metar-minima/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// complianceRefresher recomputes the per-station, per-limit compliance
// gauges from the current snapshot.
type complianceRefresher struct {
	store  *store.Store
	agg    *stats.Aggregator
	gauge  *prometheus.GaugeVec
	logger *slog.Logger
}

func newComplianceRefresher(st *store.Store, agg *stats.Aggregator, gauge *prometheus.GaugeVec, logger *slog.Logger) *complianceRefresher {
	return &complianceRefresher{store: st, agg: agg, gauge: gauge, logger: logger}
}

// Refresh replaces every gauge series. Stations without observations are
// skipped so removed data does not linger as stale series.
func (r *complianceRefresher) Refresh() {
	snap := r.store.Snapshot()
	obs := snap.Observations()

	r.gauge.Reset()
	series := 0
	for _, s := range stats.Summarize(obs).Stations {
		if s.Count == 0 {
			continue
		}
		for _, summary := range r.agg.Overall(obs, snap.Limits(), s.ICAO) {
			r.gauge.WithLabelValues(s.ICAO, summary.Limit.ID).Set(summary.Percentage)
			series++
		}
	}
	r.logger.Debug("compliance gauges refreshed", "series", series, "observations", len(obs))
}
