// Package stats rolls per-observation verdicts into monthly and daily
// compliance figures for one station and one limit.
//
// Every function is a pure function of its arguments. Inputs are never
// mutated and each call owns its buckets, so several limits can be
// aggregated concurrently over the same observation slice.
package stats

import (
	"sort"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/rules"
)

// Aggregator computes statistics using a daylight-window source.
type Aggregator struct {
	window    rules.DaylightWindow
	evaluator *rules.Evaluator
}

// NewAggregator creates an Aggregator.
func NewAggregator(window rules.DaylightWindow) *Aggregator {
	return &Aggregator{window: window, evaluator: rules.NewEvaluator(window)}
}

type monthKey struct {
	year  int
	month time.Month
}

// Monthly buckets the relevant observations of station by UTC year and month.
// Observations outside the limit's time period count in neither total nor
// violations. Entries are sorted ascending.
func (a *Aggregator) Monthly(observations []domain.Observation, limit domain.Limit, station string) []domain.MonthlyStat {
	buckets := make(map[monthKey]*domain.MonthlyStat)

	for _, obs := range observations {
		if obs.Station != station {
			continue
		}
		verdict := rules.Check(obs, limit, a.window.IsDaylightWindow(obs.Time, obs.Station))
		if !verdict.Relevant {
			continue
		}

		t := obs.Time.UTC()
		key := monthKey{year: t.Year(), month: t.Month()}
		b, ok := buckets[key]
		if !ok {
			b = &domain.MonthlyStat{Year: key.year, Month: key.month}
			buckets[key] = b
		}
		b.Total++
		if verdict.Violated {
			b.Violations++
		}
	}

	out := make([]domain.MonthlyStat, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Daily buckets every observation of station by UTC date and splits it into
// inside- and outside-window series. A "udp" limit leaves the outside series
// at zero and an "outside-udp" limit leaves the inside series at zero; a
// "24/7" limit fills both. Days with observations always get an entry.
func (a *Aggregator) Daily(observations []domain.Observation, limit domain.Limit, station string) []domain.DailyStat {
	buckets := make(map[string]*domain.DailyStat)

	for _, obs := range observations {
		if obs.Station != station {
			continue
		}

		date := obs.Time.UTC().Format(time.DateOnly)
		b, ok := buckets[date]
		if !ok {
			b = &domain.DailyStat{Date: date}
			buckets[date] = b
		}

		inside := a.window.IsDaylightWindow(obs.Time, obs.Station)
		verdict := rules.Check(obs, limit, inside)

		if inside {
			if limit.TimePeriod != domain.PeriodOutsideUDP {
				b.UDPTotal++
				if verdict.Violated {
					b.UDPViolations++
				}
			}
			continue
		}
		if limit.TimePeriod != domain.PeriodUDP {
			b.NonUDPTotal++
			if verdict.Violated {
				b.NonUDPViolations++
			}
		}
	}

	out := make([]domain.DailyStat, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// LastDays returns the trailing n entries of an ascending daily series.
// n <= 0 returns the series unchanged.
func LastDays(daily []domain.DailyStat, n int) []domain.DailyStat {
	if n <= 0 || n >= len(daily) {
		return daily
	}
	return daily[len(daily)-n:]
}
