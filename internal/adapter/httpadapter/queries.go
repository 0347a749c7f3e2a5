package httpadapter

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/report"
	"github.com/couchcryptid/metar-minima/internal/solar"
	"github.com/couchcryptid/metar-minima/internal/stats"
)

func (a *API) listStations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, solar.Stations())
}

type sunResponse struct {
	Station     string    `json:"station"`
	Date        string    `json:"date"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

func (a *API) sunTimes(w http.ResponseWriter, r *http.Request) {
	icao := strings.ToUpper(r.PathValue("icao"))
	if !solar.Known(icao) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown station %q", icao))
		return
	}

	date := domain.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	sunrise, sunset := a.sun.SunTimes(date, icao)
	start, end := a.sun.Window(date, icao)
	writeJSON(w, http.StatusOK, sunResponse{
		Station:     icao,
		Date:        date.UTC().Format(time.DateOnly),
		Sunrise:     sunrise,
		Sunset:      sunset,
		WindowStart: start,
		WindowEnd:   end,
	})
}

type monthlyEntry struct {
	Period     string  `json:"period"`
	Total      int     `json:"total"`
	Violations int     `json:"violations"`
	Percentage float64 `json:"percentage"`
}

type monthlyResponse struct {
	Station string         `json:"station"`
	Limit   domain.Limit   `json:"limit"`
	Months  []monthlyEntry `json:"months"`
}

func (a *API) monthlyStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap := a.store.Snapshot()
	l, err := limitParam(q, snap)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	station := a.station(q)

	monthly := a.agg.Monthly(snap.Observations(), l, station)
	entries := make([]monthlyEntry, 0, len(monthly))
	for _, m := range monthly {
		entries = append(entries, monthlyEntry{
			Period:     m.Period(),
			Total:      m.Total,
			Violations: m.Violations,
			Percentage: domain.Round1(m.Percentage()),
		})
	}
	writeJSON(w, http.StatusOK, monthlyResponse{Station: station, Limit: l, Months: entries})
}

type dailyEntry struct {
	domain.DailyStat
	UDPPercentage    float64 `json:"udp_percentage"`
	NonUDPPercentage float64 `json:"non_udp_percentage"`
}

type dailyResponse struct {
	Station string       `json:"station"`
	Limit   domain.Limit `json:"limit"`
	Days    []dailyEntry `json:"days"`
}

func (a *API) dailyStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := intParam(q, "days", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := a.store.Snapshot()
	l, err := limitParam(q, snap)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	station := a.station(q)

	daily := stats.LastDays(a.agg.Daily(snap.Observations(), l, station), days)
	entries := make([]dailyEntry, 0, len(daily))
	for _, d := range daily {
		entries = append(entries, dailyEntry{
			DailyStat:        d,
			UDPPercentage:    domain.Round1(d.UDPPercentage()),
			NonUDPPercentage: domain.Round1(d.NonUDPPercentage()),
		})
	}
	writeJSON(w, http.StatusOK, dailyResponse{Station: station, Limit: l, Days: entries})
}

type overallEntry struct {
	stats.LimitSummary
	Severity stats.Severity `json:"severity"`
}

type overallResponse struct {
	Station string               `json:"station"`
	Dataset stats.DatasetSummary `json:"dataset"`
	Limits  []overallEntry       `json:"limits"`
}

func (a *API) overallStats(w http.ResponseWriter, r *http.Request) {
	station := a.station(r.URL.Query())
	snap := a.store.Snapshot()

	overall := a.agg.Overall(snap.Observations(), snap.Limits(), station)
	entries := make([]overallEntry, 0, len(overall))
	for _, s := range overall {
		sev := s.Severity()
		s.Percentage = domain.Round1(s.Percentage)
		entries = append(entries, overallEntry{LimitSummary: s, Severity: sev})
	}
	writeJSON(w, http.StatusOK, overallResponse{
		Station: station,
		Dataset: stats.Summarize(snap.Observations()),
		Limits:  entries,
	})
}

type violationsResponse struct {
	Station    string            `json:"station"`
	Limit      domain.Limit      `json:"limit"`
	Violations []stats.Violation `json:"violations"`
}

func (a *API) recentViolations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := intParam(q, "n", defaultRecent)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := a.store.Snapshot()
	l, err := limitParam(q, snap)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	station := a.station(q)

	writeJSON(w, http.StatusOK, violationsResponse{
		Station:    station,
		Limit:      l,
		Violations: a.agg.RecentViolations(snap.Observations(), l, station, n),
	})
}

func (a *API) xlsxReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := intParam(q, "days", defaultDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	station := a.station(q)
	snap := a.store.Snapshot()

	data, err := a.reports.Generate(r.Context(), report.Input{
		Station:      station,
		Observations: snap.Observations(),
		Limits:       snap.Limits(),
		Days:         days,
		Recent:       defaultRecent,
		GeneratedAt:  domain.Now(),
	})
	if err != nil {
		a.logger.Error("generate report failed", "error", err, "station", station)
		writeError(w, http.StatusInternalServerError, "generate report failed")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="minima-%s.xlsx"`, station))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client may have gone away
}
