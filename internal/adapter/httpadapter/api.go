package httpadapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/observability"
	"github.com/couchcryptid/metar-minima/internal/pipeline"
	"github.com/couchcryptid/metar-minima/internal/report"
	"github.com/couchcryptid/metar-minima/internal/rules"
	"github.com/couchcryptid/metar-minima/internal/solar"
	"github.com/couchcryptid/metar-minima/internal/stats"
	"github.com/couchcryptid/metar-minima/internal/store"
)

const (
	defaultRecent  = 10
	defaultDays    = 30
	maxLimitBody   = 1 << 20
	uploadSourceID = "upload"
)

var errLimitRequired = errors.New("limit is required")

// API serves the /v1 routes over the current dataset.
type API struct {
	store     *store.Store
	pipeline  *pipeline.Pipeline
	sun       *solar.Engine
	evaluator *rules.Evaluator
	agg       *stats.Aggregator
	reports   *report.Generator
	metrics   *observability.Metrics
	maxUpload int64
	logger    *slog.Logger
}

// NewAPI wires the handlers. Uploads larger than maxUpload bytes are refused.
func NewAPI(st *store.Store, p *pipeline.Pipeline, sun *solar.Engine, metrics *observability.Metrics, maxUpload int64, logger *slog.Logger) *API {
	agg := stats.NewAggregator(sun)
	return &API{
		store:     st,
		pipeline:  p,
		sun:       sun,
		evaluator: rules.NewEvaluator(sun),
		agg:       agg,
		reports:   report.NewGenerator(agg, logger),
		metrics:   metrics,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/observations", a.uploadObservations)
	mux.HandleFunc("GET /v1/observations", a.listObservations)
	mux.HandleFunc("DELETE /v1/observations", a.clearObservations)

	mux.HandleFunc("GET /v1/limits", a.listLimits)
	mux.HandleFunc("POST /v1/limits", a.createLimit)
	mux.HandleFunc("PUT /v1/limits/{id}", a.updateLimit)
	mux.HandleFunc("DELETE /v1/limits/{id}", a.deleteLimit)

	mux.HandleFunc("GET /v1/stations", a.listStations)
	mux.HandleFunc("GET /v1/stations/{icao}/sun", a.sunTimes)

	mux.HandleFunc("GET /v1/stats/monthly", a.monthlyStats)
	mux.HandleFunc("GET /v1/stats/daily", a.dailyStats)
	mux.HandleFunc("GET /v1/stats/overall", a.overallStats)
	mux.HandleFunc("GET /v1/violations", a.recentViolations)
	mux.HandleFunc("GET /v1/reports/xlsx", a.xlsxReport)
}

// station returns the ?station= parameter, upper-cased, or the default station.
func (a *API) station(q url.Values) string {
	if s := strings.ToUpper(strings.TrimSpace(q.Get("station"))); s != "" {
		return s
	}
	return a.sun.Fallback()
}

// limitParam resolves ?limit= against the snapshot.
func limitParam(q url.Values, snap *store.Dataset) (domain.Limit, error) {
	id := q.Get("limit")
	if id == "" {
		return domain.Limit{}, errLimitRequired
	}
	l, ok := snap.Limit(id)
	if !ok {
		return domain.Limit{}, store.ErrLimitNotFound
	}
	return l, nil
}

func writeLimitError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrLimitNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// intParam parses a non-negative integer query parameter.
func intParam(q url.Values, key string, def int) (int, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
