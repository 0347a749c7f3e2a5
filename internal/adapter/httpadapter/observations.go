package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/metar"
	"github.com/couchcryptid/metar-minima/internal/pipeline"
	"github.com/couchcryptid/metar-minima/internal/stats"
)

type uploadResponse struct {
	Mode      string               `json:"mode"`
	Parse     metar.Stats          `json:"parse"`
	Published int                  `json:"published"`
	Dataset   stats.DatasetSummary `json:"dataset"`
}

// uploadObservations replaces the dataset with the METAR lines in the body.
// The dataset is left untouched when the upload fails.
func (a *API) uploadObservations(w http.ResponseWriter, r *http.Request) {
	ref, err := referenceFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body := http.MaxBytesReader(w, r.Body, a.maxUpload)
	t := pipeline.NewTransformer(ref, a.store.Snapshot().Limits(), a.evaluator)
	res, err := a.pipeline.Run(r.Context(), pipeline.NewLineSource(body, uploadSourceID), t)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, metar.ErrNoRecords):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		return
	case err != nil:
		a.logger.Error("upload failed", "error", err, "lines", res.Stats.Lines)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	snap := a.store.ReplaceObservations(res.Observations)
	a.metrics.DatasetObservation.Set(float64(len(snap.Observations())))
	a.logger.Info("dataset replaced", "mode", ref.Mode(), "observations", len(snap.Observations()))

	writeJSON(w, http.StatusOK, uploadResponse{
		Mode:      ref.Mode(),
		Parse:     res.Stats,
		Published: res.Published,
		Dataset:   stats.Summarize(snap.Observations()),
	})
}

// referenceFromQuery selects explicit mode when both year and month are
// given and inferred mode when neither is.
func referenceFromQuery(q url.Values) (metar.Reference, error) {
	ys, ms := q.Get("year"), q.Get("month")
	if ys == "" && ms == "" {
		return metar.Inferred(domain.Now()), nil
	}
	if ys == "" || ms == "" {
		return metar.Reference{}, errors.New("year and month must be given together")
	}
	year, err := strconv.Atoi(ys)
	if err != nil || year < 1 || year > 9999 {
		return metar.Reference{}, errors.New("year must be between 1 and 9999")
	}
	month, err := strconv.Atoi(ms)
	if err != nil || month < 1 || month > 12 {
		return metar.Reference{}, errors.New("month must be between 1 and 12")
	}
	return metar.Explicit(year, time.Month(month)), nil
}

type observationsResponse struct {
	Count        int                  `json:"count"`
	Observations []domain.Observation `json:"observations"`
}

func (a *API) listObservations(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()
	obs := snap.Observations()
	if q := r.URL.Query(); q.Get("station") != "" {
		obs = snap.ObservationsFor(a.station(q))
	}
	if obs == nil {
		obs = []domain.Observation{}
	}
	writeJSON(w, http.StatusOK, observationsResponse{Count: len(obs), Observations: obs})
}

func (a *API) clearObservations(w http.ResponseWriter, _ *http.Request) {
	a.store.ClearObservations()
	a.metrics.DatasetObservation.Set(0)
	a.logger.Info("dataset cleared")
	w.WriteHeader(http.StatusNoContent)
}
