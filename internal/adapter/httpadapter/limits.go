package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/store"
	"github.com/google/uuid"
)

func (a *API) listLimits(w http.ResponseWriter, _ *http.Request) {
	limits := a.store.Snapshot().Limits()
	if limits == nil {
		limits = []domain.Limit{}
	}
	writeJSON(w, http.StatusOK, limits)
}

func (a *API) createLimit(w http.ResponseWriter, r *http.Request) {
	l, err := decodeLimit(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, err := a.store.InsertLimit(l); err != nil {
		if errors.Is(err, store.ErrLimitExists) {
			writeError(w, http.StatusConflict, fmt.Sprintf("limit %q already exists", l.ID))
			return
		}
		a.logger.Error("create limit failed", "error", err, "id", l.ID)
		writeError(w, http.StatusInternalServerError, "create limit failed")
		return
	}
	a.logger.Info("limit created", "id", l.ID, "name", l.Name)
	writeJSON(w, http.StatusCreated, l)
}

func (a *API) updateLimit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := a.store.Snapshot().Limit(id); !ok {
		writeError(w, http.StatusNotFound, store.ErrLimitNotFound.Error())
		return
	}

	l, err := decodeLimit(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	l.ID = id

	if _, err := a.store.UpdateLimit(l); err != nil {
		if errors.Is(err, store.ErrLimitNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		a.logger.Error("update limit failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "update limit failed")
		return
	}
	a.logger.Info("limit updated", "id", l.ID, "name", l.Name)
	writeJSON(w, http.StatusOK, l)
}

func (a *API) deleteLimit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.DeleteLimit(id); err != nil {
		if errors.Is(err, store.ErrLimitNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		a.logger.Error("delete limit failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "delete limit failed")
		return
	}
	a.logger.Info("limit deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeLimit reads a limit from the body, applies defaults and validates it.
func decodeLimit(w http.ResponseWriter, r *http.Request) (domain.Limit, error) {
	var l domain.Limit
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLimitBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return domain.Limit{}, fmt.Errorf("decode limit: %w", err)
	}
	l = l.WithDefaults()
	if err := l.Validate(); err != nil {
		return domain.Limit{}, err
	}
	return l, nil
}
