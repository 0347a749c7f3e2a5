// Package store keeps the current dataset as an immutable snapshot.
// Readers load the snapshot without locking; writers build a new snapshot
// and swap it in.
package store

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/metar-minima/internal/domain"
)

var (
	// ErrLimitNotFound is returned when a limit id is not in the dataset.
	ErrLimitNotFound = errors.New("limit not found")

	// ErrLimitExists is returned when inserting a limit whose id is taken.
	ErrLimitExists = errors.New("limit already exists")
)

// Dataset is a read-only view of the observations and limits. Callers must
// not modify the slices it returns.
type Dataset struct {
	observations []domain.Observation
	limits       []domain.Limit
	index        map[string]int
}

func newDataset(obs []domain.Observation, limits []domain.Limit) *Dataset {
	index := make(map[string]int, len(limits))
	for i, l := range limits {
		index[l.ID] = i
	}
	return &Dataset{observations: obs, limits: limits, index: index}
}

// Observations returns the observations in upload order.
func (d *Dataset) Observations() []domain.Observation { return d.observations }

// Limits returns the limits in insertion order.
func (d *Dataset) Limits() []domain.Limit { return d.limits }

// Limit looks up a limit by id.
func (d *Dataset) Limit(id string) (domain.Limit, bool) {
	i, ok := d.index[id]
	if !ok {
		return domain.Limit{}, false
	}
	return d.limits[i], true
}

// ObservationsFor returns the observations of one station.
func (d *Dataset) ObservationsFor(station string) []domain.Observation {
	out := make([]domain.Observation, 0)
	for _, o := range d.observations {
		if o.Station == station {
			out = append(out, o)
		}
	}
	return out
}

// Store holds the current Dataset.
type Store struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Dataset]
}

// New creates a Store seeded with limits and no observations.
func New(limits []domain.Limit) *Store {
	s := &Store{}
	s.current.Store(newDataset(nil, slices.Clone(limits)))
	return s
}

// Snapshot returns the current dataset.
func (s *Store) Snapshot() *Dataset {
	return s.current.Load()
}

// ReplaceObservations swaps in a new observation set, keeping the limits.
func (s *Store) ReplaceObservations(obs []domain.Observation) *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	next := newDataset(slices.Clone(obs), cur.limits)
	s.current.Store(next)
	return next
}

// ClearObservations drops all observations.
func (s *Store) ClearObservations() *Dataset {
	return s.ReplaceObservations(nil)
}

// InsertLimit appends l. It fails with ErrLimitExists if the id is taken.
// The caller is responsible for validation.
func (s *Store) InsertLimit(l domain.Limit) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if _, ok := cur.index[l.ID]; ok {
		return nil, ErrLimitExists
	}
	next := newDataset(cur.observations, append(slices.Clone(cur.limits), l))
	s.current.Store(next)
	return next, nil
}

// UpdateLimit replaces the limit with l's id in place. It fails with
// ErrLimitNotFound if there is none.
func (s *Store) UpdateLimit(l domain.Limit) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	i, ok := cur.index[l.ID]
	if !ok {
		return nil, ErrLimitNotFound
	}
	limits := slices.Clone(cur.limits)
	limits[i] = l
	next := newDataset(cur.observations, limits)
	s.current.Store(next)
	return next, nil
}

// DeleteLimit removes the limit with the given id.
func (s *Store) DeleteLimit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	i, ok := cur.index[id]
	if !ok {
		return ErrLimitNotFound
	}
	limits := slices.Delete(slices.Clone(cur.limits), i, i+1)
	s.current.Store(newDataset(cur.observations, limits))
	return nil
}
