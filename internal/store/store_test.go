package store

import (
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lim(id string, vis int) domain.Limit {
	return domain.Limit{
		ID:             id,
		Name:           "Limit " + id,
		MinVisibility:  vis,
		CloudRule:      domain.CloudRuleStrict,
		MaxCloudHeight: 1000,
		TimePeriod:     domain.PeriodAlways,
	}
}

func obs(station string, hour int) domain.Observation {
	return domain.Observation{
		Station:    station,
		Time:       time.Date(2024, time.March, 1, hour, 0, 0, 0, time.UTC),
		Visibility: 9999,
		Clouds:     []domain.CloudLayer{},
	}
}

func TestNew_SeedsLimits(t *testing.T) {
	s := New([]domain.Limit{lim("a", 5000), lim("b", 3000)})

	snap := s.Snapshot()
	assert.Empty(t, snap.Observations())
	require.Len(t, snap.Limits(), 2)

	l, ok := snap.Limit("b")
	require.True(t, ok)
	assert.Equal(t, 3000, l.MinVisibility)

	_, ok = snap.Limit("missing")
	assert.False(t, ok)
}

func TestInsertLimit(t *testing.T) {
	s := New(nil)
	_, err := s.InsertLimit(lim("a", 5000))
	require.NoError(t, err)
	snap, err := s.InsertLimit(lim("b", 3000))
	require.NoError(t, err)
	require.Len(t, snap.Limits(), 2)

	_, err = s.InsertLimit(lim("a", 1500))
	require.ErrorIs(t, err, ErrLimitExists)

	l, ok := s.Snapshot().Limit("a")
	require.True(t, ok)
	assert.Equal(t, 5000, l.MinVisibility, "existing limit untouched")
}

func TestInsertLimit_ConcurrentSameID(t *testing.T) {
	s := New(nil)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.InsertLimit(lim("dup", 1000+i)); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrLimitExists)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, s.Snapshot().Limits(), 1)
}

func TestUpdateLimit(t *testing.T) {
	s := New([]domain.Limit{lim("a", 5000), lim("b", 3000)})

	snap, err := s.UpdateLimit(lim("a", 1500))
	require.NoError(t, err)
	limits := snap.Limits()
	require.Len(t, limits, 2)
	assert.Equal(t, "a", limits[0].ID)
	assert.Equal(t, 1500, limits[0].MinVisibility)

	_, err = s.UpdateLimit(lim("missing", 1000))
	require.ErrorIs(t, err, ErrLimitNotFound)
	assert.Len(t, s.Snapshot().Limits(), 2)
}

func TestDeleteLimit(t *testing.T) {
	s := New([]domain.Limit{lim("a", 5000), lim("b", 3000), lim("c", 1000)})

	require.NoError(t, s.DeleteLimit("b"))
	snap := s.Snapshot()
	require.Len(t, snap.Limits(), 2)
	l, ok := snap.Limit("c")
	require.True(t, ok)
	assert.Equal(t, "c", l.ID)

	assert.ErrorIs(t, s.DeleteLimit("b"), ErrLimitNotFound)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := New([]domain.Limit{lim("a", 5000)})
	s.ReplaceObservations([]domain.Observation{obs("EHAM", 1)})

	before := s.Snapshot()
	_, err := s.InsertLimit(lim("b", 3000))
	require.NoError(t, err)
	s.ReplaceObservations([]domain.Observation{obs("EHAM", 2), obs("EHGG", 3)})
	require.NoError(t, s.DeleteLimit("a"))

	assert.Len(t, before.Limits(), 1)
	assert.Len(t, before.Observations(), 1)

	after := s.Snapshot()
	assert.Len(t, after.Observations(), 2)
	require.Len(t, after.Limits(), 1)
	assert.Equal(t, "b", after.Limits()[0].ID)
}

func TestReplaceObservations_CopiesInput(t *testing.T) {
	s := New(nil)
	in := []domain.Observation{obs("EHAM", 1)}
	s.ReplaceObservations(in)

	in[0].Station = "EHGG"
	assert.Equal(t, "EHAM", s.Snapshot().Observations()[0].Station)
}

func TestClearObservations_KeepsLimits(t *testing.T) {
	s := New([]domain.Limit{lim("a", 5000)})
	s.ReplaceObservations([]domain.Observation{obs("EHAM", 1)})

	snap := s.ClearObservations()
	assert.Empty(t, snap.Observations())
	assert.Len(t, snap.Limits(), 1)
}

func TestObservationsFor(t *testing.T) {
	s := New(nil)
	s.ReplaceObservations([]domain.Observation{obs("EHAM", 1), obs("EHGG", 2), obs("EHAM", 3)})

	got := s.Snapshot().ObservationsFor("EHAM")
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[1].Time.Hour())
	assert.NotNil(t, s.Snapshot().ObservationsFor("EHWO"))
}

func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.InsertLimit(lim(string(rune('a'+i)), 1000*i))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			for _, l := range snap.Limits() {
				got, ok := snap.Limit(l.ID)
				assert.True(t, ok)
				assert.Equal(t, l, got)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, s.Snapshot().Limits(), 10)
}
