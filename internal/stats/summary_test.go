package stats

import (
	"testing"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityOK, SeverityOf(0))
	assert.Equal(t, SeverityOK, SeverityOf(10))
	assert.Equal(t, SeverityWarning, SeverityOf(10.1))
	assert.Equal(t, SeverityWarning, SeverityOf(20))
	assert.Equal(t, SeverityCritical, SeverityOf(20.1))
}

func TestOverall(t *testing.T) {
	a := NewAggregator(officeHours{})
	limits := []domain.Limit{testLimit(domain.PeriodUDP), testLimit(domain.PeriodAlways)}

	got := a.Overall(dataset(), limits, "EHAM")

	require.Len(t, got, 2)
	assert.Equal(t, limits[0], got[0].Limit)
	assert.Equal(t, 3, got[0].Total)
	assert.Equal(t, 2, got[0].Violations)
	assert.InDelta(t, 66.67, got[0].Percentage, 0.01)
	assert.Equal(t, SeverityCritical, got[0].Severity())

	assert.Equal(t, 5, got[1].Total)
	assert.Equal(t, 3, got[1].Violations)
	assert.InDelta(t, 60.0, got[1].Percentage, 0.01)
}

func TestOverall_NoData(t *testing.T) {
	got := NewAggregator(officeHours{}).Overall(nil, []domain.Limit{testLimit(domain.PeriodUDP)}, "EHAM")

	require.Len(t, got, 1)
	assert.Zero(t, got[0].Total)
	assert.Zero(t, got[0].Percentage)
	assert.Equal(t, SeverityOK, got[0].Severity())
}

func TestRecentViolations(t *testing.T) {
	a := NewAggregator(officeHours{})

	got := a.RecentViolations(dataset(), testLimit(domain.PeriodAlways), "EHAM", 2)

	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, time.February, 1, 23, 0, 0, 0, time.UTC), got[0].Observation.Time)
	assert.Equal(t, "Visibility 2000m < 5000m", got[0].Reason)
	assert.Equal(t, time.Date(2024, time.January, 11, 12, 0, 0, 0, time.UTC), got[1].Observation.Time)
	assert.Equal(t, "Cloud layer BKN005 at 500ft < 1000ft", got[1].Reason)
}

func TestRecentViolations_AllWhenFewer(t *testing.T) {
	got := NewAggregator(officeHours{}).RecentViolations(dataset(), testLimit(domain.PeriodUDP), "EHAM", 10)

	require.Len(t, got, 2)
	assert.Equal(t, 11, got[0].Observation.Time.Day())
	assert.Equal(t, 10, got[1].Observation.Time.Day())
}

func TestRecentViolations_None(t *testing.T) {
	got := NewAggregator(officeHours{}).RecentViolations(dataset(), testLimit(domain.PeriodAlways), "EHWO", 10)

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSummarize(t *testing.T) {
	obs := append(dataset(), at("EHRD", time.March, 1, 12, 9999))

	got := Summarize(obs)

	assert.Equal(t, 7, got.Total)
	assert.Equal(t, []StationCount{
		{ICAO: "EHAM", Count: 5},
		{ICAO: "EHGG", Count: 1},
		{ICAO: "EHJK", Count: 0},
		{ICAO: "EHLE", Count: 0},
		{ICAO: "EHWO", Count: 0},
		{ICAO: "EHRD", Count: 1},
	}, got.Stations)
	assert.Equal(t, obs[0].Time, got.First)
	assert.Equal(t, obs[len(obs)-1].Time, got.Last)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)

	assert.Zero(t, got.Total)
	assert.Len(t, got.Stations, 5)
	assert.True(t, got.First.IsZero())
	assert.True(t, got.Last.IsZero())
}
