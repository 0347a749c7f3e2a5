package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/metar"
	"github.com/couchcryptid/metar-minima/internal/observability"
	"github.com/couchcryptid/metar-minima/internal/pipeline"
	"github.com/couchcryptid/metar-minima/internal/rules"
	"github.com/couchcryptid/metar-minima/internal/solar"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upload = `METAR EHAM 010025Z 24012KT 9999 FEW035 08/05 Q1012 NOSIG
EHAM 010125Z 23010KT 4000 BR BKN008 07/06 Q1012

EGLL 010120Z 25010KT 9999 SCT040 09/04 Q1013
EHGG 010125Z 22008KT CAVOK 05/01 Q1014
EHAM 24012KT 9999 FEW035
`

// --- mocks ---

type mockLoader struct {
	mu       sync.Mutex
	failures int
	calls    int
	loaded   []domain.AnalyzedReport
}

func (m *mockLoader) LoadBatch(_ context.Context, reports []domain.AnalyzedReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, reports...)
	return nil
}

type failingTransformer struct{}

func (failingTransformer) Transform(context.Context, domain.RawReport) (domain.AnalyzedReport, error) {
	return domain.AnalyzedReport{}, errors.New("evaluator exploded")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLimits() []domain.Limit {
	return []domain.Limit{{
		ID:             "vfr",
		Name:           "VFR",
		MinVisibility:  5000,
		CloudRule:      domain.CloudRuleStrict,
		MaxCloudHeight: 1000,
		TimePeriod:     domain.PeriodAlways,
	}}
}

func newTransformer() *pipeline.MetarTransformer {
	evaluator := rules.NewEvaluator(solar.NewEngine(solar.DefaultStation, 16))
	return pipeline.NewTransformer(metar.Explicit(2024, time.March), testLimits(), evaluator)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ldr, discardLogger(), metrics, 2)

	res, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(upload), "upload"), newTransformer())
	require.NoError(t, err)

	assert.Equal(t, metar.Stats{Lines: 5, Accepted: 3, Rejected: 2}, res.Stats)
	assert.Equal(t, 3, res.Published)
	require.Len(t, res.Observations, 3)
	assert.Equal(t, "EHGG", res.Observations[2].Station)

	require.Len(t, ldr.loaded, 3)
	second := ldr.loaded[1]
	require.Len(t, second.Verdicts, 1)
	assert.Equal(t, "vfr", second.Verdicts[0].LimitID)
	assert.True(t, second.Verdicts[0].Violated)
	assert.Equal(t, "Visibility 4000m < 5000m", second.Verdicts[0].Reason)

	assert.InDelta(t, 5, testutil.ToFloat64(metrics.LinesRead), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.LinesRejected), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.VerdictsPublished), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_NoRecords(t *testing.T) {
	p := pipeline.New(&mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)

	res, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader("garbage\nKJFK 010151Z 31015KT\n"), "upload"), newTransformer())
	require.ErrorIs(t, err, metar.ErrNoRecords)
	assert.Equal(t, 2, res.Stats.Rejected)
	assert.NotNil(t, res.Observations)
	assert.Empty(t, res.Observations)
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	p := pipeline.New(&mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)

	_, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(""), "upload"), newTransformer())
	require.ErrorIs(t, err, metar.ErrNoRecords)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, pipeline.NewLineSource(strings.NewReader(upload), "upload"), newTransformer())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_ReaderError(t *testing.T) {
	p := pipeline.New(&mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)
	src := pipeline.NewLineSource(iotest.ErrReader(errors.New("disk gone")), "upload")

	_, err := p.Run(context.Background(), src, newTransformer())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read metar input")
}

func TestPipeline_Run_TransformFailureStops(t *testing.T) {
	p := pipeline.New(&mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)

	_, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(upload), "upload"), failingTransformer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluator exploded")
}

func TestPipeline_Run_RetriesLoad(t *testing.T) {
	ldr := &mockLoader{failures: 2}
	p := pipeline.New(ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	p.SetBackoff(time.Millisecond, 2*time.Millisecond)

	res, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(upload), "upload"), newTransformer())
	require.NoError(t, err)
	assert.Equal(t, 3, ldr.calls)
	assert.Equal(t, 3, res.Published)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_LoadGivesUp(t *testing.T) {
	ldr := &mockLoader{failures: 100}
	p := pipeline.New(ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	p.SetBackoff(time.Millisecond, 2*time.Millisecond)

	_, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(upload), "upload"), newTransformer())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Equal(t, pipeline.MaxLoadAttempts, ldr.calls)
	assert.Error(t, p.CheckReadiness(context.Background()))

	// A later successful publish restores readiness.
	ldr.failures = 0
	_, err = p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(upload), "upload"), newTransformer())
	require.NoError(t, err)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_DiscardLoader(t *testing.T) {
	p := pipeline.New(pipeline.DiscardLoader{}, discardLogger(), observability.NewMetricsForTesting(), 50)

	res, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(upload), "upload"), newTransformer())
	require.NoError(t, err)
	assert.Len(t, res.Observations, 3)
}

func TestPipeline_Run_OversizedLineRejected(t *testing.T) {
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ldr, discardLogger(), metrics, 2)

	input := upload + strings.Repeat("EHAM 010155Z ", metar.MaxLineLen/13+1) + "\nEHWO 010125Z 20004KT 0800 FG\n"
	res, err := p.Run(context.Background(), pipeline.NewLineSource(strings.NewReader(input), "upload"), newTransformer())
	require.NoError(t, err)

	assert.Equal(t, metar.Stats{Lines: 7, Accepted: 4, Rejected: 3}, res.Stats)
	assert.Equal(t, "EHWO", res.Observations[3].Station)
	assert.Len(t, ldr.loaded, 4)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.LinesRejected), 0)
}

func TestMetarTransformer_Oversized(t *testing.T) {
	_, err := newTransformer().Transform(context.Background(), domain.RawReport{Oversized: true, LineNumber: 4})
	require.ErrorIs(t, err, metar.ErrRejected)
}

func TestMetarTransformer_Rejected(t *testing.T) {
	_, err := newTransformer().Transform(context.Background(), domain.RawReport{Line: "EGLL 010120Z 25010KT"})
	require.ErrorIs(t, err, metar.ErrRejected)
}
