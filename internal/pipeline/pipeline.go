package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/metar"
	"github.com/couchcryptid/metar-minima/internal/observability"
)

// maxLoadAttempts bounds how often one batch is offered to the loader.
const maxLoadAttempts = 5

// BatchExtractor reads up to batchSize raw reports from the source. It
// returns io.EOF, possibly alongside a final partial batch, once the source
// is exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawReport, error)
}

// Transformer converts a raw report into an analyzed report. Errors wrapping
// metar.ErrRejected mark a dropped line, not a failure.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawReport) (domain.AnalyzedReport, error)
}

// BatchLoader writes multiple analyzed reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.AnalyzedReport) error
}

// Result is the outcome of one run.
type Result struct {
	Observations []domain.Observation
	Stats        metar.Stats
	Published    int
}

// Pipeline orchestrates the extract-transform-load loop for one upload at a
// time. It may be reused across uploads.
type Pipeline struct {
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	sinkDown  atomic.Bool
	batchSize int

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a Pipeline that publishes to loader.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,

		// Exponential backoff: start at 200ms, double each retry, cap at 5s.
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// CheckReadiness returns nil unless the last publish to the sink gave up.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.sinkDown.Load() {
		return errors.New("verdict sink unavailable")
	}
	return nil
}

// Run drains src through t into the loader. It returns metar.ErrNoRecords
// when no line was accepted.
func (p *Pipeline) Run(ctx context.Context, src BatchExtractor, t Transformer) (Result, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	res := Result{Observations: make([]domain.Observation, 0)}
	started := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		batch, err := src.ExtractBatch(ctx, p.batchSize)
		if len(batch) > 0 {
			if perr := p.processBatch(ctx, batch, t, &res); perr != nil {
				return res, perr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("extract batch: %w", err)
		}
	}

	p.logger.Info("upload processed",
		"lines", res.Stats.Lines,
		"accepted", res.Stats.Accepted,
		"rejected", res.Stats.Rejected,
		"published", res.Published,
		"duration", time.Since(started),
	)

	if res.Stats.Accepted == 0 {
		return res, metar.ErrNoRecords
	}
	return res, nil
}

// processBatch transforms and loads one batch, accumulating into res.
func (p *Pipeline) processBatch(ctx context.Context, batch []domain.RawReport, t Transformer, res *Result) error {
	start := time.Now()
	p.metrics.LinesRead.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	out := make([]domain.AnalyzedReport, 0, len(batch))
	for _, raw := range batch {
		res.Stats.Lines++
		report, err := t.Transform(ctx, raw)
		if err != nil {
			if !errors.Is(err, metar.ErrRejected) {
				return fmt.Errorf("transform line %d: %w", raw.LineNumber, err)
			}
			p.logger.Debug("line rejected", "error", err, "source", raw.Source, "line", raw.LineNumber)
			p.metrics.LinesRejected.Inc()
			res.Stats.Rejected++
			continue
		}
		res.Stats.Accepted++
		res.Observations = append(res.Observations, report.Observation)
		out = append(out, report)
	}

	if len(out) == 0 {
		return nil
	}
	if err := p.load(ctx, out); err != nil {
		return err
	}

	res.Published += len(out)
	p.metrics.VerdictsPublished.Add(float64(len(out)))
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return nil
}

// load offers the batch to the loader with exponential backoff, giving up
// after maxLoadAttempts.
func (p *Pipeline) load(ctx context.Context, out []domain.AnalyzedReport) error {
	backoff := p.initialBackoff

	var err error
	for attempt := 1; attempt <= maxLoadAttempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, out); err == nil {
			p.sinkDown.Store(false)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out), "attempt", attempt)
		if attempt == maxLoadAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}

	p.sinkDown.Store(true)
	return fmt.Errorf("load batch after %d attempts: %w", maxLoadAttempts, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
