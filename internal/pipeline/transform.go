package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/metar"
	"github.com/couchcryptid/metar-minima/internal/rules"
)

// MetarTransformer parses a line and evaluates it against a fixed set of
// limits. Build one per upload so the limits match the dataset snapshot.
type MetarTransformer struct {
	ref       metar.Reference
	limits    []domain.Limit
	evaluator *rules.Evaluator
}

// NewTransformer creates a MetarTransformer.
func NewTransformer(ref metar.Reference, limits []domain.Limit, evaluator *rules.Evaluator) *MetarTransformer {
	return &MetarTransformer{
		ref:       ref,
		limits:    limits,
		evaluator: evaluator,
	}
}

func (t *MetarTransformer) Transform(_ context.Context, raw domain.RawReport) (domain.AnalyzedReport, error) {
	if raw.Oversized {
		return domain.AnalyzedReport{}, fmt.Errorf("%w: line exceeds %d bytes", metar.ErrRejected, metar.MaxLineLen)
	}
	obs, err := metar.Parse(raw.Line, t.ref)
	if err != nil {
		return domain.AnalyzedReport{}, err
	}
	return domain.AnalyzedReport{
		Observation: obs,
		Verdicts:    t.evaluator.EvaluateAll(obs, t.limits),
	}, nil
}
