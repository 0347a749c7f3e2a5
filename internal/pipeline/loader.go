package pipeline

import (
	"context"

	"github.com/couchcryptid/metar-minima/internal/domain"
)

// DiscardLoader accepts every batch and drops it. It stands in for the
// verdict sink when Kafka is disabled.
type DiscardLoader struct{}

func (DiscardLoader) LoadBatch(context.Context, []domain.AnalyzedReport) error { return nil }
