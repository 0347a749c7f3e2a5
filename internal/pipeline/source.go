package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/metar"
)

// LineSource extracts non-blank lines from a reader in batches. Lines over
// metar.MaxLineLen are passed on marked Oversized, with no text.
type LineSource struct {
	scanner *metar.LineScanner
	name    string
	lineNo  int
	done    bool
}

// NewLineSource wraps r. name identifies the upload in logs.
func NewLineSource(r io.Reader, name string) *LineSource {
	return &LineSource{scanner: metar.NewLineScanner(r), name: name}
}

// ExtractBatch returns up to batchSize lines. io.EOF accompanies the last
// (possibly empty) batch.
func (s *LineSource) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawReport, error) {
	if s.done {
		return nil, io.EOF
	}

	batch := make([]domain.RawReport, 0, batchSize)
	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if !s.scanner.Scan() {
			s.done = true
			if err := s.scanner.Err(); err != nil {
				return batch, fmt.Errorf("read metar input: %w", err)
			}
			return batch, io.EOF
		}
		s.lineNo++
		if s.scanner.Oversized() {
			batch = append(batch, domain.RawReport{LineNumber: s.lineNo, Source: s.name, Oversized: true})
			continue
		}
		line := s.scanner.Line()
		if line == "" {
			continue
		}
		batch = append(batch, domain.RawReport{Line: line, LineNumber: s.lineNo, Source: s.name})
	}
	return batch, nil
}
