package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LoadLimits reads a YAML list of limits from path. Missing ids are
// generated, unset rules and periods take their defaults, and every limit is
// validated. Duplicate ids are rejected.
func LoadLimits(path string) ([]domain.Limit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits file: %w", err)
	}
	return ParseLimits(data)
}

// ParseLimits decodes the YAML limits document in data.
func ParseLimits(data []byte) ([]domain.Limit, error) {
	var raw []domain.Limit
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse limits file: %w", err)
	}

	limits := make([]domain.Limit, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, l := range raw {
		l = l.WithDefaults()
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("limit %d (%s): %w", i, l.Name, err)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("limit %d (%s): %w: duplicate id %q", i, l.Name, domain.ErrInvalidLimit, l.ID)
		}
		seen[l.ID] = true
		limits = append(limits, l)
	}
	return limits, nil
}
