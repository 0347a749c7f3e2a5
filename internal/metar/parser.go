// Package metar turns raw METAR/SPECI lines into domain observations.
//
// The grammar is deliberately tolerant: only the station, the date/time group
// and a minimum token count are mandatory. Everything else is scanned for and
// defaulted when absent. A line that fails the mandatory checks is dropped,
// never reported as an error.
package metar

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
)

var (
	// ErrRejected wraps the reason a single line did not produce an observation.
	ErrRejected = errors.New("metar line rejected")

	// ErrNoRecords signals that a whole input produced zero observations.
	ErrNoRecords = errors.New("no valid METAR records found")
)

var (
	// stationRe limits scope to Dutch aerodromes, e.g. "EHAM".
	stationRe = regexp.MustCompile(`^EH[A-Z]{2}$`)

	// dateTimeRe matches the DDHHMMZ group, e.g. "151450Z".
	dateTimeRe = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})Z$`)

	// visibilityRe matches prevailing visibility in meters, e.g. "4000".
	visibilityRe = regexp.MustCompile(`^\d{4}$`)

	// directionalVisRe matches visibility with a compass suffix, e.g. "1500SW".
	directionalVisRe = regexp.MustCompile(`^(\d{4})(N|NE|E|SE|S|SW|W|NW)$`)

	// cloudRe matches a cloud group with optional type suffix, e.g. "BKN008" or "SCT025CB".
	cloudRe = regexp.MustCompile(`^(FEW|SCT|BKN|OVC)(\d{3})`)
)

const minTokens = 3

// Reference supplies the year and month a report's DDHHMMZ group belongs to.
type Reference struct {
	Year  int
	Month time.Month

	// directional enables the compass-suffixed visibility fallback. Only the
	// inferred mode recognises it.
	directional bool
}

// Inferred derives the period from the processing time now. Only day, hour
// and minute are taken from the report.
func Inferred(now time.Time) Reference {
	now = now.UTC()
	return Reference{Year: now.Year(), Month: now.Month(), directional: true}
}

// Explicit uses a caller-supplied period, for importing historical archives.
func Explicit(year int, month time.Month) Reference {
	return Reference{Year: year, Month: month}
}

// Mode returns "inferred" or "explicit".
func (r Reference) Mode() string {
	if r.directional {
		return "inferred"
	}
	return "explicit"
}

// Stats summarises a multi-line parse.
type Stats struct {
	Lines    int `json:"lines"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// ParseLine parses one report. The boolean is false when the line is rejected.
func ParseLine(raw string, ref Reference) (domain.Observation, bool) {
	obs, err := Parse(raw, ref)
	return obs, err == nil
}

// Parse is ParseLine with the rejection reason wrapped in ErrRejected.
func Parse(raw string, ref Reference) (domain.Observation, error) {
	line := strings.TrimSpace(raw)
	tokens := strings.Fields(line)
	if len(tokens) > 0 && (tokens[0] == "METAR" || tokens[0] == "SPECI") {
		tokens = tokens[1:]
	}
	if len(tokens) < minTokens {
		return domain.Observation{}, fmt.Errorf("%w: %d tokens, need %d", ErrRejected, len(tokens), minTokens)
	}

	station := tokens[0]
	if !stationRe.MatchString(station) {
		return domain.Observation{}, fmt.Errorf("%w: station %q out of scope", ErrRejected, station)
	}

	observed, ok := parseDateTime(tokens, ref)
	if !ok {
		return domain.Observation{}, fmt.Errorf("%w: no DDHHMMZ group", ErrRejected)
	}

	return domain.Observation{
		Station:    station,
		Time:       observed,
		Visibility: parseVisibility(tokens, ref.directional),
		Clouds:     parseClouds(tokens),
		Raw:        line,
	}, nil
}

// ParseFile parses newline-separated reports, skipping blank lines and
// dropping rejected ones. Order is preserved.
func ParseFile(text string, ref Reference) []domain.Observation {
	out := make([]domain.Observation, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if obs, ok := ParseLine(line, ref); ok {
			out = append(out, obs)
		}
	}
	return out
}

// ParseReader is the streaming form of ParseFile. Lines longer than
// MaxLineLen count as rejected. The only error it returns is a failure of r
// itself.
func ParseReader(r io.Reader, ref Reference) ([]domain.Observation, Stats, error) {
	var stats Stats
	out := make([]domain.Observation, 0)

	scanner := NewLineScanner(r)
	for scanner.Scan() {
		if scanner.Oversized() {
			stats.Lines++
			stats.Rejected++
			continue
		}
		line := scanner.Line()
		if line == "" {
			continue
		}
		stats.Lines++
		obs, ok := ParseLine(line, ref)
		if !ok {
			stats.Rejected++
			continue
		}
		stats.Accepted++
		out = append(out, obs)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read metar input: %w", err)
	}
	return out, stats, nil
}

// parseDateTime finds the first DDHHMMZ token and anchors it in ref's period.
// Out-of-range fields normalise the way time.Date does.
func parseDateTime(tokens []string, ref Reference) (time.Time, bool) {
	for _, tok := range tokens {
		m := dateTimeRe.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		hour, _ := strconv.Atoi(m[2])
		minute, _ := strconv.Atoi(m[3])
		return time.Date(ref.Year, ref.Month, day, hour, minute, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// parseVisibility scans tokens in order. CAVOK and a bare four-digit group end
// the scan. A compass-suffixed group only sets a running value, so a later
// bare group still wins.
func parseVisibility(tokens []string, directional bool) int {
	visibility := domain.UnrestrictedVisibility
	for _, tok := range tokens {
		if tok == "CAVOK" {
			return domain.UnrestrictedVisibility
		}
		if visibilityRe.MatchString(tok) {
			v, _ := strconv.Atoi(tok)
			if v <= domain.UnrestrictedVisibility {
				return v
			}
		}
		if directional {
			if m := directionalVisRe.FindStringSubmatch(tok); m != nil {
				visibility, _ = strconv.Atoi(m[1])
			}
		}
	}
	return visibility
}

// parseClouds collects every cloud group in report order. Duplicates are kept.
func parseClouds(tokens []string) []domain.CloudLayer {
	clouds := make([]domain.CloudLayer, 0)
	for _, tok := range tokens {
		m := cloudRe.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		hundreds, _ := strconv.Atoi(m[2])
		clouds = append(clouds, domain.CloudLayer{
			Type:   domain.CloudType(m[1]),
			Height: hundreds * 100,
		})
	}
	return clouds
}
