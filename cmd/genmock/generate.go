package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

var stationPattern = regexp.MustCompile(`^EH[A-Z]{2}$`)

// regime is the slowly varying weather state behind consecutive reports.
type regime int

const (
	regimeClear regime = iota
	regimeCloudy
	regimeMist
	regimeFog
)

// transitions[r] holds cumulative probabilities of moving to each regime.
var transitions = [...][4]float64{
	regimeClear:  {0.90, 0.97, 0.995, 1},
	regimeCloudy: {0.08, 0.90, 0.98, 1},
	regimeMist:   {0.05, 0.25, 0.85, 1},
	regimeFog:    {0.02, 0.10, 0.40, 1},
}

// generate writes one report per interval from the first of the month and
// returns the number of lines written.
func generate(w io.Writer, o options) (int, error) {
	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))

	start := time.Date(o.year, o.month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, o.days)
	if monthEnd := start.AddDate(0, 1, 0); end.After(monthEnd) {
		end = monthEnd
	}

	state := regimeClear
	n := 0
	for t := start; t.Before(end); t = t.Add(o.interval) {
		state = next(rng, state)
		if _, err := fmt.Fprintln(w, report(rng, o.station, t, state)); err != nil {
			return n, fmt.Errorf("write report: %w", err)
		}
		n++
	}
	return n, nil
}

func next(rng *rand.Rand, r regime) regime {
	p := rng.Float64()
	for i, c := range transitions[r] {
		if p < c {
			return regime(i)
		}
	}
	return r
}

func report(rng *rand.Rand, station string, t time.Time, r regime) string {
	var b strings.Builder
	if rng.IntN(4) == 0 {
		b.WriteString("METAR ")
	}
	fmt.Fprintf(&b, "%s %02d%02d%02dZ ", station, t.Day(), t.Hour(), t.Minute())
	fmt.Fprintf(&b, "%03d%02dKT ", rng.IntN(36)*10, 3+rng.IntN(20))

	switch r {
	case regimeClear:
		if rng.IntN(3) == 0 {
			b.WriteString("CAVOK")
		} else {
			fmt.Fprintf(&b, "9999 FEW%03d", 25+rng.IntN(30))
		}
	case regimeCloudy:
		fmt.Fprintf(&b, "%04d ", pick(rng, 7000, 8000, 9999))
		fmt.Fprintf(&b, "SCT%03d BKN%03d", 8+rng.IntN(15), 15+rng.IntN(30))
		if rng.IntN(3) == 0 {
			b.WriteString(" -RA")
		}
	case regimeMist:
		fmt.Fprintf(&b, "%04d BR ", pick(rng, 2500, 3000, 4000, 5000))
		fmt.Fprintf(&b, "BKN%03d", 4+rng.IntN(8))
	case regimeFog:
		fmt.Fprintf(&b, "%04d FG ", pick(rng, 200, 400, 800, 1200))
		if rng.IntN(2) == 0 {
			fmt.Fprintf(&b, "VV%03d", 1+rng.IntN(3))
		} else {
			fmt.Fprintf(&b, "OVC%03d", 1+rng.IntN(4))
		}
	}

	temp := 2 + rng.IntN(12)
	dew := temp - rng.IntN(4)
	fmt.Fprintf(&b, " %s/%s Q%04d", celsius(temp), celsius(dew), 995+rng.IntN(40))
	return b.String()
}

func pick(rng *rand.Rand, values ...int) int {
	return values[rng.IntN(len(values))]
}

func celsius(c int) string {
	if c < 0 {
		return fmt.Sprintf("M%02d", -c)
	}
	return fmt.Sprintf("%02d", c)
}
