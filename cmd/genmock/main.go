// Command genmock writes synthetic METAR reports for one station and month.
// The output is deterministic for a given seed and is meant for local runs
// of the report CLI and the upload API.
//
// Usage:
//
//	go run ./cmd/genmock -station EHAM -year 2024 -month 1 -days 31 -interval 30m -seed 1 -out data/mock/eham_202401.txt
//	go run ./cmd/report -file data/mock/eham_202401.txt -year 2024 -month 1
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/metar-minima/internal/solar"
)

type options struct {
	station  string
	year     int
	month    time.Month
	days     int
	interval time.Duration
	seed     uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	station := flag.String("station", solar.DefaultStation, "ICAO station code")
	year := flag.Int("year", 2024, "reference year")
	month := flag.Int("month", 1, "reference month (1-12)")
	days := flag.Int("days", 31, "number of days to generate, capped at the month length")
	interval := flag.Duration("interval", 30*time.Minute, "time between reports")
	seed := flag.Uint64("seed", 1, "random seed")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	opts := options{
		station:  *station,
		year:     *year,
		month:    time.Month(*month),
		days:     *days,
		interval: *interval,
		seed:     *seed,
	}
	if err := opts.validate(); err != nil {
		flag.Usage()
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	n, err := generate(bw, opts)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	log.Printf("%s: %d reports for %04d-%02d", opts.station, n, opts.year, int(opts.month))
	if *out != "" {
		log.Printf("wrote %s", *out)
	}
	return nil
}

func (o options) validate() error {
	switch {
	case !stationPattern.MatchString(o.station):
		return fmt.Errorf("invalid station %q: want EHxx", o.station)
	case o.month < time.January || o.month > time.December:
		return errors.New("month must be between 1 and 12")
	case o.days <= 0:
		return errors.New("days must be positive")
	case o.interval < time.Minute:
		return errors.New("interval must be at least 1m")
	}
	return nil
}
