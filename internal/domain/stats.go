package domain

import (
	"fmt"
	"math"
	"time"
)

// Verdict is the outcome of checking one observation against one limit.
// Violated is only meaningful when Relevant is true.
type Verdict struct {
	Relevant bool   `json:"relevant"`
	Violated bool   `json:"violated"`
	Reason   string `json:"reason,omitempty"`
}

// MonthlyStat counts relevant observations and violations for one UTC month.
type MonthlyStat struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	Total      int        `json:"total"`
	Violations int        `json:"violations"`
}

// Period returns the bucket identifier, e.g. "2024-03".
func (s MonthlyStat) Period() string {
	return fmt.Sprintf("%04d-%02d", s.Year, int(s.Month))
}

// Percentage returns the share of violations among relevant observations.
func (s MonthlyStat) Percentage() float64 {
	return Percentage(s.Violations, s.Total)
}

// DailyStat splits one UTC day into inside- and outside-window series.
type DailyStat struct {
	Date             string `json:"date"` // YYYY-MM-DD
	UDPTotal         int    `json:"udp_total"`
	UDPViolations    int    `json:"udp_violations"`
	NonUDPTotal      int    `json:"non_udp_total"`
	NonUDPViolations int    `json:"non_udp_violations"`
}

func (s DailyStat) UDPPercentage() float64 {
	return Percentage(s.UDPViolations, s.UDPTotal)
}

func (s DailyStat) NonUDPPercentage() float64 {
	return Percentage(s.NonUDPViolations, s.NonUDPTotal)
}

// Percentage returns violations/total*100, or 0 when total is 0.
func Percentage(violations, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(violations) / float64(total) * 100
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
