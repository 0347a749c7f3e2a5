// Package solar computes sunrise and sunset for Dutch aerodromes and derives
// the daylight operating window (UDP) used by limit evaluation.
//
// The solar position uses the low-precision almanac method (mean longitude,
// mean anomaly, two-term equation of centre). Results are accurate to within
// a few minutes, which is enough for a 15-minute operating margin.
//
// Sunrise and sunset are defined for a zenith of 90.833°, accounting for
// atmospheric refraction and the solar radius. When the sun never sets the
// day runs 00:00:00–23:59:59 UTC; when it never rises both instants are
// 12:00:00 UTC.
//
// Every computation uses the UTC calendar date of its input. A timestamp just
// after midnight UTC is compared against its own date's window, never the
// previous day's. Around the March equinox the unfolded equation of time can
// place both events on the previous UTC date; such a date has no daylight
// window of its own.
package solar
