package solar

import (
	"time"
)

// Engine answers sunrise/sunset and daylight-window questions by station code.
// Unknown codes resolve to the engine's fallback station. Results are memoized
// per station and UTC date; an Engine is safe for concurrent use.
type Engine struct {
	fallback string
	cache    *lruCache
	observe  func(hit bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithCacheObserver registers a callback invoked on every cache lookup.
func WithCacheObserver(fn func(hit bool)) Option {
	return func(e *Engine) { e.observe = fn }
}

// NewEngine creates an Engine. A cacheSize of zero or less disables memoization.
func NewEngine(fallback string, cacheSize int, opts ...Option) *Engine {
	if !Known(fallback) {
		fallback = DefaultStation
	}
	e := &Engine{fallback: fallback}
	if cacheSize > 0 {
		e.cache = newLRUCache(cacheSize)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fallback returns the station used for unknown codes.
func (e *Engine) Fallback() string { return e.fallback }

// SunTimes returns sunrise and sunset for the UTC date of date at station.
func (e *Engine) SunTimes(date time.Time, station string) (sunrise, sunset time.Time) {
	coords, resolved := Resolve(station, e.fallback)
	if e.cache == nil {
		return SunriseSunset(date, coords)
	}

	day := date.UTC().Format(time.DateOnly)
	key := resolved + "|" + day
	if v, ok := e.cache.get(key); ok {
		e.record(true)
		return time.Unix(v.sunrise, 0).UTC(), time.Unix(v.sunset, 0).UTC()
	}
	e.record(false)

	sunrise, sunset = SunriseSunset(date, coords)
	e.cache.put(key, sunTimes{sunrise: sunrise.Unix(), sunset: sunset.Unix()})
	return sunrise, sunset
}

// Window returns the daylight operating window bounds for the UTC date of t.
func (e *Engine) Window(t time.Time, station string) (start, end time.Time) {
	sunrise, sunset := e.SunTimes(t, station)
	return sunrise.Add(-windowMargin), sunset.Add(windowMargin)
}

// IsDaylightWindow reports whether t is within [sunrise-15m, sunset+15m] of
// its own UTC date at station.
func (e *Engine) IsDaylightWindow(t time.Time, station string) bool {
	start, end := e.Window(t, station)
	return inWindow(t, start, end)
}

func (e *Engine) record(hit bool) {
	if e.observe != nil {
		e.observe(hit)
	}
}
