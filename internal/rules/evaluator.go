// Package rules decides whether an observation breaches a weather limit.
package rules

import (
	"fmt"
	"time"

	"github.com/couchcryptid/metar-minima/internal/domain"
)

// DaylightWindow answers whether an instant lies inside a station's daylight
// operating window. *solar.Engine satisfies it.
type DaylightWindow interface {
	IsDaylightWindow(t time.Time, station string) bool
}

// Evaluator checks observations against limits.
type Evaluator struct {
	window DaylightWindow
}

// NewEvaluator creates an Evaluator backed by window.
func NewEvaluator(window DaylightWindow) *Evaluator {
	return &Evaluator{window: window}
}

// Relevant reports whether a limit with the given period applies to an
// observation inside (or outside) the daylight window.
func Relevant(period domain.TimePeriod, insideWindow bool) bool {
	switch period {
	case domain.PeriodAlways:
		return true
	case domain.PeriodUDP:
		return insideWindow
	case domain.PeriodOutsideUDP:
		return !insideWindow
	default:
		return false
	}
}

// Evaluate returns the verdict of obs against limit. Visibility is checked
// before clouds; the first failing check decides the reason.
func (e *Evaluator) Evaluate(obs domain.Observation, limit domain.Limit) domain.Verdict {
	inside := e.window.IsDaylightWindow(obs.Time, obs.Station)
	return Check(obs, limit, inside)
}

// Check is Evaluate with the daylight-window answer already known.
func Check(obs domain.Observation, limit domain.Limit, insideWindow bool) domain.Verdict {
	if !Relevant(limit.TimePeriod, insideWindow) {
		return domain.Verdict{}
	}

	if obs.Visibility < limit.MinVisibility {
		return domain.Verdict{
			Relevant: true,
			Violated: true,
			Reason:   fmt.Sprintf("Visibility %dm < %dm", obs.Visibility, limit.MinVisibility),
		}
	}

	// First qualifying layer in report order, not necessarily the lowest.
	for _, c := range obs.Clouds {
		if limit.CloudRule.Counts(c.Type) && c.Height < limit.MaxCloudHeight {
			return domain.Verdict{
				Relevant: true,
				Violated: true,
				Reason:   fmt.Sprintf("Cloud layer %s at %dft < %dft", c.Code(), c.Height, limit.MaxCloudHeight),
			}
		}
	}

	return domain.Verdict{Relevant: true}
}

// EvaluateAll checks obs against every limit, in limit order. The daylight
// window is computed once.
func (e *Evaluator) EvaluateAll(obs domain.Observation, limits []domain.Limit) []domain.LimitVerdict {
	inside := e.window.IsDaylightWindow(obs.Time, obs.Station)
	out := make([]domain.LimitVerdict, 0, len(limits))
	for _, l := range limits {
		out = append(out, domain.LimitVerdict{
			LimitID:   l.ID,
			LimitName: l.Name,
			Verdict:   Check(obs, l, inside),
		})
	}
	return out
}
