package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLimit is returned by Limit.Validate.
var ErrInvalidLimit = errors.New("invalid limit")

// CloudRule selects which cloud coverages count against the ceiling.
type CloudRule string

const (
	// CloudRuleStrict counts SCT, BKN and OVC layers.
	CloudRuleStrict CloudRule = "strict"
	// CloudRuleFewOK counts only BKN and OVC layers.
	CloudRuleFewOK CloudRule = "few-ok"
)

// Counts reports whether a layer of the given coverage is significant under the rule.
func (r CloudRule) Counts(t CloudType) bool {
	switch t {
	case CloudBroken, CloudOvercast:
		return true
	case CloudScattered:
		return r == CloudRuleStrict
	default:
		return false
	}
}

// TimePeriod restricts when a limit is evaluated.
type TimePeriod string

const (
	PeriodUDP        TimePeriod = "udp"
	PeriodOutsideUDP TimePeriod = "outside-udp"
	PeriodAlways     TimePeriod = "24/7"
)

// Limit is a user-configured weather minimum.
type Limit struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	MinVisibility  int        `json:"min_visibility" yaml:"min_visibility"`     // meters
	CloudRule      CloudRule  `json:"cloud_rule" yaml:"cloud_rule"`             // strict | few-ok
	MaxCloudHeight int        `json:"max_cloud_height" yaml:"max_cloud_height"` // feet
	TimePeriod     TimePeriod `json:"time_period" yaml:"time_period"`           // udp | outside-udp | 24/7
}

// WithDefaults fills an unset cloud rule with strict and an unset time
// period with udp.
func (l Limit) WithDefaults() Limit {
	if l.CloudRule == "" {
		l.CloudRule = CloudRuleStrict
	}
	if l.TimePeriod == "" {
		l.TimePeriod = PeriodUDP
	}
	return l
}

// Validate checks the limit for application-layer use. The evaluator never
// calls it; owners validate before handing limits to the pipeline.
func (l Limit) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLimit)
	}
	if l.MinVisibility < 0 {
		return fmt.Errorf("%w: min_visibility must not be negative", ErrInvalidLimit)
	}
	if l.MaxCloudHeight < 0 {
		return fmt.Errorf("%w: max_cloud_height must not be negative", ErrInvalidLimit)
	}
	switch l.CloudRule {
	case CloudRuleStrict, CloudRuleFewOK:
	default:
		return fmt.Errorf("%w: unknown cloud_rule %q", ErrInvalidLimit, l.CloudRule)
	}
	switch l.TimePeriod {
	case PeriodUDP, PeriodOutsideUDP, PeriodAlways:
	default:
		return fmt.Errorf("%w: unknown time_period %q", ErrInvalidLimit, l.TimePeriod)
	}
	return nil
}
