package domain

import (
	"fmt"
	"time"
)

// CloudType is a METAR sky coverage code.
type CloudType string

const (
	CloudFew       CloudType = "FEW"
	CloudScattered CloudType = "SCT"
	CloudBroken    CloudType = "BKN"
	CloudOvercast  CloudType = "OVC"
)

// Rank orders coverage from FEW (1) to OVC (4). Unknown codes rank 0.
func (c CloudType) Rank() int {
	switch c {
	case CloudFew:
		return 1
	case CloudScattered:
		return 2
	case CloudBroken:
		return 3
	case CloudOvercast:
		return 4
	default:
		return 0
	}
}

// CloudLayer is a single reported cloud group.
type CloudLayer struct {
	Type   CloudType `json:"type"`
	Height int       `json:"height"` // feet AGL, multiple of 100
}

// Code renders the layer the way it appears in a report, e.g. "BKN008".
func (l CloudLayer) Code() string {
	return fmt.Sprintf("%s%03d", l.Type, l.Height/100)
}

// UnrestrictedVisibility is the visibility stored for "9999" and CAVOK.
const UnrestrictedVisibility = 9999

// Observation is one parsed METAR line.
type Observation struct {
	Station    string       `json:"station"`
	Time       time.Time    `json:"observed_at"`
	Visibility int          `json:"visibility"` // meters, 9999 = 10 km or more
	Clouds     []CloudLayer `json:"clouds"`
	Raw        string       `json:"raw"`
}
