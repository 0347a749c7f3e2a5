package pipeline

import "time"

// SetBackoff shortens retry delays in tests.
func (p *Pipeline) SetBackoff(initial, maxBackoff time.Duration) {
	p.initialBackoff = initial
	p.maxBackoff = maxBackoff
}

const MaxLoadAttempts = maxLoadAttempts
