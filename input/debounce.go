package input

import "time"

// DefaultDebounce is the minimum interval between two accepted inputs in one direction
const DefaultDebounce = 150 * time.Millisecond

// Debouncer gates re-acceptance per direction by elapsed time only
// A direction held across polls re-triggers once per interval
type Debouncer struct {
	interval time.Duration
	last     [dirCount]time.Time
	accepted [dirCount]bool
}

// NewDebouncer creates a debouncer; non-positive interval selects DefaultDebounce
func NewDebouncer(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Debouncer{interval: interval}
}

// Interval returns the configured minimum interval
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Allow accepts dir when it was never accepted or more than interval elapsed since the
// last acceptance, and records now for that direction only
func (d *Debouncer) Allow(dir Direction, now time.Time) bool {
	if dir >= dirCount {
		return false
	}
	if d.accepted[dir] && now.Sub(d.last[dir]) <= d.interval {
		return false
	}
	d.last[dir] = now
	d.accepted[dir] = true
	return true
}

// Reset forgets all acceptance history
func (d *Debouncer) Reset() {
	d.last = [dirCount]time.Time{}
	d.accepted = [dirCount]bool{}
}
