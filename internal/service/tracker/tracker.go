// Package tracker counts collaborator calls that are currently running.
package tracker

import "sync/atomic"

// Tracker counts running calls using atomics. A nil Tracker ignores
// updates and reports zero.
type Tracker struct {
	running atomic.Int64
}

// Inc increments the running counter.
func (t *Tracker) Inc() {
	if t != nil {
		t.running.Add(1)
	}
}

// Dec decrements the running counter.
func (t *Tracker) Dec() {
	if t != nil {
		t.running.Add(-1)
	}
}

// Track increments the counter and returns the matching decrement:
//
//	defer tr.Track()()
func (t *Tracker) Track() func() {
	t.Inc()
	return t.Dec
}

// Running returns the current running count.
func (t *Tracker) Running() int64 {
	if t == nil {
		return 0
	}
	return t.running.Load()
}
