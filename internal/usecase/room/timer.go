package room

import "time"

// turnTimer is the per-turn clock. Expiry is delivered to the dispatcher
// tagged with the generation that armed it, so a firing that races a stop
// or a re-arm is recognised as stale and dropped.
type turnTimer struct {
	t        *time.Timer
	gen      uint64
	armed    bool
	deadline time.Time
}

func (t *turnTimer) arm(d time.Duration, now time.Time, fire func(gen uint64)) {
	t.stop()
	t.gen++
	t.armed = true
	t.deadline = now.Add(d)
	gen := t.gen
	t.t = time.AfterFunc(d, func() { fire(gen) })
}

func (t *turnTimer) stop() {
	t.armed = false
	if t.t != nil {
		t.t.Stop()
	}
}

// claim consumes an expiry if it belongs to the running turn.
func (t *turnTimer) claim(gen uint64) bool {
	if !t.armed || gen != t.gen {
		return false
	}
	t.armed = false
	return true
}

// remaining is the time left until the last deadline, even after a stop.
func (t *turnTimer) remaining(now time.Time) time.Duration {
	if t.deadline.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return t.deadline.Sub(now)
}
