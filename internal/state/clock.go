package state

import "sync/atomic"

// Clock is a Lamport clock shared by the local board and the peers it
// hears from.
type Clock struct {
	counter atomic.Uint64
}

// Tick advances the clock for a local event and returns the new time.
func (c *Clock) Tick() uint64 {
	return c.counter.Add(1)
}

// Update moves the clock forward to a remote timestamp.
func (c *Clock) Update(ts uint64) {
	for {
		cur := c.counter.Load()
		if ts <= cur || c.counter.CompareAndSwap(cur, ts) {
			return
		}
	}
}

// Now returns the current time without advancing it.
func (c *Clock) Now() uint64 {
	return c.counter.Load()
}
