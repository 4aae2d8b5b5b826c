// Package clock supplies the T-state tick sources the engine runs against:
// a free-running clock for as-fast-as-possible emulation, a pattern clock
// for deterministic replay, and a stopwatch-paced clock for pseudo real-time
// operation at a chosen frequency.
package clock

import (
	"sync/atomic"
	"time"
)

// Fast ticks as fast as the engine loop runs and only keeps count. Rate
// reports the nominal frequency the host claims to emulate.
type Fast struct {
	ticks atomic.Uint64
	mhz   float64
}

// NewFast returns a free-running clock with the given nominal MHz.
func NewFast(mhz float64) *Fast {
	return &Fast{mhz: mhz}
}

func (c *Fast) WaitForNextTick() { c.ticks.Add(1) }
func (c *Fast) Ticks() uint64    { return c.ticks.Load() }
func (c *Fast) Rate() float64    { return c.mhz }

// Pattern sleeps a fixed, cycling pattern of durations, one entry per tick.
// With a pattern of zero durations it behaves like Fast but stays fully
// deterministic for replay tests.
type Pattern struct {
	ticks   atomic.Uint64
	mhz     float64
	pattern []time.Duration
	next    int
}

// NewPattern returns a pattern clock. An empty pattern means no delay.
func NewPattern(mhz float64, pattern []time.Duration) *Pattern {
	return &Pattern{mhz: mhz, pattern: pattern}
}

func (c *Pattern) WaitForNextTick() {
	if len(c.pattern) > 0 {
		if d := c.pattern[c.next]; d > 0 {
			time.Sleep(d)
		}
		c.next = (c.next + 1) % len(c.pattern)
	}
	c.ticks.Add(1)
}

func (c *Pattern) Ticks() uint64 { return c.ticks.Load() }
func (c *Pattern) Rate() float64 { return c.mhz }

// RealTime busy-waits against a monotonic stopwatch so emulated T-states
// track wall time at the configured frequency. The busy wait is deliberate:
// one T-state at 4 MHz is 250ns, far below timer sleep resolution.
type RealTime struct {
	ticks  atomic.Uint64
	mhz    float64
	period time.Duration
	start  time.Time
}

// NewRealTime returns a stopwatch-paced clock at the given MHz.
func NewRealTime(mhz float64) *RealTime {
	return &RealTime{
		mhz:    mhz,
		period: time.Duration(float64(time.Second) / (mhz * 1e6)),
		start:  time.Now(),
	}
}

func (c *RealTime) WaitForNextTick() {
	deadline := c.start.Add(time.Duration(c.ticks.Load()+1) * c.period)
	for time.Now().Before(deadline) {
		// spin
	}
	c.ticks.Add(1)
}

func (c *RealTime) Ticks() uint64 { return c.ticks.Load() }
func (c *RealTime) Rate() float64 { return c.mhz }
