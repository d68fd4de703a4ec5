package flow

import (
	"fmt"
	"math"
)

// Clock is the simulated time accumulator. It only moves forward, by the
// frame delta the host hands to Scheduler.Tick.
type Clock struct {
	now float64
}

func (c *Clock) Now() float64 { return c.now }

// Advance adds delta to the clock. A negative or NaN delta is a caller bug.
func (c *Clock) Advance(delta float64) {
	if delta < 0 || math.IsNaN(delta) {
		panic(fmt.Sprintf("flow: invalid clock delta %v", delta))
	}
	c.now += delta
}
