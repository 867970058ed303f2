package ramp

import (
	"time"

	"rgbled-go/x/mathx"
)

// Step sets the next colour.
type Step func(r, g, b uint8)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear fades from -> to in steps equal-time steps, calling set once per
// step. It is synchronous: the caller's Tick handles timing and cancellation.
// steps==0 or d==0 snaps to 'to'. The final call always sets 'to' unless
// cancelled.
func Linear(from, to [3]uint8, d time.Duration, steps uint16, tick Tick, set Step) {
	if steps == 0 || d <= 0 {
		set(to[0], to[1], to[2])
		return
	}
	stepDur := mathx.Max(d/time.Duration(steps), time.Millisecond)

	for i := uint16(1); i < steps; i++ {
		if !tick(stepDur) {
			return
		}
		var c [3]uint8
		for ch := range c {
			delta := int32(to[ch]) - int32(from[ch])
			v := int32(from[ch]) + delta*int32(i)/int32(steps)
			c[ch] = uint8(mathx.Clamp(v, 0, 255))
		}
		set(c[0], c[1], c[2])
	}
	if !tick(stepDur) {
		return
	}
	set(to[0], to[1], to[2])
}
