package timex

import "time"

// Clock is a monotonic microsecond source.
type Clock interface {
	NowMicros() uint64
}

// Monotonic counts microseconds from its construction using the runtime's
// monotonic clock reading, so wall-clock steps do not affect it.
type Monotonic struct {
	epoch time.Time
}

func NewMonotonic() *Monotonic { return &Monotonic{epoch: time.Now()} }

func (m *Monotonic) NowMicros() uint64 {
	return uint64(time.Since(m.epoch) / time.Microsecond)
}

// Micros converts a duration to whole microseconds; negatives become 0.
func Micros(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Microsecond)
}

// ResetTimer safely stops, drains, and resets a timer.
func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(d)
}

func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
