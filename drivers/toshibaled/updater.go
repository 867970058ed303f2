package toshibaled

import (
	"sync/atomic"

	"rgbled-go/x/timex"
)

// State of the Updater.
type State uint32

const (
	Idle State = iota
	Writing
)

func (s State) String() string {
	if s == Writing {
		return "writing"
	}
	return "idle"
}

// UpdaterStats counts what each Update call did.
type UpdaterStats struct {
	Ticks     uint32 // Update calls
	Throttled uint32 // returned early: interval not yet elapsed
	Busy      uint32 // skipped: bus not free within WriteTimeout
	Writes    uint32 // successful bursts
	Errors    uint32 // failed bursts
}

// Updater pushes the pending colour to the chip. It is driven by a periodic
// scheduler and never writes more often than Config.UpdateInterval. A cycle
// that finds the bus busy is dropped; the next one writes whatever colour is
// pending by then.
type Updater struct {
	d        *Device
	clock    timex.Clock
	interval uint64 // µs

	// last is the µs timestamp of the last attempted cycle. Only Update
	// touches it.
	last  uint64
	state atomic.Uint32

	ticks, throttled, busy, writes, errs atomic.Uint32
}

func newUpdater(d *Device, clock timex.Clock) *Updater {
	return &Updater{
		d:        d,
		clock:    clock,
		interval: timex.Micros(d.cfg.UpdateInterval),
	}
}

// Update runs one scheduler cycle. Not safe for concurrent use; the
// scheduler calls it from a single task.
func (u *Updater) Update() {
	u.ticks.Add(1)
	now := u.clock.NowMicros()
	if now-u.last < u.interval {
		u.throttled.Add(1)
		return
	}
	u.last = now

	seq := u.d.reqSeq.Load()
	v := u.d.Pending()

	entered := false
	err := u.d.bus.Do(u.d.cfg.WriteTimeout, func() error {
		entered = true
		u.state.Store(uint32(Writing))
		defer u.state.Store(uint32(Idle))
		return u.d.writePWM(v)
	})
	switch {
	case !entered:
		u.busy.Add(1)
	case err != nil:
		u.errs.Add(1)
		u.d.log.Debug("led update failed", "err", err)
	default:
		u.writes.Add(1)
		u.d.appliedSeq.Store(seq)
	}
}

func (u *Updater) State() State { return State(u.state.Load()) }

func (u *Updater) Stats() UpdaterStats {
	return UpdaterStats{
		Ticks:     u.ticks.Load(),
		Throttled: u.throttled.Load(),
		Busy:      u.busy.Load(),
		Writes:    u.writes.Load(),
		Errors:    u.errs.Load(),
	}
}
