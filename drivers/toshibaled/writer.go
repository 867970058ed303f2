package toshibaled

import "rgbled-go/errcode"

// Mode selects the write strategy.
type Mode uint8

const (
	ModeDirect Mode = iota
	ModeDeferred
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// ParseMode accepts "direct" or "deferred".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "direct", "":
		return ModeDirect, nil
	case "deferred":
		return ModeDeferred, nil
	}
	return 0, &errcode.E{C: errcode.InvalidParams, Op: "mode", Msg: "unknown mode " + s}
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// writer is one write strategy.
type writer interface {
	// started runs once the handshake has succeeded.
	started(d *Device) error
	setColor(d *Device, v [3]byte) error
}

// directWriter writes from the caller's goroutine under a bounded wait.
type directWriter struct{}

func (directWriter) started(*Device) error { return nil }

func (directWriter) setColor(d *Device, v [3]byte) error {
	seq := d.store(v)
	err := d.bus.Do(d.cfg.WriteTimeout, func() error { return d.writePWM(v) })
	if err == nil {
		d.appliedSeq.Store(seq)
	}
	return err
}

// deferredWriter hands the colour to the Updater and never blocks.
type deferredWriter struct{}

func (deferredWriter) started(d *Device) error {
	if d.registered.CompareAndSwap(false, true) {
		d.cfg.Scheduler.RegisterPeriodic("toshibaled", d.upd.Update)
	}
	return nil
}

func (deferredWriter) setColor(d *Device, v [3]byte) error {
	d.store(v)
	return nil
}
