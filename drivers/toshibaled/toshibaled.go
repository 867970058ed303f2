// Package toshibaled drives the Toshiba TCA62724 RGB LED controller found on
// autopilot boards. The chip sits on a shared I2C bus at a fixed address and
// takes 4-bit brightness per channel.
//
// Two write strategies are available:
//
//	ModeDirect    SetColor takes the bus (bounded wait) and writes at once.
//	ModeDeferred  SetColor only records the colour; an Updater run by a
//	              periodic scheduler writes it at most every UpdateInterval.
//
// All bus access goes through a Bus (normally *i2cbus.Guard) shared with the
// other devices on the same bus.
package toshibaled

import (
	"log/slog"
	"sync/atomic"
	"time"

	"rgbled-go/errcode"
	"rgbled-go/x/mathx"
	"rgbled-go/x/timex"
)

// Controller is the capability exposed to callers regardless of Mode.
type Controller interface {
	Initialize() error
	SetColor(red, green, blue uint8) error
}

// Bus is the guarded register access the driver needs.
type Bus interface {
	Do(wait time.Duration, fn func() error) error
	DoQuiet(fn func() error) error
	WriteBurst(addr uint16, start byte, data []byte) error
	WriteRegister(addr uint16, reg, val byte) error
}

// Pin is a digital output. Used only to hold the chip out of reset:
// ConfigureOutput(true) switches it to output mode and drives it high.
type Pin interface {
	ConfigureOutput(initial bool) error
}

// Scheduler runs fn repeatedly from a background task.
type Scheduler interface {
	RegisterPeriodic(name string, fn func())
}

// Defaults.
const (
	DefaultWriteTimeout   = 5 * time.Millisecond
	DefaultUpdateInterval = 100 * time.Millisecond
	// MinUpdateInterval is the floor for UpdateInterval; shorter values are raised to it.
	MinUpdateInterval = 100 * time.Millisecond
)

// Config holds the driver dependencies and operating parameters.
type Config struct {
	Mode Mode
	// OffValue is written to every channel during Initialize.
	OffValue byte
	// WriteTimeout bounds every runtime bus acquisition.
	WriteTimeout time.Duration
	// UpdateInterval is the minimum spacing of deferred writes. Never below
	// MinUpdateInterval.
	UpdateInterval time.Duration

	// ResetPin, when set, is driven high before the handshake.
	ResetPin Pin
	// Scheduler is required in ModeDeferred.
	Scheduler Scheduler
	// Clock defaults to a monotonic clock started by New.
	Clock  timex.Clock
	Logger *slog.Logger
}

// Device is one TCA62724 on a shared bus.
type Device struct {
	bus Bus
	cfg Config
	log *slog.Logger
	w   writer
	upd *Updater

	// Latest requested colour, packed in burst order. Shared with the
	// updater without the bus mutex: last writer wins.
	pending    atomic.Uint32
	reqSeq     atomic.Uint32
	appliedSeq atomic.Uint32
	registered atomic.Bool
}

var _ Controller = (*Device)(nil)

// New builds a Device. It does not touch the bus; call Initialize.
func New(bus Bus, cfg Config) (*Device, error) {
	if bus == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "toshibaled.New", Msg: "nil bus"}
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	cfg.UpdateInterval = mathx.Max(cfg.UpdateInterval, MinUpdateInterval)
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	d := &Device{bus: bus, cfg: cfg, log: cfg.Logger}

	switch cfg.Mode {
	case ModeDirect:
		d.w = directWriter{}
	case ModeDeferred:
		if cfg.Scheduler == nil {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "toshibaled.New", Msg: "deferred mode needs a scheduler"}
		}
		if d.cfg.Clock == nil {
			d.cfg.Clock = timex.NewMonotonic()
		}
		d.upd = newUpdater(d, d.cfg.Clock)
		d.w = deferredWriter{}
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "toshibaled.New", Msg: "unknown mode " + cfg.Mode.String()}
	}
	return d, nil
}

// Initialize releases the chip from reset (when a reset pin is configured),
// powers it on and blanks all channels. The handshake waits for the bus
// without a deadline and does not report transient bus errors. Both writes
// are always attempted; the first failure is returned.
//
// In ModeDeferred a successful handshake also registers the Updater with the
// scheduler.
func (d *Device) Initialize() error {
	if p := d.cfg.ResetPin; p != nil {
		if err := p.ConfigureOutput(true); err != nil {
			return &errcode.E{C: errcode.UnknownPin, Op: "toshibaled reset", Err: err}
		}
	}

	off := [3]byte{d.cfg.OffValue, d.cfg.OffValue, d.cfg.OffValue}
	err := d.bus.DoQuiet(func() error {
		errEnable := d.bus.WriteRegister(Address, regEnable, enableOn)
		errPWM := d.bus.WriteBurst(Address, regPWM0, off[:])
		if errEnable != nil {
			return errEnable
		}
		return errPWM
	})
	if err != nil {
		d.log.Debug("led handshake failed", "err", err)
		return err
	}

	if err := d.w.started(d); err != nil {
		return err
	}
	d.log.Info("led initialised", "mode", d.cfg.Mode, "addr", Address)
	return nil
}

// SetColor requests a colour. Each channel keeps its top four bits.
//
// ModeDirect returns errcode.Busy without touching the bus when the bus is
// not free within WriteTimeout, or the write error. ModeDeferred always
// succeeds; see Applied.
func (d *Device) SetColor(red, green, blue uint8) error {
	return d.w.setColor(d, Scale(red, green, blue))
}

// Pending returns the latest requested colour, scaled, in burst order.
func (d *Device) Pending() [3]byte { return unpack(d.pending.Load()) }

// Applied reports whether the latest requested colour has been written.
func (d *Device) Applied() bool { return d.appliedSeq.Load() == d.reqSeq.Load() }

func (d *Device) Mode() Mode { return d.cfg.Mode }

// Updater returns the deferred-write task, or nil in ModeDirect.
func (d *Device) Updater() *Updater { return d.upd }

func (d *Device) store(v [3]byte) uint32 {
	d.pending.Store(pack(v))
	return d.reqSeq.Add(1)
}

func (d *Device) writePWM(v [3]byte) error {
	return d.bus.WriteBurst(Address, regPWM0, v[:])
}
