package i2cbus

import (
	"log/slog"
	"sync/atomic"

	"rgbled-go/errcode"

	"tinygo.org/x/drivers"
)

// MaxBurst bounds a single register burst so the write frame fits a fixed
// buffer.
const MaxBurst = 16

// Transport performs register writes on the physical bus.
// A nil error is the equivalent of a zero transport status.
type Transport interface {
	WriteRegister(addr uint16, reg, val byte) error
	WriteRegisters(addr uint16, start byte, data []byte) error
	// IgnoreErrors toggles diagnostic reporting of failed transactions.
	IgnoreErrors(on bool)
}

// Stats are cumulative transaction counters.
type Stats struct {
	Tx         uint32 // transactions attempted
	Errors     uint32 // failures reported to diagnostics
	Suppressed uint32 // failures while reporting was muted
}

// Bus adapts a tinygo drivers.I2C (also satisfied by periph.io i2c.Bus) to
// Transport and keeps the bus error diagnostics.
type Bus struct {
	i2c drivers.I2C
	log *slog.Logger

	ignore     atomic.Bool
	tx         atomic.Uint32
	errs       atomic.Uint32
	suppressed atomic.Uint32
}

var _ Transport = (*Bus)(nil)

func NewBus(i2c drivers.I2C, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{i2c: i2c, log: logger}
}

func (b *Bus) WriteRegister(addr uint16, reg, val byte) error {
	w := [2]byte{reg, val}
	return b.write(addr, reg, w[:])
}

func (b *Bus) WriteRegisters(addr uint16, start byte, data []byte) error {
	if len(data) == 0 || len(data) > MaxBurst {
		return &errcode.E{C: errcode.InvalidParams, Op: "i2c burst", Msg: "length out of range"}
	}
	var w [1 + MaxBurst]byte
	w[0] = start
	n := copy(w[1:], data)
	return b.write(addr, start, w[:1+n])
}

func (b *Bus) IgnoreErrors(on bool) { b.ignore.Store(on) }

func (b *Bus) Stats() Stats {
	return Stats{
		Tx:         b.tx.Load(),
		Errors:     b.errs.Load(),
		Suppressed: b.suppressed.Load(),
	}
}

func (b *Bus) write(addr uint16, reg byte, w []byte) error {
	b.tx.Add(1)
	err := b.i2c.Tx(addr, w, nil)
	if err == nil {
		return nil
	}
	if b.ignore.Load() {
		b.suppressed.Add(1)
	} else {
		b.errs.Add(1)
		b.log.Warn("i2c write failed",
			"addr", addr,
			"reg", reg,
			"len", len(w)-1,
			"err", err)
	}
	return &errcode.E{C: errcode.MapDriverErr(err), Op: "i2c write", Err: err}
}
