// Package i2cbus provides exclusive, guarded register writes on an I2C bus
// shared by several devices.
//
// Every device on a bus shares one Guard. A write sequence looks like:
//
//	err := g.Do(5*time.Millisecond, func() error {
//		return g.WriteBurst(addr, reg, buf)
//	})
//
// Do and DoQuiet release the bus on every exit path. Acquire and Release are
// exported for callers that need to split the two, and must be paired.
package i2cbus

import (
	"sync/atomic"
	"time"

	"rgbled-go/errcode"
)

type Guard struct {
	mu Mutex
	tr Transport
	// held says the bus is owned by some user of this guard, not which one.
	held atomic.Bool
}

func NewGuard(tr Transport, mu Mutex) *Guard {
	return &Guard{mu: mu, tr: tr}
}

// Acquire takes the bus, waiting at most wait (Forever blocks).
// It returns errcode.Busy when ownership was not granted. No retries.
func (g *Guard) Acquire(wait time.Duration) error {
	if !g.mu.Take(wait) {
		return errcode.Busy
	}
	g.held.Store(true)
	return nil
}

// Release gives the bus back. Call exactly once per successful Acquire.
func (g *Guard) Release() {
	g.held.Store(false)
	g.mu.Give()
}

// Held reports whether some user currently owns the bus through this guard.
func (g *Guard) Held() bool { return g.held.Load() }

// WriteBurst writes data to consecutive registers starting at start in one
// transaction. The guard must be held by the caller. Only a write while
// nobody holds the bus is caught (errcode.NotHeld); ownership is not tracked
// per caller.
func (g *Guard) WriteBurst(addr uint16, start byte, data []byte) error {
	if !g.held.Load() {
		return errcode.NotHeld
	}
	return ioErr("burst", g.tr.WriteRegisters(addr, start, data))
}

// WriteRegister writes a single register. Same ownership rules as WriteBurst.
func (g *Guard) WriteRegister(addr uint16, reg, val byte) error {
	if !g.held.Load() {
		return errcode.NotHeld
	}
	return ioErr("register", g.tr.WriteRegister(addr, reg, val))
}

// Do runs fn while holding the bus.
func (g *Guard) Do(wait time.Duration, fn func() error) error {
	if err := g.Acquire(wait); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// DoQuiet is the initialisation form of Do: it waits for the bus without a
// deadline and mutes transport error reporting while fn runs. Reporting is
// restored before the bus is released.
func (g *Guard) DoQuiet(fn func() error) error {
	if err := g.Acquire(Forever); err != nil {
		return err
	}
	defer g.Release()

	g.tr.IgnoreErrors(true)
	defer g.tr.IgnoreErrors(false)
	return fn()
}

// ioErr gives uncoded transport errors the io_error code.
func ioErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errcode.Of(err) != errcode.Error {
		return err
	}
	return &errcode.E{C: errcode.IOError, Op: op, Err: err}
}
