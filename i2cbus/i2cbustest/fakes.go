// Package i2cbustest holds in-memory transports and mutexes for tests.
package i2cbustest

import (
	"errors"
	"sync"
	"time"
)

// ErrNack is the failure injected by Transport.
var ErrNack = errors.New("i2c: nack")

// Write is one recorded transport call.
type Write struct {
	Addr  uint16
	Reg   byte
	Data  []byte
	Quiet bool // error reporting was muted when the write happened
}

// Transport records writes and fails the calls selected by FailAt/FailAll.
type Transport struct {
	mu     sync.Mutex
	writes []Write
	ignore bool
	calls  int

	// FailAt holds 1-based call numbers that fail with ErrNack.
	FailAt map[int]bool
	// FailAll fails every call.
	FailAll bool
	// OnWrite, when set, runs after each recorded write (outside the lock).
	OnWrite func(Write)
}

func (t *Transport) WriteRegister(addr uint16, reg, val byte) error {
	return t.record(addr, reg, []byte{val})
}

func (t *Transport) WriteRegisters(addr uint16, start byte, data []byte) error {
	return t.record(addr, start, data)
}

func (t *Transport) IgnoreErrors(on bool) {
	t.mu.Lock()
	t.ignore = on
	t.mu.Unlock()
}

func (t *Transport) Ignoring() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ignore
}

func (t *Transport) Writes() []Write {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Write(nil), t.writes...)
}

func (t *Transport) record(addr uint16, reg byte, data []byte) error {
	t.mu.Lock()
	t.calls++
	w := Write{Addr: addr, Reg: reg, Data: append([]byte(nil), data...), Quiet: t.ignore}
	t.writes = append(t.writes, w)
	fail := t.FailAll || t.FailAt[t.calls]
	hook := t.OnWrite
	t.mu.Unlock()
	if hook != nil {
		hook(w)
	}
	if fail {
		return ErrNack
	}
	return nil
}

// Mutex is a non-blocking bus mutex that counts takes and gives.
// While Contended is set every Take fails.
type Mutex struct {
	mu        sync.Mutex
	held      bool
	takes     int
	gives     int
	waits     []time.Duration
	Contended bool
}

func (m *Mutex) Take(timeout time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits = append(m.waits, timeout)
	if m.Contended || m.held {
		return false
	}
	m.held = true
	m.takes++
	return true
}

func (m *Mutex) Give() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held {
		panic("i2cbustest: give without take")
	}
	m.held = false
	m.gives++
}

func (m *Mutex) SetContended(on bool) {
	m.mu.Lock()
	m.Contended = on
	m.mu.Unlock()
}

// Counts returns successful takes and gives.
func (m *Mutex) Counts() (takes, gives int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.takes, m.gives
}

func (m *Mutex) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Waits returns the timeout passed to every Take, in order.
func (m *Mutex) Waits() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.waits...)
}
