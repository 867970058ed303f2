package platform

import (
	"errors"
	"sync"

	"rgbled-go/config"
	"rgbled-go/drivers/toshibaled"
)

// ErrNoDevice is returned by MemI2C for addresses with no device attached.
var ErrNoDevice = errors.New("platform: no device at address")

// MemI2C is an in-memory I2C bus. Attached devices are 256-byte register
// files; a write transaction stores w[1:] starting at register w[0].
type MemI2C struct {
	mu   sync.Mutex
	regs map[uint16]*[256]byte
	tx   int
}

// NewMemI2C returns a bus with a register file at each of addrs.
func NewMemI2C(addrs ...uint16) *MemI2C {
	m := &MemI2C{regs: make(map[uint16]*[256]byte)}
	for _, a := range addrs {
		m.regs[a] = new([256]byte)
	}
	return m
}

func (m *MemI2C) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.regs[addr]
	if !ok {
		return ErrNoDevice
	}
	m.tx++
	if len(w) == 0 {
		return nil
	}
	reg := w[0]
	for i, b := range w[1:] {
		file[reg+byte(i)] = b
	}
	for i := range r {
		r[i] = file[reg+byte(len(w)-1+i)]
	}
	return nil
}

// Registers returns a copy of regs [start, start+n) for addr.
func (m *MemI2C) Registers(addr uint16, start byte, n int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.regs[addr]
	if !ok {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = file[start+byte(i)]
	}
	return out
}

// Transactions counts successful transactions.
func (m *MemI2C) Transactions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx
}

var _ toshibaled.Pin = (*MemPin)(nil)

// MemPin is an in-memory output pin.
type MemPin struct {
	mu     sync.Mutex
	Name   string
	output bool
	level  bool
}

func (p *MemPin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.output, p.level = true, initial
	p.mu.Unlock()
	return nil
}

// State reports whether the pin is an output and its level.
func (p *MemPin) State() (output, level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output, p.level
}

// SimAddresses are the devices present on the sim board's bus.
var SimAddresses = []uint16{0x55}

func openSim(b Board, cfg config.Config) *Resources {
	r := &Resources{Board: b, I2C: NewMemI2C(SimAddresses...)}
	if cfg.ResetPin != "" {
		r.ResetPin = &MemPin{Name: cfg.ResetPin}
	}
	return r
}
