//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"strconv"
	"strings"

	"rgbled-go/config"
	"rgbled-go/errcode"
)

func open(b Board, cfg config.Config) (*Resources, error) {
	if b.Kind != KindMCU {
		return nil, unsupported(b)
	}
	var bus *machine.I2C
	switch cfg.Bus {
	case "i2c0", "":
		bus = machine.I2C0
	case "i2c1":
		bus = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform", Msg: cfg.Bus}
	}
	hz := cfg.I2C.Hz
	if hz == 0 {
		hz = 400 * machine.KHz
	}
	err := bus.Configure(machine.I2CConfig{
		Frequency: hz,
		SDA:       machine.Pin(cfg.I2C.SDA),
		SCL:       machine.Pin(cfg.I2C.SCL),
	})
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform i2c configure", Err: err}
	}
	r := &Resources{Board: b, I2C: bus}

	if cfg.ResetPin != "" {
		n, ok := gpioNumber(cfg.ResetPin)
		if !ok {
			return nil, &errcode.E{C: errcode.UnknownPin, Op: "platform", Msg: cfg.ResetPin}
		}
		r.ResetPin = rp2Pin{machine.Pin(n)}
	}
	return r, nil
}

// gpioNumber accepts "GP7", "GPIO7" or "7". RP2 user GPIOs are GP0..GP28.
func gpioNumber(name string) (int, bool) {
	s := strings.TrimPrefix(strings.TrimPrefix(name, "GPIO"), "GP")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 28 {
		return 0, false
	}
	return n, true
}

type rp2Pin struct{ p machine.Pin }

func (r rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}
