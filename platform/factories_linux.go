//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"errors"

	"rgbled-go/config"
	"rgbled-go/errcode"

	"github.com/warthog618/gpiod"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func open(b Board, cfg config.Config) (*Resources, error) {
	if b.Kind != KindLinux {
		return nil, unsupported(b)
	}
	if _, err := host.Init(); err != nil {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "platform host init", Err: err}
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform", Msg: cfg.Bus, Err: err}
	}
	r := &Resources{Board: b, I2C: bus}
	r.closers = append(r.closers, bus.Close)

	if cfg.ResetPin == "" {
		return r, nil
	}
	if chip, offset, ok := ChipLine(cfg.ResetPin); ok {
		p, err := openLine(chip, offset)
		if err != nil {
			_ = r.Close()
			return nil, &errcode.E{C: errcode.UnknownPin, Op: "platform", Msg: cfg.ResetPin, Err: err}
		}
		r.ResetPin = p
		r.closers = append(r.closers, p.close)
		return r, nil
	}
	p := gpioreg.ByName(cfg.ResetPin)
	if p == nil {
		_ = r.Close()
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "platform", Msg: cfg.ResetPin}
	}
	r.ResetPin = periphPin{p}
	return r, nil
}

// periphPin adapts a periph GPIO to toshibaled.Pin.
type periphPin struct{ p gpio.PinIO }

func (p periphPin) ConfigureOutput(initial bool) error { return p.p.Out(level(initial)) }

func level(v bool) gpio.Level {
	if v {
		return gpio.High
	}
	return gpio.Low
}

// linePin drives a GPIO character-device line. The line is held as an input
// until ConfigureOutput.
type linePin struct {
	chip *gpiod.Chip
	line *gpiod.Line
}

func openLine(chip string, offset int) (*linePin, error) {
	c, err := gpiod.NewChip(chip)
	if err != nil {
		return nil, err
	}
	l, err := c.RequestLine(offset, gpiod.AsInput)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return &linePin{chip: c, line: l}, nil
}

func (p *linePin) ConfigureOutput(initial bool) error {
	return p.line.Reconfigure(gpiod.AsOutput(bit(initial)))
}

func (p *linePin) close() error {
	return errors.Join(p.line.Close(), p.chip.Close())
}

func bit(v bool) int {
	if v {
		return 1
	}
	return 0
}
