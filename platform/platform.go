// Package platform opens the hardware the LED driver needs on each supported
// board: the raw I2C bus and, where wired, the reset pin.
package platform

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"rgbled-go/config"
	"rgbled-go/drivers/toshibaled"
	"rgbled-go/errcode"

	"tinygo.org/x/drivers"
)

// Kind says which factory serves a board.
type Kind uint8

const (
	KindLinux Kind = iota // periph.io host drivers
	KindMCU               // TinyGo machine package
	KindSim               // in-memory bus
)

func (k Kind) String() string {
	switch k {
	case KindLinux:
		return "linux"
	case KindMCU:
		return "mcu"
	case KindSim:
		return "sim"
	}
	return "unknown"
}

// Board describes what the PCB offers. Wiring choices live in config.
type Board struct {
	Name string
	Kind Kind
	// ResetPin is true when the LED controller's reset line is wired to a GPIO.
	ResetPin bool
}

var boards = map[string]Board{
	"raspilot": {Name: "raspilot", Kind: KindLinux, ResetPin: true},
	"linux":    {Name: "linux", Kind: KindLinux},
	"pico":     {Name: "pico", Kind: KindMCU},
	"sim":      {Name: "sim", Kind: KindSim, ResetPin: true},
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Board, error) {
	b, ok := boards[name]
	if !ok {
		return Board{}, &errcode.E{C: errcode.UnknownBoard, Op: "platform", Msg: name}
	}
	return b, nil
}

// Resources are the opened handles. Close releases them.
type Resources struct {
	Board    Board
	I2C      drivers.I2C
	ResetPin toshibaled.Pin // nil when the board has none

	closers []func() error
}

func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Open resolves cfg.Board and opens its bus and reset pin.
func Open(cfg config.Config, log *slog.Logger) (*Resources, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	b, err := Lookup(cfg.Board)
	if err != nil {
		return nil, err
	}
	var r *Resources
	if b.Kind == KindSim {
		r = openSim(b, cfg)
	} else {
		r, err = open(b, cfg)
		if err != nil {
			return nil, err
		}
	}
	if !b.ResetPin && r.ResetPin != nil {
		log.Warn("reset pin configured on a board without one", "board", b.Name, "pin", cfg.ResetPin)
	}
	log.Debug("platform opened", "board", b.Name, "kind", b.Kind, "bus", cfg.Bus, "reset_pin", r.ResetPin != nil)
	return r, nil
}

// ChipLine splits a character-device pin name "gpiochip0:27" into chip and
// line offset. ok is false for any other form, such as "GPIO27".
func ChipLine(name string) (chip string, offset int, ok bool) {
	chip, line, found := strings.Cut(name, ":")
	if !found || !strings.HasPrefix(chip, "gpiochip") {
		return "", 0, false
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return chip, n, true
}

func unsupported(b Board) error {
	return &errcode.E{C: errcode.Unsupported, Op: "platform", Msg: "board " + b.Name + " (" + b.Kind.String() + ") not available in this build"}
}
