package platform

import (
	"errors"
	"testing"

	"rgbled-go/config"
	"rgbled-go/drivers/toshibaled"
	"rgbled-go/errcode"
	"rgbled-go/i2cbus"

	"github.com/google/go-cmp/cmp"
	"github.com/neilotoole/slogt"
)

func TestBoardsMatchConfigDefaults(t *testing.T) {
	for _, name := range config.Boards() {
		b, err := Lookup(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		c, err := config.Defaults(name)
		if err != nil {
			t.Fatal(err)
		}
		if (c.ResetPin != "") != b.ResetPin {
			t.Errorf("%s: reset pin configured=%v, wired=%v", name, c.ResetPin != "", b.ResetPin)
		}
	}
	if _, err := Lookup("toaster"); errcode.Of(err) != errcode.UnknownBoard {
		t.Fatalf("want unknown_board, got %v", err)
	}
}

func TestMemI2C(t *testing.T) {
	m := NewMemI2C(0x55)
	if err := m.Tx(0x55, []byte{0x01, 1, 8, 15}, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{1, 8, 15}, m.Registers(0x55, 0x01, 3)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	r := make([]byte, 2)
	if err := m.Tx(0x55, []byte{0x02}, r); err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(r, []byte{8, 15}) {
		t.Fatalf("read back %v", r)
	}
	if err := m.Tx(0x20, []byte{0}, nil); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("want ErrNoDevice, got %v", err)
	}
	if m.Transactions() != 2 {
		t.Fatalf("transactions = %d", m.Transactions())
	}
}

func TestOpenSimDrivesLED(t *testing.T) {
	cfg, err := config.Defaults("sim")
	if err != nil {
		t.Fatal(err)
	}
	res, err := Open(cfg, slogt.New(t))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	g := i2cbus.NewGuard(i2cbus.NewBus(res.I2C, nil), i2cbus.NewSemaphore())
	d, err := toshibaled.New(g, toshibaled.Config{ResetPin: res.ResetPin})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := d.SetColor(255, 128, 16); err != nil {
		t.Fatal(err)
	}

	mem := res.I2C.(*MemI2C)
	if diff := cmp.Diff([]byte{1, 8, 15, 0x03}, mem.Registers(toshibaled.Address, 0x01, 4)); diff != "" {
		t.Fatalf("registers (-want +got):\n%s", diff)
	}
	out, level := res.ResetPin.(*MemPin).State()
	if !out || !level {
		t.Fatal("reset pin not driven high")
	}
}

func TestChipLine(t *testing.T) {
	tests := []struct {
		in     string
		chip   string
		offset int
		ok     bool
	}{
		{"gpiochip0:27", "gpiochip0", 27, true},
		{"gpiochip4:0", "gpiochip4", 0, true},
		{"GPIO27", "", 0, false},
		{"gpiochip0:", "", 0, false},
		{"gpiochip0:-1", "", 0, false},
		{"spi0:3", "", 0, false},
	}
	for _, tc := range tests {
		chip, off, ok := ChipLine(tc.in)
		if chip != tc.chip || off != tc.offset || ok != tc.ok {
			t.Errorf("ChipLine(%q) = %q, %d, %v", tc.in, chip, off, ok)
		}
	}
}
