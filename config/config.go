// Package config resolves the LED settings for a board: embedded defaults
// first, then an optional YAML file on top.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"rgbled-go/drivers/toshibaled"
	"rgbled-go/errcode"
	"rgbled-go/x/mathx"

	"gopkg.in/yaml.v3"
)

const DefaultBoard = "raspilot"

// I2C bus frequency bounds accepted for MCU boards.
const (
	MinI2CHz = 10_000
	MaxI2CHz = 1_000_000
)

// Config is the full set of LED settings.
type Config struct {
	Board          string          `yaml:"board"`
	Bus            string          `yaml:"bus"`
	Mode           toshibaled.Mode `yaml:"mode"`
	OffValue       uint8           `yaml:"off_value"`
	ResetPin       string          `yaml:"reset_pin"`
	WriteTimeout   time.Duration   `yaml:"write_timeout"`
	UpdateInterval time.Duration   `yaml:"update_interval"`
	Tick           time.Duration   `yaml:"tick"`
	LogLevel       slog.Level      `yaml:"log_level"`
	I2C            I2C             `yaml:"i2c"`
}

// I2C holds MCU pin wiring. Ignored on Linux boards.
type I2C struct {
	SDA int    `yaml:"sda"`
	SCL int    `yaml:"scl"`
	Hz  uint32 `yaml:"hz"`
}

// EmbeddedConfigLookup allows overriding how board defaults are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Boards lists the boards with embedded defaults, sorted.
func Boards() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Defaults returns the embedded settings for board.
func Defaults(board string) (Config, error) {
	if board == "" {
		board = DefaultBoard
	}
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return Config{}, &errcode.E{C: errcode.UnknownBoard, Op: "config", Msg: "no embedded config for board " + board}
	}
	var c Config
	if err := decode(raw, &c); err != nil {
		return Config{}, &errcode.E{C: errcode.InvalidParams, Op: "config " + board, Err: err}
	}
	c.Board = board
	return c, c.Validate()
}

// Load reads the YAML file at path over the defaults of the selected board.
// board, when non-empty, wins over the file's board key. An empty path or a
// missing file yields the board defaults.
func Load(path, board string) (Config, error) {
	var raw []byte
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			raw = b
		}
	}
	return Parse(raw, board)
}

// Parse is Load for in-memory YAML.
func Parse(raw []byte, board string) (Config, error) {
	if board == "" && len(raw) > 0 {
		var head struct {
			Board string `yaml:"board"`
		}
		if err := yaml.Unmarshal(raw, &head); err != nil {
			return Config{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Err: err}
		}
		board = head.Board
	}
	c, err := Defaults(board)
	if err != nil {
		return Config{}, err
	}
	if len(raw) > 0 {
		resolved := c.Board
		if err := decode(raw, &c); err != nil {
			return Config{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Err: err}
		}
		c.Board = resolved
	}
	if c.I2C.Hz != 0 {
		c.I2C.Hz = mathx.Clamp(c.I2C.Hz, MinI2CHz, MaxI2CHz)
	}
	return c, c.Validate()
}

// decode is yaml.Unmarshal that rejects unknown keys. A document with no
// content leaves c untouched.
func decode(raw []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects settings the driver cannot run with.
func (c Config) Validate() error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: msg}
	}
	switch {
	case c.Mode != toshibaled.ModeDirect && c.Mode != toshibaled.ModeDeferred:
		return bad("unknown mode " + c.Mode.String())
	case c.WriteTimeout <= 0:
		return bad("write_timeout must be positive")
	case c.UpdateInterval < toshibaled.MinUpdateInterval:
		return bad("update_interval below " + toshibaled.MinUpdateInterval.String())
	case c.Tick <= 0:
		return bad("tick must be positive")
	case c.Tick > c.UpdateInterval:
		return bad("tick longer than update_interval")
	}
	return nil
}
