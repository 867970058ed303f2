package config

// Embedded per-board defaults. A config file only needs the keys it changes.
// Key: board name (Config.Board).

const cfgRaspilot = `
bus: /dev/i2c-1
mode: deferred
off_value: 0
reset_pin: GPIO27
write_timeout: 5ms
update_interval: 100ms
tick: 1ms
log_level: info
`

const cfgLinux = `
bus: /dev/i2c-1
mode: direct
off_value: 0
write_timeout: 5ms
update_interval: 100ms
tick: 1ms
log_level: info
`

const cfgPico = `
bus: i2c0
mode: direct
off_value: 0
write_timeout: 5ms
update_interval: 100ms
tick: 1ms
log_level: info
i2c:
  sda: 4
  scl: 5
  hz: 400000
`

// sim runs against the in-memory bus, with the raspilot wiring.
const cfgSim = `
bus: mem
mode: deferred
off_value: 0
reset_pin: GPIO27
write_timeout: 5ms
update_interval: 100ms
tick: 1ms
log_level: debug
`

var embeddedConfigs = map[string][]byte{
	"raspilot": []byte(cfgRaspilot),
	"linux":    []byte(cfgLinux),
	"pico":     []byte(cfgPico),
	"sim":      []byte(cfgSim),
}
