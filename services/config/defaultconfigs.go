package config

// Embedded per-device configuration, keyed by device name.

const cfgPico = `{
  "board": {"kind": "gpio", "button": 14, "led": 25},
  "gesture": {"long_press_ms": 3000, "behavior": "hold"},
  "led": {"morse_unit_ms": 200, "settle_ms": 1000},
  "actions": {
    "click": "blink fast",
    "long_press": "reboot"
  },
  "boot": "blink medium 2",
  "console": true
}`

const cfgPicoExpander = `{
  "board": {
    "kind": "pcf8574",
    "bus": "i2c0",
    "address": 32,
    "button": 0,
    "led": 1,
    "led_active_low": true
  },
  "gesture": {"long_press_ms": 2000, "behavior": "release"},
  "actions": {
    "double_click": "morse sos",
    "long_press": "reboot"
  },
  "boot": "blink slow 1",
  "console": true
}`

const cfgRPi = `{
  "board": {"kind": "gpio", "button": 17, "led": 27},
  "gesture": {"long_press_ms": 3000, "behavior": "hold"},
  "actions": {
    "click": "blink medium",
    "long_press": "morse ok"
  },
  "boot": "blink fast 3"
}`

const cfgSim = `{
  "board": {"kind": "gpio", "button": 0, "led": 1},
  "gesture": {"long_press_ms": 1500, "behavior": "hold"},
  "led": {"morse_unit_ms": 120, "settle_ms": 300},
  "actions": {
    "click": "blink fast 3",
    "long_press": "reboot"
  },
  "boot": "morse hi"
}`

var embeddedConfigs = map[string][]byte{
	"pico":          []byte(cfgPico),
	"pico-expander": []byte(cfgPicoExpander),
	"rpi":           []byte(cfgRPi),
	"sim":           []byte(cfgSim),
}
