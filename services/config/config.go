// Package config resolves the typed device configuration from embedded
// JSON documents.
package config

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"indicator-go/errcode"
)

// Gesture names used as action keys.
const (
	ActionClick       = "click"
	ActionDoubleClick = "double_click"
	ActionLongPress   = "long_press"
)

const (
	DefaultLongPressMs = 3000
	DefaultMorseUnitMs = 200
	DefaultSettleMs    = 1000
	DefaultPollMs      = 20
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Devices lists the embedded device names.
func Devices() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Board struct {
	Kind         string `json:"kind"`
	Button       int    `json:"button"`
	LED          int    `json:"led"`
	Pull         string `json:"pull,omitempty"` // button pull, default "up"
	LEDActiveLow bool   `json:"led_active_low,omitempty"`
	Bus          string `json:"bus,omitempty"`     // pcf8574 only
	Address      uint16 `json:"address,omitempty"` // pcf8574 only
}

type Gesture struct {
	LongPressMs int    `json:"long_press_ms,omitempty"`
	Behavior    string `json:"behavior,omitempty"`
	PollMs      int    `json:"poll_ms,omitempty"`
}

type LED struct {
	MorseUnitMs int  `json:"morse_unit_ms,omitempty"`
	SettleMs    *int `json:"settle_ms,omitempty"`
}

// Device is the complete configuration of one indicator.
type Device struct {
	Name    string            `json:"-"`
	Board   Board             `json:"board"`
	Gesture Gesture           `json:"gesture"`
	LED     LED               `json:"led"`
	Actions map[string]string `json:"actions"`
	Boot    string            `json:"boot,omitempty"`
	Console bool              `json:"console,omitempty"`
}

func (g Gesture) LongPress() time.Duration { return time.Duration(g.LongPressMs) * time.Millisecond }
func (g Gesture) Poll() time.Duration      { return time.Duration(g.PollMs) * time.Millisecond }
func (l LED) MorseUnit() time.Duration     { return time.Duration(l.MorseUnitMs) * time.Millisecond }

func (l LED) Settle() time.Duration {
	if l.SettleMs == nil {
		return DefaultSettleMs * time.Millisecond
	}
	return time.Duration(*l.SettleMs) * time.Millisecond
}

// Load resolves and validates the embedded config for device.
func Load(device string) (Device, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return Device{}, errcode.New(errcode.ConfigError, "config.Load", "no embedded config for device: "+device)
	}
	d, err := Parse(raw)
	if err != nil {
		return Device{}, err
	}
	d.Name = device
	return d, nil
}

// Parse decodes a JSON document, fills defaults and validates the result.
// Unknown fields are rejected.
func Parse(raw []byte) (Device, error) {
	const op = "config.Parse"
	var d Device
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Device{}, errcode.Wrap(errcode.ConfigError, op, err)
	}
	d.applyDefaults()
	if err := d.Validate(); err != nil {
		return Device{}, err
	}
	return d, nil
}

func (d *Device) applyDefaults() {
	if d.Board.Pull == "" {
		d.Board.Pull = "up"
	}
	if d.Gesture.LongPressMs == 0 {
		d.Gesture.LongPressMs = DefaultLongPressMs
	}
	if d.Gesture.Behavior == "" {
		d.Gesture.Behavior = "hold"
	}
	if d.Gesture.PollMs == 0 {
		d.Gesture.PollMs = DefaultPollMs
	}
	if d.LED.MorseUnitMs == 0 {
		d.LED.MorseUnitMs = DefaultMorseUnitMs
	}
	if d.Actions == nil {
		d.Actions = map[string]string{}
	}
}

// Validate checks ranges and the gesture/action combination. The board kind
// is checked later by the board registry.
func (d Device) Validate() error {
	const op = "config.Validate"
	bad := func(msg string) error { return errcode.New(errcode.ConfigError, op, msg) }

	switch {
	case d.Board.Kind == "":
		return bad("board.kind is required")
	case d.Board.Button < 0 || d.Board.LED < 0:
		return bad("board pins must be >= 0")
	case d.Gesture.LongPressMs < 0:
		return bad("gesture.long_press_ms must be >= 0")
	case d.Gesture.PollMs < 0:
		return bad("gesture.poll_ms must be >= 0")
	case d.LED.MorseUnitMs < 0:
		return bad("led.morse_unit_ms must be >= 0")
	case d.LED.SettleMs != nil && *d.LED.SettleMs < 0:
		return bad("led.settle_ms must be >= 0")
	}
	switch d.Board.Pull {
	case "up", "down", "none":
	default:
		return bad("unknown board.pull " + d.Board.Pull)
	}
	switch d.Gesture.Behavior {
	case "hold", "release":
	default:
		return bad("unknown gesture.behavior " + d.Gesture.Behavior)
	}
	for k, v := range d.Actions {
		switch k {
		case ActionClick, ActionDoubleClick, ActionLongPress:
		default:
			return bad("unknown action " + k)
		}
		if v == "" {
			return bad("empty command for action " + k)
		}
	}
	_, click := d.Actions[ActionClick]
	_, dbl := d.Actions[ActionDoubleClick]
	if click && dbl {
		return bad("click and double_click actions are mutually exclusive")
	}
	if len(d.Actions) == 0 {
		return bad("at least one action is required")
	}
	return nil
}
