// Package hal holds the small hardware surface the indicator core runs on:
// digital input/output lines, pin and bus factories, and a serial port.
package hal

import (
	"context"

	"tinygo.org/x/drivers"
)

// Input is a digital input line.
type Input interface {
	Get() bool
}

// Output is a digital output line.
type Output interface {
	Set(level bool)
}

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return "none"
	}
}

// ParsePull maps a config string to a Pull; unknown strings are PullNone.
func ParsePull(s string) Pull {
	switch s {
	case "up":
		return PullUp
	case "down":
		return PullDown
	default:
		return PullNone
	}
}

// Pin is a configurable GPIO line.
type Pin interface {
	Input
	Output
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Toggle()
	Number() int
}

// PinFactory supplies GPIO pins by the platform number scheme.
type PinFactory interface {
	ByNumber(n int) (Pin, bool)
}

// I2CBusFactory supplies configured I²C buses by id ("i2c0", "i2c1", ...).
// Uses the TinyGo drivers.I2C interface to remain compatible on MCU builds.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// SerialPort is the console transport (UART on MCU builds).
type SerialPort interface {
	Write(p []byte) (int, error)
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// Inverted flips the logical level of p in both directions.
// Use it for active-low LEDs so that Set(true) means "lit".
func Inverted(p Pin) Pin { return inverted{p} }

type inverted struct{ Pin }

func (i inverted) Get() bool                          { return !i.Pin.Get() }
func (i inverted) Set(level bool)                     { i.Pin.Set(!level) }
func (i inverted) ConfigureOutput(initial bool) error { return i.Pin.ConfigureOutput(!initial) }
