package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"

	"indicator-go/errcode"
	"indicator-go/hal"
	"indicator-go/services/config"
)

type loopI2C struct {
	last  map[uint16]byte
	addrs []uint16
}

func (l *loopI2C) Tx(addr uint16, w, r []byte) error {
	if l.last == nil {
		l.last = map[uint16]byte{}
	}
	l.addrs = append(l.addrs, addr)
	if len(w) > 0 {
		l.last[addr] = w[0]
	}
	if len(r) > 0 {
		r[0] = l.last[addr]
	}
	return nil
}

type buses map[string]drivers.I2C

func (b buses) ByID(id string) (drivers.I2C, bool) {
	v, ok := b[id]
	return v, ok
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []string{"gpio", "pcf8574"}, Kinds())
}

func TestRegisterBuilder_Duplicate(t *testing.T) {
	assert.Panics(t, func() { RegisterBuilder("gpio", BuilderFunc(buildGPIO)) })
	assert.Panics(t, func() { RegisterBuilder("", BuilderFunc(buildGPIO)) })
}

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build(BuildInput{Board: config.Board{Kind: "abacus"}})
	assert.Equal(t, errcode.UnknownBoard, errcode.Of(err))
}

func TestBuild_GPIO(t *testing.T) {
	pins := &hal.FakePinFactory{}
	hw, err := Build(BuildInput{
		Pins:  pins,
		Board: config.Board{Kind: "gpio", Button: 14, LED: 25, Pull: "up"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpio", hw.Kind)

	btn, led := pins.Get(14), pins.Get(25)
	assert.False(t, btn.IsOutput())
	assert.Equal(t, hal.PullUp, btn.PullMode())
	assert.True(t, hw.Button.Get(), "pulled-up button idles high")
	assert.True(t, led.IsOutput())

	hw.LED.Set(true)
	assert.True(t, led.Get())
}

func TestBuild_GPIOActiveLowLED(t *testing.T) {
	pins := &hal.FakePinFactory{}
	hw, err := Build(BuildInput{
		Pins:  pins,
		Board: config.Board{Kind: "gpio", Button: 2, LED: 3, Pull: "up", LEDActiveLow: true},
	})
	require.NoError(t, err)
	assert.True(t, pins.Get(3).Get(), "off is high on an active-low LED")
	hw.LED.Set(true)
	assert.False(t, pins.Get(3).Get())
}

func TestBuild_GPIOBadPin(t *testing.T) {
	_, err := Build(BuildInput{
		Pins:  &hal.FakePinFactory{},
		Board: config.Board{Kind: "gpio", Button: -1, LED: 3},
	})
	assert.Equal(t, errcode.UnknownPin, errcode.Of(err))

	_, err = Build(BuildInput{Board: config.Board{Kind: "gpio"}})
	assert.Equal(t, errcode.Unsupported, errcode.Of(err))
}

func TestBuild_Expander(t *testing.T) {
	bus := &loopI2C{}
	hw, err := Build(BuildInput{
		Buses: buses{"i2c0": bus},
		Board: config.Board{Kind: "pcf8574", Bus: "i2c0", Address: 0x21, Button: 0, LED: 1, Pull: "up", LEDActiveLow: true},
	})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x21), bus.addrs[0])
	assert.Equal(t, byte(0xFF), bus.last[0x21], "logical off on an active-low line releases it")

	hw.LED.Set(true)
	assert.Equal(t, byte(0xFD), bus.last[0x21])
	hw.LED.Set(false)
	assert.Equal(t, byte(0xFF), bus.last[0x21])
}

func TestBuild_ExpanderErrors(t *testing.T) {
	_, err := Build(BuildInput{
		Buses: buses{},
		Board: config.Board{Kind: "pcf8574", Bus: "i2c9"},
	})
	assert.Equal(t, errcode.UnknownBus, errcode.Of(err))

	_, err = Build(BuildInput{
		Buses: buses{"i2c0": &loopI2C{}},
		Board: config.Board{Kind: "pcf8574", Bus: "i2c0", Button: 9, LED: 1},
	})
	assert.Equal(t, errcode.UnknownPin, errcode.Of(err))

	_, err = Build(BuildInput{
		Buses: buses{"i2c0": &loopI2C{}},
		Board: config.Board{Kind: "pcf8574", Bus: "i2c0", Button: 0, LED: 1, Pull: "down"},
	})
	assert.Equal(t, errcode.ConfigError, errcode.Of(err))
}
