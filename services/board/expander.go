package board

import (
	"indicator-go/drivers/pcf8574"
	"indicator-go/errcode"
)

func init() { RegisterBuilder("pcf8574", BuilderFunc(buildExpander)) }

// buildExpander puts button and LED on lines of a PCF8574 I2C expander.
func buildExpander(in BuildInput) (Hardware, error) {
	const op = "board.pcf8574"
	if in.Buses == nil {
		return Hardware{}, errcode.New(errcode.Unsupported, op, "no i2c factory on this platform")
	}
	bus, ok := in.Buses.ByID(in.Board.Bus)
	if !ok {
		return Hardware{}, errcode.New(errcode.UnknownBus, op, "i2c bus "+in.Board.Bus)
	}
	dev := pcf8574.New(bus)
	if in.Board.Address != 0 {
		dev.Address = in.Board.Address
	}
	if err := dev.Configure(0xFF); err != nil {
		return Hardware{}, errcode.Wrap(errcode.Error, op, err)
	}
	button, err := dev.Pin(in.Board.Button)
	if err != nil {
		return Hardware{}, errcode.Wrap(errcode.UnknownPin, op, err)
	}
	led, err := dev.Pin(in.Board.LED)
	if err != nil {
		return Hardware{}, errcode.Wrap(errcode.UnknownPin, op, err)
	}
	return setup(op, button, led, in.Board)
}
