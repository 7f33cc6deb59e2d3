package board

import (
	"strconv"

	"indicator-go/errcode"
)

func init() { RegisterBuilder("gpio", BuilderFunc(buildGPIO)) }

// buildGPIO uses two native GPIO lines.
func buildGPIO(in BuildInput) (Hardware, error) {
	const op = "board.gpio"
	if in.Pins == nil {
		return Hardware{}, errcode.New(errcode.Unsupported, op, "no pin factory on this platform")
	}
	button, ok := in.Pins.ByNumber(in.Board.Button)
	if !ok {
		return Hardware{}, errcode.New(errcode.UnknownPin, op, "button pin "+strconv.Itoa(in.Board.Button))
	}
	led, ok := in.Pins.ByNumber(in.Board.LED)
	if !ok {
		return Hardware{}, errcode.New(errcode.UnknownPin, op, "led pin "+strconv.Itoa(in.Board.LED))
	}
	return setup(op, button, led, in.Board)
}
