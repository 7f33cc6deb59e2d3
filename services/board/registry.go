// Package board turns a config.Board description into a configured button
// line and LED line. Board kinds register a Builder at init time.
package board

import (
	"fmt"
	"sort"
	"sync"

	"indicator-go/errcode"
	"indicator-go/hal"
	"indicator-go/services/config"
)

// BuildInput is handed to a builder.
type BuildInput struct {
	Pins  hal.PinFactory
	Buses hal.I2CBusFactory
	Board config.Board
}

// Hardware is a built board. Button is configured as an input, LED as an
// output driven low, both in logical polarity.
type Hardware struct {
	Kind   string
	Button hal.Pin
	LED    hal.Pin
}

type Builder interface {
	Build(in BuildInput) (Hardware, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(in BuildInput) (Hardware, error)

func (f BuilderFunc) Build(in BuildInput) (Hardware, error) { return f(in) }

var (
	muBuilders sync.RWMutex
	builders   = map[string]Builder{}
)

// RegisterBuilder installs a builder for a board kind.
// It panics on duplicate registration to catch mistakes at start-up.
func RegisterBuilder(kind string, b Builder) {
	muBuilders.Lock()
	defer muBuilders.Unlock()
	if kind == "" {
		panic("board: empty kind for builder")
	}
	if _, exists := builders[kind]; exists {
		panic(fmt.Sprintf("board: builder already registered for kind %q", kind))
	}
	builders[kind] = b
}

func findBuilder(kind string) (Builder, bool) {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	b, ok := builders[kind]
	return b, ok
}

// Kinds lists registered board kinds.
func Kinds() []string {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build looks up the builder for in.Board.Kind and runs it.
func Build(in BuildInput) (Hardware, error) {
	b, ok := findBuilder(in.Board.Kind)
	if !ok {
		return Hardware{}, errcode.New(errcode.UnknownBoard, "board.Build", "no builder for kind "+in.Board.Kind)
	}
	hw, err := b.Build(in)
	if err != nil {
		return Hardware{}, err
	}
	hw.Kind = in.Board.Kind
	return hw, nil
}

// setup configures button and LED lines the same way for every kind.
func setup(op string, button, led hal.Pin, b config.Board) (Hardware, error) {
	if err := button.ConfigureInput(hal.ParsePull(b.Pull)); err != nil {
		return Hardware{}, errcode.Wrap(errcode.ConfigError, op, err)
	}
	if b.LEDActiveLow {
		led = hal.Inverted(led)
	}
	if err := led.ConfigureOutput(false); err != nil {
		return Hardware{}, errcode.Wrap(errcode.ConfigError, op, err)
	}
	return Hardware{Button: button, LED: led}, nil
}
