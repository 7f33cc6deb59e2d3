package indicator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicator-go/bus"
	"indicator-go/errcode"
	"indicator-go/hal"
	"indicator-go/services/board"
	"indicator-go/services/config"
	"indicator-go/services/console"
	"indicator-go/x/timex"
)

const devJSON = `{
  "board": {"kind": "gpio", "button": 4, "led": 5},
  "gesture": {"long_press_ms": 200, "behavior": "hold"},
  "led": {"morse_unit_ms": 10, "settle_ms": 0},
  "actions": {"click": "custom 10 10 2", "long_press": "morse e"},
  "boot": "custom 5 5 1"
}`

type handTicker struct{ fns chan func() }

func (h *handTicker) Start(_ time.Duration, fn func()) error {
	h.fns <- fn
	return nil
}

func (h *handTicker) Stop() {}

type fixture struct {
	pins   *hal.FakePinFactory
	clk    *timex.ManualClock
	tick   func()
	events *bus.Subscription
	client *bus.Connection
	cancel context.CancelFunc
	done   chan error
	once   sync.Once
}

func start(t *testing.T, raw string) *fixture {
	t.Helper()
	dev, err := config.Parse([]byte(raw))
	require.NoError(t, err)
	dev.Name = "test"

	f := &fixture{pins: &hal.FakePinFactory{}, clk: &timex.ManualClock{}, done: make(chan error, 1)}
	hw, err := board.Build(board.BuildInput{Pins: f.pins, Board: dev.Board})
	require.NoError(t, err)

	b := bus.NewBus(16)
	f.client = b.NewConnection("client")
	f.events = f.client.Subscribe(bus.Topic{"indicator", bus.Rest})

	tk := &handTicker{fns: make(chan func(), 1)}
	svc, err := New(dev, hw, b.NewConnection("indicator"), Options{
		Clock:  f.clk,
		Ticker: tk,
		Sleep:  func(time.Duration) {},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go func() { f.done <- svc.Run(ctx) }()

	select {
	case f.tick = <-tk.fns:
	case <-time.After(time.Second):
		t.Fatal("detector never started")
	}
	t.Cleanup(f.stop)
	return f
}

func (f *fixture) stop() {
	f.once.Do(func() {
		f.cancel()
		<-f.done
	})
}

func (f *fixture) drive(pressed bool, d time.Duration) {
	f.pins.Get(4).Set(!pressed)
	for n := d / (20 * time.Millisecond); n > 0; n-- {
		f.clk.Advance(20 * time.Millisecond)
		f.tick()
	}
}

// next returns the next payload of type T, skipping others.
func next[T any](t *testing.T, sub *bus.Subscription) T {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if v, ok := m.Payload.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("no %T published", zero)
			return zero
		}
	}
}

func TestBootAndClick(t *testing.T) {
	f := start(t, devJSON)

	boot := next[Action](t, f.events)
	assert.Equal(t, Action{Command: "custom 5 5 1"}, boot)

	f.drive(true, 60*time.Millisecond)
	f.drive(false, 60*time.Millisecond)

	g := next[Gesture](t, f.events)
	assert.Equal(t, "click", g.Kind)
	a := next[Action](t, f.events)
	assert.Equal(t, Action{Gesture: "click", Command: "custom 10 10 2"}, a)
}

func TestLongPressRepeatsWhileHeld(t *testing.T) {
	f := start(t, devJSON)
	next[Action](t, f.events)

	f.drive(true, 420*time.Millisecond)
	g1 := next[Gesture](t, f.events)
	g2 := next[Gesture](t, f.events)
	assert.Equal(t, Gesture{Kind: "long_press", Held: 200 * time.Millisecond}, g1)
	assert.Equal(t, Gesture{Kind: "long_press", Held: 400 * time.Millisecond}, g2)
	f.drive(false, 40*time.Millisecond)
}

func TestConsoleRequests(t *testing.T) {
	f := start(t, devJSON)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m, err := f.client.RequestWait(ctx, f.client.NewMessage(console.CmdTopic, "help", false))
	require.NoError(t, err)
	assert.Equal(t, console.Reply{Text: console.Help}, m.Payload)

	m, err = f.client.RequestWait(ctx, f.client.NewMessage(console.CmdTopic, "blink warp", false))
	require.NoError(t, err)
	r := m.Payload.(console.Reply)
	assert.Equal(t, errcode.InvalidArgument, errcode.Of(r.Err))
}

func TestConsoleServedBehindEndlessPattern(t *testing.T) {
	f := start(t, devJSON)
	ask := func(line string) console.Reply {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		m, err := f.client.RequestWait(ctx, f.client.NewMessage(console.CmdTopic, line, false))
		require.NoError(t, err, line)
		return m.Payload.(console.Reply)
	}

	assert.Equal(t, console.Reply{Text: "ok"}, ask("custom 10 10 0"))
	assert.Equal(t, console.Reply{Text: "ok"}, ask("blink fast"), "queued play must not block the loop")
	assert.Equal(t, console.Reply{Text: "busy"}, ask("status"))
	assert.Equal(t, console.Reply{Text: "stopped all"}, ask("stopall"))
	require.Eventually(t, func() bool { return ask("status").Text == "idle" }, time.Second, 10*time.Millisecond)
}

func TestStopReleasesEverything(t *testing.T) {
	f := start(t, devJSON)
	f.stop()

	led := f.pins.Get(5)
	assert.False(t, led.Get())

	state := f.client.Subscribe(TopicState)
	m := <-state.Channel()
	assert.Equal(t, "stopped", m.Payload)
}

func TestNew_Errors(t *testing.T) {
	dev, err := config.Parse([]byte(devJSON))
	require.NoError(t, err)
	pins := &hal.FakePinFactory{}
	hw, err := board.Build(board.BuildInput{Pins: pins, Board: dev.Board})
	require.NoError(t, err)

	_, err = New(dev, hw, nil, Options{})
	assert.Equal(t, errcode.ConfigError, errcode.Of(err))

	b := bus.NewBus(4)
	_, err = New(dev, board.Hardware{Button: hw.Button}, b.NewConnection("x"), Options{})
	assert.Equal(t, errcode.ConfigError, errcode.Of(err), "missing LED")
}
