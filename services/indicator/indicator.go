// Package indicator runs one button and one LED as a unit: button gestures
// are mapped to console commands that drive the LED, and console requests
// arriving over the bus are served from the same loop.
package indicator

import (
	"context"
	"log/slog"
	"time"

	"indicator-go/bus"
	"indicator-go/errcode"
	"indicator-go/services/blink"
	"indicator-go/services/board"
	"indicator-go/services/config"
	"indicator-go/services/console"
	"indicator-go/services/gesture"
	"indicator-go/x/timex"
)

// Topics published by the service.
var (
	TopicGesture = bus.Topic{"indicator", "gesture"} // + kind
	TopicAction  = bus.Topic{"indicator", "action"}
	TopicDone    = bus.Topic{"indicator", "done"}
	TopicState   = bus.Topic{"indicator", "state"} // retained
)

// Gesture is the payload on TopicGesture.
type Gesture struct {
	Kind string
	Held time.Duration // long presses only
}

// Action is the payload on TopicAction.
type Action struct {
	Gesture string // empty for boot
	Command string
	Err     error
}

// Options carries overrides for tests and simulators.
type Options struct {
	Clock  timex.Clock
	Ticker timex.Ticker
	Sleep  func(time.Duration)
	Logger *slog.Logger
}

type Service struct {
	dev  config.Device
	conn *bus.Connection
	eng  *blink.Engine
	det  *gesture.Detector
	log  *slog.Logger
}

// New builds the engine and detector for hw according to dev.
func New(dev config.Device, hw board.Hardware, conn *bus.Connection, o Options) (*Service, error) {
	const op = "indicator.New"
	if conn == nil {
		return nil, errcode.New(errcode.ConfigError, op, "bus connection required")
	}
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("device", dev.Name)
	s := &Service{dev: dev, conn: conn, log: log}

	eopts := []blink.Option{
		blink.WithMorseUnit(dev.LED.MorseUnit()),
		blink.WithSettleDelay(dev.LED.Settle()),
		blink.WithLogger(log),
		blink.WithCallback(func() {
			conn.Publish(conn.NewMessage(TopicDone, true, false))
		}),
	}
	if o.Sleep != nil {
		eopts = append(eopts, blink.WithSleep(o.Sleep))
	}
	eng, err := blink.New(hw.LED, eopts...)
	if err != nil {
		return nil, err
	}

	behavior, err := gesture.ParseBehavior(dev.Gesture.Behavior)
	if err != nil {
		return nil, err
	}
	cfg := gesture.Config{
		Pin:              hw.Button,
		LongPressTimeout: dev.Gesture.LongPress(),
		Behavior:         behavior,
		Clock:            o.Clock,
		Ticker:           o.Ticker,
		Logger:           log,
	}
	if _, ok := dev.Actions[config.ActionClick]; ok {
		cfg.OnClick = func() { s.publishGesture(config.ActionClick, 0) }
	}
	if _, ok := dev.Actions[config.ActionDoubleClick]; ok {
		cfg.OnDoubleClick = func() { s.publishGesture(config.ActionDoubleClick, 0) }
	}
	if _, ok := dev.Actions[config.ActionLongPress]; ok {
		cfg.OnLongPress = func(held time.Duration) { s.publishGesture(config.ActionLongPress, held) }
	}
	det, err := gesture.New(cfg)
	if err != nil {
		eng.Release()
		return nil, err
	}
	s.eng, s.det = eng, det
	return s, nil
}

// Engine exposes the LED engine for direct control.
func (s *Service) Engine() *blink.Engine { return s.eng }

// publishGesture runs on the detector's tick goroutine, so it only hands the
// event to the bus.
func (s *Service) publishGesture(kind string, held time.Duration) {
	topic := append(append(bus.Topic{}, TopicGesture...), kind)
	s.conn.Publish(s.conn.NewMessage(topic, Gesture{Kind: kind, Held: held}, false))
}

// Run plays the boot pattern, starts polling and serves gestures and
// console requests until ctx is cancelled. Everything is released on return.
func (s *Service) Run(ctx context.Context) error {
	gestures := s.conn.Subscribe(append(append(bus.Topic{}, TopicGesture...), bus.One))
	cmds := s.conn.Subscribe(console.CmdTopic)
	defer func() {
		s.det.Release()
		s.eng.Release()
		s.conn.Unsubscribe(gestures)
		s.conn.Unsubscribe(cmds)
		s.setState("stopped")
	}()

	if s.dev.Boot != "" {
		s.run("", s.dev.Boot)
	}
	if err := s.det.Start(s.dev.Gesture.Poll()); err != nil {
		return err
	}
	s.setState("running")
	s.log.Info("indicator: running", "actions", len(s.dev.Actions), "timeout", s.det.Timeout())

	for {
		select {
		case <-ctx.Done():
			s.log.Info("indicator: stopping")
			return nil
		case m := <-gestures.Channel():
			g, ok := m.Payload.(Gesture)
			if !ok {
				continue
			}
			s.log.Info("indicator: gesture", "kind", g.Kind, "held", g.Held)
			if line, ok := s.dev.Actions[g.Kind]; ok {
				s.run(g.Kind, line)
			}
		case m := <-cmds.Channel():
			line, _ := m.Payload.(string)
			text, err := console.Exec(s.eng, line)
			s.conn.Reply(m, console.Reply{Text: text, Err: err}, false)
		}
	}
}

func (s *Service) run(kind, line string) {
	_, err := console.Exec(s.eng, line)
	if err != nil {
		s.log.Warn("indicator: action failed", "gesture", kind, "command", line, "err", err)
	}
	s.conn.Publish(s.conn.NewMessage(TopicAction, Action{Gesture: kind, Command: line, Err: err}, false))
}

func (s *Service) setState(state string) {
	s.conn.Publish(s.conn.NewMessage(TopicState, state, true))
}
