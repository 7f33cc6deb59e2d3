package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"indicator-go/bus"
	"indicator-go/hal"
	"indicator-go/services/board"
	"indicator-go/services/config"
	"indicator-go/services/console"
	"indicator-go/services/indicator"
)

const simHelp = "space: hold/release  tab: click  ctrl-d: double click  enter: run command  esc: quit"

// simState is shared between the event loop and the bus/log goroutines.
type simState struct {
	mu      sync.Mutex
	lines   []string
	status  string
	pressed bool
}

func (s *simState) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		s.lines = append(s.lines, l)
	}
	if n := len(s.lines); n > 50 {
		s.lines = s.lines[n-50:]
	}
	return len(p), nil
}

func (s *simState) setStatus(v string) {
	s.mu.Lock()
	s.status = v
	s.mu.Unlock()
}

func runSim(c *cli.Context) error {
	dev, err := config.Load(c.String("device"))
	if err != nil {
		return err
	}
	if dev.Board.Kind != "gpio" {
		return errors.New("sim supports gpio boards only, got " + dev.Board.Kind)
	}

	state := &simState{status: "ready"}
	logger := slog.New(slog.NewTextHandler(state, &slog.HandlerOptions{Level: slog.LevelDebug}))

	pins := &hal.FakePinFactory{}
	hw, err := board.Build(board.BuildInput{Pins: pins, Board: dev.Board})
	if err != nil {
		return err
	}
	button := pins.Get(dev.Board.Button)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer screen.Fini()
	redraw := func() { _ = screen.PostEvent(tcell.NewEventInterrupt(nil)) }

	var lit atomic.Bool
	activeLow := dev.Board.LEDActiveLow
	pins.Get(dev.Board.LED).Watch(func(level bool) {
		lit.Store(level != activeLow)
		redraw()
	})
	if c.Bool("sound") {
		stopBuzzer, err := startBuzzer(&lit)
		if err != nil {
			logger.Warn("sim: sound disabled", "err", err)
		} else {
			defer stopBuzzer()
		}
	}

	b := bus.NewBus(32)
	svc, err := indicator.New(dev, hw, b.NewConnection("indicator"), indicator.Options{Logger: logger})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	client := b.NewConnection("sim")
	events := client.Subscribe(bus.Topic{"indicator", bus.Rest})
	defer client.Disconnect()
	go func() {
		for m := range events.Channel() {
			switch p := m.Payload.(type) {
			case indicator.Gesture:
				state.setStatus(fmt.Sprintf("gesture %s %v", p.Kind, p.Held))
			case indicator.Action:
				if p.Err != nil {
					state.setStatus("action " + p.Command + ": " + p.Err.Error())
				} else {
					state.setStatus("action " + p.Command)
				}
			}
			redraw()
		}
	}()

	press := func(down bool) {
		state.mu.Lock()
		state.pressed = down
		state.mu.Unlock()
		button.Set(!down)
		redraw()
	}
	tap := func(n int) {
		go func() {
			for i := 0; i < n; i++ {
				press(true)
				time.Sleep(60 * time.Millisecond)
				press(false)
				time.Sleep(60 * time.Millisecond)
			}
		}()
	}
	send := func(line string) {
		go func() {
			rctx, rcancel := context.WithTimeout(ctx, 2*time.Second)
			defer rcancel()
			m, err := client.RequestWait(rctx, client.NewMessage(console.CmdTopic, line, false))
			switch {
			case err != nil:
				state.setStatus("error: " + err.Error())
			case m.Payload.(console.Reply).Err != nil:
				state.setStatus("error: " + m.Payload.(console.Reply).Err.Error())
			default:
				state.setStatus(line + ": " + m.Payload.(console.Reply).Text)
			}
			redraw()
		}()
	}

	var input []rune
	for {
		draw(screen, state, lit.Load(), string(input))
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyTab:
				tap(1)
			case tcell.KeyCtrlD:
				tap(2)
			case tcell.KeyEnter:
				if len(input) > 0 {
					send(string(input))
					input = input[:0]
				}
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if len(input) > 0 {
					input = input[:len(input)-1]
				}
			case tcell.KeyRune:
				if ev.Rune() == ' ' && len(input) == 0 {
					state.mu.Lock()
					down := !state.pressed
					state.mu.Unlock()
					press(down)
				} else {
					input = append(input, ev.Rune())
				}
			}
		}
	}
}

func draw(s tcell.Screen, st *simState, lit bool, input string) {
	s.Clear()
	st.mu.Lock()
	defer st.mu.Unlock()

	ledStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	if lit {
		ledStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
	text(s, 2, 1, ledStyle, "(●)")
	text(s, 7, 1, tcell.StyleDefault, "LED")

	btn := "[ up ]"
	if st.pressed {
		btn = "[DOWN]"
	}
	text(s, 2, 3, tcell.StyleDefault.Foreground(tcell.ColorYellow), btn)
	text(s, 9, 3, tcell.StyleDefault, "button")

	text(s, 2, 5, tcell.StyleDefault.Foreground(tcell.ColorGreen), st.status)
	text(s, 2, 6, tcell.StyleDefault.Foreground(tcell.ColorBlue), simHelp)

	_, h := s.Size()
	first := len(st.lines) - max(h-10, 0)
	if first < 0 {
		first = 0
	}
	for i, l := range st.lines[first:] {
		text(s, 2, 8+i, tcell.StyleDefault.Foreground(tcell.ColorGray), l)
	}
	text(s, 0, h-1, tcell.StyleDefault, "> "+input)
	s.ShowCursor(2+len([]rune(input)), h-1)
	s.Show()
}

func text(s tcell.Screen, x, y int, style tcell.Style, str string) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
