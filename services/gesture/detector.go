// Package gesture turns a polled, active-low button line into click,
// double-click and long-press events.
//
// The detector is driven by a periodic Tick (20 ms by default). Tick reads
// the line once, advances a small state machine and, when a gesture
// completes, invokes the matching callback synchronously on the ticking
// goroutine. Callbacks must therefore return quickly; hand long work off.
//
// With TriggerWhileHeld a held button reports a long press every
// LongPressTimeout for as long as it stays down, each time with the total
// time held so far.
package gesture

import (
	"log/slog"
	"sync"
	"time"

	"indicator-go/errcode"
	"indicator-go/hal"
	"indicator-go/x/timex"
)

type Detector struct {
	pin     hal.Input
	onClick func()
	onDbl   func()
	onLong  func(time.Duration)
	p       params

	clock  timex.Clock
	ticker timex.Ticker
	log    *slog.Logger

	mu       sync.Mutex
	st       state
	running  bool
	released bool
}

// New validates cfg and returns an idle detector. Call Start to begin
// polling, or drive Tick yourself.
func New(cfg Config) (*Detector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	timeout := cfg.LongPressTimeout
	if timeout == 0 {
		timeout = DefaultLongPressTimeout
	}
	d := &Detector{
		pin:     cfg.Pin,
		onClick: cfg.OnClick,
		onDbl:   cfg.OnDoubleClick,
		onLong:  cfg.OnLongPress,
		p: params{
			timeoutMs:   timeout.Milliseconds(),
			behavior:    cfg.Behavior,
			doubleClick: cfg.OnDoubleClick != nil,
		},
		clock:  cfg.Clock,
		ticker: cfg.Ticker,
		log:    cfg.Logger,
	}
	if d.clock == nil {
		d.clock = timex.Mono{}
	}
	if d.ticker == nil {
		d.ticker = timex.NewTicker()
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.st.fireRef = d.clock.NowMs()
	return d, nil
}

// Timeout returns the effective long press timeout.
func (d *Detector) Timeout() time.Duration { return ms(d.p.timeoutMs) }

// Start polls the pin every period (DefaultPollPeriod when zero).
func (d *Detector) Start(period time.Duration) error {
	if period == 0 {
		period = DefaultPollPeriod
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.released:
		return errcode.New(errcode.Released, "gesture.Start", "detector released")
	case d.running:
		return nil
	}
	if err := d.ticker.Start(period, d.Tick); err != nil {
		return err
	}
	d.running = true
	d.log.Debug("gesture: polling started", "period", period, "timeout", d.Timeout(), "behavior", d.p.behavior)
	return nil
}

// Tick samples the pin once. It never blocks beyond the callbacks it fires.
func (d *Detector) Tick() {
	holding := !d.pin.Get()
	now := d.clock.NowMs()

	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return
	}
	var ev event
	d.st, ev = step(d.st, holding, now, d.p)
	d.mu.Unlock()

	if ev.kind == evNone {
		return
	}
	d.log.Debug("gesture", "kind", ev.kind, "held", ev.held)
	switch ev.kind {
	case evClick:
		if d.onClick != nil {
			d.onClick()
		}
	case evDoubleClick:
		if d.onDbl != nil {
			d.onDbl()
		}
	case evLongPress:
		if d.onLong != nil {
			d.onLong(ev.held)
		}
	}
}

// Release stops polling. The detector cannot be restarted. Must not be
// called from a gesture callback.
func (d *Detector) Release() {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return
	}
	d.released = true
	running := d.running
	d.running = false
	d.mu.Unlock()

	if running {
		d.ticker.Stop()
	}
	d.log.Debug("gesture: released")
}

// Snapshot is a read-only view of the detector state.
type Snapshot struct {
	Holding  bool
	Armed    bool
	Consumed bool
	Streak   uint32
}

func (d *Detector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Holding:  d.st.holding,
		Armed:    d.st.phase == phaseArmed,
		Consumed: d.st.phase == phaseConsumed,
		Streak:   d.st.streak,
	}
}
