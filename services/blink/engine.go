// Package blink sequences on/off pulses on a single output line.
//
// An Engine plays one pattern at a time. Each play call returns at once and
// queues its pattern on a new goroutine that waits for the previous pattern
// to finish, so patterns play back to back in call order. Stop cuts the
// current pattern short; StopAll also drops everything queued behind it.
// Cancellation is checked between pulses, so a stopped pattern may finish
// the pulse it is in.
package blink

import (
	"log/slog"
	"sync"
	"time"

	"indicator-go/errcode"
	"indicator-go/hal"
	"indicator-go/x/morse"
)

// DefaultSettleDelay is the quiet time after a pattern ends before the
// engine reports idle.
const DefaultSettleDelay = time.Second

// Segment is one lit period followed by one dark period. A zero On leaves
// the output dark for Off.
type Segment struct {
	On  time.Duration
	Off time.Duration
}

var reboot = [...]Segment{
	{On: 100 * time.Millisecond, Off: 50 * time.Millisecond},
	{On: 100 * time.Millisecond, Off: 50 * time.Millisecond},
	{On: 2000 * time.Millisecond, Off: 50 * time.Millisecond},
}

// RebootSegments returns a fresh copy of the reboot combination: two short
// flashes and one long one.
func RebootSegments() []Segment { return append([]Segment(nil), reboot[:]...) }

type Option func(*Engine)

// WithCallback sets the completion callback. It runs on the pattern
// goroutine after a pattern started with trigger=true ends naturally. It may
// start another pattern but must not call Wait or Release.
func WithCallback(fn func()) Option { return func(e *Engine) { e.cb = fn } }

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option { return func(e *Engine) { e.settle = d } }

// WithSleep replaces time.Sleep for pulse timing.
func WithSleep(fn func(time.Duration)) Option { return func(e *Engine) { e.sleep = fn } }

// WithMorseUnit sets the Morse dot length.
func WithMorseUnit(d time.Duration) Option { return func(e *Engine) { e.unit = d } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

type Engine struct {
	out   hal.Output
	sleep func(time.Duration)
	unit  time.Duration
	log   *slog.Logger

	mu       sync.Mutex
	cb       func()
	settle   time.Duration
	cur      *run // playing
	tail     *run // last queued, nil when idle
	gen      uint64
	released bool
}

// New drives pin low and returns an idle engine.
func New(pin hal.Output, opts ...Option) (*Engine, error) {
	if pin == nil {
		return nil, errcode.New(errcode.ConfigError, "blink.New", "pin must be specified")
	}
	e := &Engine{
		out:    pin,
		sleep:  time.Sleep,
		unit:   morse.DefaultUnit,
		settle: DefaultSettleDelay,
	}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.settle < 0 {
		return nil, errcode.New(errcode.ConfigError, "blink.New", "settle delay must be >= 0")
	}
	e.out.Set(false)
	return e, nil
}

// SetCallback replaces the completion callback; nil clears it. It applies
// to patterns that finish after the call.
func (e *Engine) SetCallback(fn func()) {
	e.mu.Lock()
	e.cb = fn
	e.mu.Unlock()
}

func (e *Engine) SetSettleDelay(d time.Duration) error {
	if d < 0 {
		return errcode.New(errcode.InvalidArgument, "blink.SetSettleDelay", "settle delay must be >= 0")
	}
	e.mu.Lock()
	e.settle = d
	e.mu.Unlock()
	return nil
}

func (e *Engine) SettleDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settle
}

// PlayCustom flashes on/off repeat times (0 repeats until stopped).
func (e *Engine) PlayCustom(on, off time.Duration, repeat int, trigger bool) error {
	const op = "blink.PlayCustom"
	if on < 0 || off < 0 {
		return errcode.New(errcode.InvalidArgument, op, "durations must be >= 0")
	}
	return e.play(op, "custom", []Segment{{On: on, Off: off}}, repeat, trigger)
}

// PlayNamed plays a preset. A negative repeat selects the preset's default.
func (e *Engine) PlayNamed(p Preset, repeat int, trigger bool) error {
	const op = "blink.PlayNamed"
	seg, ok := p.Segment()
	if !ok {
		return errcode.New(errcode.InvalidArgument, op, "unknown preset")
	}
	if repeat < 0 {
		repeat = p.DefaultRepeat()
	}
	return e.play(op, p.String(), []Segment{seg}, repeat, trigger)
}

// PlayCombination plays segments in order as one iteration.
func (e *Engine) PlayCombination(segments []Segment, repeat int, trigger bool) error {
	const op = "blink.PlayCombination"
	if len(segments) == 0 {
		return errcode.New(errcode.InvalidArgument, op, "no segments")
	}
	for _, s := range segments {
		if s.On < 0 || s.Off < 0 {
			return errcode.New(errcode.InvalidArgument, op, "durations must be >= 0")
		}
	}
	seq := make([]Segment, len(segments))
	copy(seq, segments)
	return e.play(op, "combination", seq, repeat, trigger)
}

// PlayMorse spells msg. Unsupported characters are dropped; a message with
// nothing left to play is rejected.
func (e *Engine) PlayMorse(msg string, repeat int, trigger bool) error {
	const op = "blink.PlayMorse"
	units := morse.Encoder{Unit: e.unit, Logger: e.log}.Translate(msg)
	if len(units) == 0 {
		return errcode.New(errcode.InvalidArgument, op, "nothing to play in "+msg)
	}
	seq := make([]Segment, 0, len(units))
	for _, u := range units {
		if u.Pulse {
			seq = append(seq, Segment{On: u.Duration})
		} else {
			seq = append(seq, Segment{Off: u.Duration})
		}
	}
	return e.play(op, "morse", seq, repeat, trigger)
}

// Reboot plays the reboot combination once, with the callback.
func (e *Engine) Reboot() error {
	return e.PlayCombination(reboot[:], 1, true)
}

// Stop ends the current pattern without the callback. Patterns queued
// behind it still play.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.cur != nil {
		e.cur.cancel()
	}
	e.mu.Unlock()
	e.out.Set(false)
}

// StopAll ends the current pattern and drops every queued one. The next
// play call re-arms the engine.
func (e *Engine) StopAll() {
	e.mu.Lock()
	e.gen++
	if e.cur != nil {
		e.cur.cancelAll()
	}
	e.mu.Unlock()
	e.out.Set(false)
}

// Release stops everything, waits for the pattern goroutines to exit and
// leaves the output low. Later calls fail with errcode.Released.
func (e *Engine) Release() {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return
	}
	e.released = true
	e.gen++
	if e.cur != nil {
		e.cur.cancelAll()
	}
	tail := e.tail
	e.mu.Unlock()

	if tail != nil {
		<-tail.done
	}
	e.out.Set(false)
	e.log.Debug("blink: released")
}

// Busy reports whether a pattern is playing or queued, settle delay
// included.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tail != nil
}

// Wait blocks until the engine is idle, including patterns queued by the
// callback while waiting.
func (e *Engine) Wait() {
	for {
		e.mu.Lock()
		tail := e.tail
		e.mu.Unlock()
		if tail == nil {
			return
		}
		<-tail.done
	}
}

func (e *Engine) play(op, name string, seq []Segment, repeat int, trigger bool) error {
	if repeat < 0 {
		return errcode.New(errcode.InvalidArgument, op, "repeat must be >= 0")
	}
	var total time.Duration
	for _, s := range seq {
		total += s.On + s.Off
	}
	if total == 0 {
		return errcode.New(errcode.InvalidArgument, op, "pattern has zero length")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return errcode.New(errcode.Released, op, "engine released")
	}
	e.out.Set(false)
	r := newRun(name, seq, repeat, trigger, e.gen)
	prev := e.tail
	e.tail = r
	e.log.Debug("blink: queued", "pattern", name, "repeat", repeat, "trigger", trigger, "behind", prev != nil)
	go e.exec(r, prev)
	return nil
}
