package blink

import (
	"sync/atomic"
	"time"
)

// run is one playing pattern. Flags are written by the engine and read by
// the pattern goroutine between pulses.
type run struct {
	name    string
	seq     []Segment
	repeat  int // 0 = until cancelled
	trigger bool
	gen     uint64 // engine generation when queued

	stop    atomic.Bool // Stop: this pattern only
	stopAll atomic.Bool // StopAll/Release
	done    chan struct{}
}

func newRun(name string, seq []Segment, repeat int, trigger bool, gen uint64) *run {
	return &run{name: name, seq: seq, repeat: repeat, trigger: trigger, gen: gen, done: make(chan struct{})}
}

func (r *run) cancel()    { r.stop.Store(true) }
func (r *run) cancelAll() { r.stopAll.Store(true) }

func (r *run) cancelled() bool { return r.stop.Load() || r.stopAll.Load() }

func (e *Engine) pulse(s Segment) {
	if s.On > 0 {
		e.out.Set(true)
		e.sleep(s.On)
	}
	e.out.Set(false)
	if s.Off > 0 {
		e.sleep(s.Off)
	}
}

// iterate plays the sequence once and reports whether it ran to the end.
func (e *Engine) iterate(r *run) bool {
	for _, s := range r.seq {
		if r.cancelled() {
			return false
		}
		e.pulse(s)
	}
	return !r.cancelled()
}

// exec waits for prev, then plays r unless StopAll or Release came in
// since r was queued.
func (e *Engine) exec(r, prev *run) {
	defer close(r.done)
	if prev != nil {
		<-prev.done
	}

	e.mu.Lock()
	if r.gen != e.gen {
		e.detach(r)
		e.mu.Unlock()
		e.log.Debug("blink: dropped", "pattern", r.name)
		return
	}
	e.cur = r
	e.mu.Unlock()
	e.log.Info("blink: start", "pattern", r.name, "repeat", r.repeat, "trigger", r.trigger)

	completed := true
	for n := 0; r.repeat == 0 || n < r.repeat; n++ {
		if !e.iterate(r) {
			completed = false
			break
		}
	}
	e.out.Set(false)

	e.mu.Lock()
	cb, settle := e.cb, e.settle
	e.mu.Unlock()

	if completed {
		e.log.Info("blink: done", "pattern", r.name)
		if r.trigger && cb != nil {
			cb()
		}
	} else {
		e.log.Debug("blink: cancelled", "pattern", r.name)
	}
	if settle > 0 && !r.stopAll.Load() {
		e.sleep(settle)
	}

	e.mu.Lock()
	e.detach(r)
	e.mu.Unlock()
}

// detach clears r from the engine. Callers hold e.mu.
func (e *Engine) detach(r *run) {
	if e.cur == r {
		e.cur = nil
	}
	if e.tail == r {
		e.tail = nil
	}
}

// Preset is a named on/off rate.
type Preset uint8

const (
	Fast Preset = iota
	Medium
	Slow
)

var presets = [...]struct {
	name   string
	period time.Duration
	repeat int
}{
	Fast:   {"fast", 100 * time.Millisecond, 10},
	Medium: {"medium", 500 * time.Millisecond, 5},
	Slow:   {"slow", 1000 * time.Millisecond, 3},
}

func (p Preset) String() string {
	if int(p) < len(presets) {
		return presets[p].name
	}
	return "unknown"
}

// Segment returns the preset's single on/off segment.
func (p Preset) Segment() (Segment, bool) {
	if int(p) >= len(presets) {
		return Segment{}, false
	}
	d := presets[p].period
	return Segment{On: d, Off: d}, true
}

// DefaultRepeat is the repeat count used when none is given.
func (p Preset) DefaultRepeat() int {
	if int(p) >= len(presets) {
		return 1
	}
	return presets[p].repeat
}

// ParsePreset maps "fast", "medium" or "slow" to a Preset.
func ParsePreset(s string) (Preset, bool) {
	for i, p := range presets {
		if p.name == s {
			return Preset(i), true
		}
	}
	return 0, false
}
