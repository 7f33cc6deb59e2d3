package timex

import (
	"sync"
	"sync/atomic"
	"time"

	"indicator-go/errcode"
)

// Clock is a monotonic millisecond clock.
type Clock interface {
	NowMs() int64
}

var epoch = time.Now()

// NowMs returns monotonic milliseconds since process start.
func NowMs() int64 { return time.Since(epoch).Milliseconds() }

// Mono is the process monotonic Clock.
type Mono struct{}

func (Mono) NowMs() int64 { return NowMs() }

// ManualClock only moves when told to. Safe for concurrent use.
type ManualClock struct{ ms atomic.Int64 }

func (c *ManualClock) NowMs() int64            { return c.ms.Load() }
func (c *ManualClock) Set(ms int64)            { c.ms.Store(ms) }
func (c *ManualClock) Advance(d time.Duration) { c.ms.Add(d.Milliseconds()) }

// Ticker invokes a callback at a fixed period until stopped.
type Ticker interface {
	Start(period time.Duration, fn func()) error
	Stop()
}

// GoTicker is a Ticker backed by a goroutine and time.Ticker.
// Callbacks run one at a time on that goroutine.
type GoTicker struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewTicker() *GoTicker { return &GoTicker{} }

func (t *GoTicker) Start(period time.Duration, fn func()) error {
	if period <= 0 || fn == nil {
		return errcode.New(errcode.InvalidArgument, "timex.Start", "period and callback required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return errcode.New(errcode.InvalidArgument, "timex.Start", "already running")
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done

	go func() {
		defer close(done)
		tk := time.NewTicker(period)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
	return nil
}

// Stop halts the ticker and waits for an in-flight callback to return.
// It must not be called from inside the callback.
func (t *GoTicker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
