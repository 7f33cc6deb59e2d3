package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicator-go/errcode"
	"indicator-go/hal"
	"indicator-go/x/timex"
)

const tick = 20 * time.Millisecond

type stubTicker struct {
	period  time.Duration
	fn      func()
	starts  int
	stopped int
}

func (s *stubTicker) Start(period time.Duration, fn func()) error {
	s.period, s.fn = period, fn
	s.starts++
	return nil
}

func (s *stubTicker) Stop() { s.stopped++ }

type rig struct {
	pin   *hal.FakePin
	clk   *timex.ManualClock
	det   *Detector
	tk    *stubTicker
	click int
	dbl   int
	longs []time.Duration
}

// newRig builds a detector over a released button. cfg callbacks that are
// non-nil are replaced by recorders.
func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{pin: hal.NewFakePin(5), clk: &timex.ManualClock{}, tk: &stubTicker{}}
	require.NoError(t, r.pin.ConfigureInput(hal.PullUp))
	cfg.Pin = r.pin
	cfg.Clock = r.clk
	cfg.Ticker = r.tk
	if cfg.OnClick != nil {
		cfg.OnClick = func() { r.click++ }
	}
	if cfg.OnDoubleClick != nil {
		cfg.OnDoubleClick = func() { r.dbl++ }
	}
	if cfg.OnLongPress != nil {
		cfg.OnLongPress = func(d time.Duration) { r.longs = append(r.longs, d) }
	}
	d, err := New(cfg)
	require.NoError(t, err)
	r.det = d
	return r
}

func (r *rig) run(level bool, d time.Duration) {
	r.pin.Set(level)
	for n := d / tick; n > 0; n-- {
		r.clk.Advance(tick)
		r.det.Tick()
	}
}

func (r *rig) hold(d time.Duration)    { r.run(false, d) }
func (r *rig) release(d time.Duration) { r.run(true, d) }

func nop() {}

func nopLong(time.Duration) {}

func TestNew_Validation(t *testing.T) {
	pin := hal.NewFakePin(1)
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no pin", Config{OnClick: nop}},
		{"no callback", Config{Pin: pin}},
		{"click and double", Config{Pin: pin, OnClick: nop, OnDoubleClick: nop}},
		{"all three", Config{Pin: pin, OnClick: nop, OnDoubleClick: nop, OnLongPress: nopLong}},
		{"negative timeout", Config{Pin: pin, OnClick: nop, LongPressTimeout: -time.Second}},
		{"bad behavior", Config{Pin: pin, OnClick: nop, Behavior: 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(tc.cfg)
			assert.Nil(t, d)
			assert.Equal(t, errcode.ConfigError, errcode.Of(err))
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	d, err := New(Config{Pin: hal.NewFakePin(1), OnLongPress: nopLong})
	require.NoError(t, err)
	assert.Equal(t, DefaultLongPressTimeout, d.Timeout())
}

func TestSingleClick(t *testing.T) {
	r := newRig(t, Config{OnClick: nop})
	r.release(100 * time.Millisecond)
	r.hold(100 * time.Millisecond)
	assert.True(t, r.det.Snapshot().Armed)
	r.release(200 * time.Millisecond)

	assert.Equal(t, 1, r.click)
	assert.Equal(t, Snapshot{}, r.det.Snapshot())
}

func TestDoubleClick(t *testing.T) {
	r := newRig(t, Config{OnDoubleClick: nop})
	r.hold(60 * time.Millisecond)
	r.release(60 * time.Millisecond)
	assert.Equal(t, 0, r.dbl)
	assert.Equal(t, uint32(1), r.det.Snapshot().Streak)

	r.hold(60 * time.Millisecond)
	r.release(300 * time.Millisecond)
	assert.Equal(t, 1, r.dbl)
	assert.Equal(t, uint32(0), r.det.Snapshot().Streak)
}

func TestDoubleClick_SlowPairDoesNotFire(t *testing.T) {
	r := newRig(t, Config{OnDoubleClick: nop})
	r.hold(60 * time.Millisecond)
	r.release(300 * time.Millisecond)
	r.hold(60 * time.Millisecond)
	r.release(60 * time.Millisecond)
	assert.Equal(t, 0, r.dbl, "releases 360ms apart must not pair")

	// The late release restarted the streak, so a quick follow-up pairs.
	r.hold(60 * time.Millisecond)
	r.release(300 * time.Millisecond)
	assert.Equal(t, 1, r.dbl)
}

func TestDoubleClick_WindowEdge(t *testing.T) {
	r := newRig(t, Config{OnDoubleClick: nop})
	// Release-to-release of 140ms pairs; 160ms does not.
	r.hold(60 * time.Millisecond)
	r.release(80 * time.Millisecond)
	r.hold(60 * time.Millisecond)
	r.release(300 * time.Millisecond)
	assert.Equal(t, 1, r.dbl)

	r.hold(60 * time.Millisecond)
	r.release(100 * time.Millisecond)
	r.hold(60 * time.Millisecond)
	r.release(300 * time.Millisecond)
	assert.Equal(t, 1, r.dbl)
}

func TestLongPress_WhileHeldRepeats(t *testing.T) {
	r := newRig(t, Config{OnClick: nop, OnLongPress: nopLong, LongPressTimeout: time.Second})
	r.hold(3*time.Second + 100*time.Millisecond)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, r.longs)
	assert.True(t, r.det.Snapshot().Consumed)

	r.release(100 * time.Millisecond)
	assert.Len(t, r.longs, 3)
	assert.Equal(t, 0, r.click, "a consumed press never becomes a click")
}

func TestLongPress_WhileHeldShortPressIsClick(t *testing.T) {
	r := newRig(t, Config{OnClick: nop, OnLongPress: nopLong, LongPressTimeout: time.Second})
	r.hold(900 * time.Millisecond)
	r.release(100 * time.Millisecond)
	assert.Empty(t, r.longs)
	assert.Equal(t, 1, r.click)
}

func TestLongPress_OnRelease(t *testing.T) {
	r := newRig(t, Config{
		OnClick:          nop,
		OnLongPress:      nopLong,
		LongPressTimeout: time.Second,
		Behavior:         TriggerOnRelease,
	})
	r.hold(1500 * time.Millisecond)
	assert.Empty(t, r.longs, "nothing fires while held")
	r.release(100 * time.Millisecond)

	require.Len(t, r.longs, 1)
	assert.Equal(t, 1500*time.Millisecond, r.longs[0])
	assert.Equal(t, 0, r.click)

	r.hold(500 * time.Millisecond)
	r.release(100 * time.Millisecond)
	assert.Len(t, r.longs, 1)
	assert.Equal(t, 1, r.click)
}

func TestLongPress_OnReleaseResetsStreak(t *testing.T) {
	r := newRig(t, Config{
		OnDoubleClick:    nop,
		OnLongPress:      nopLong,
		LongPressTimeout: 200 * time.Millisecond,
		Behavior:         TriggerOnRelease,
	})
	r.hold(60 * time.Millisecond)
	r.release(40 * time.Millisecond)
	r.hold(300 * time.Millisecond)
	r.release(300 * time.Millisecond)

	assert.Len(t, r.longs, 1)
	assert.Equal(t, 0, r.dbl)
	assert.Equal(t, uint32(0), r.det.Snapshot().Streak)
}

func TestPressedAtStartup(t *testing.T) {
	r := newRig(t, Config{OnClick: nop})
	// First sample already low: treated as a fresh press.
	r.hold(40 * time.Millisecond)
	r.release(40 * time.Millisecond)
	assert.Equal(t, 1, r.click)
}

func TestStartRelease(t *testing.T) {
	r := newRig(t, Config{OnClick: nop})
	require.NoError(t, r.det.Start(0))
	assert.Equal(t, DefaultPollPeriod, r.tk.period)
	require.NoError(t, r.det.Start(0))
	assert.Equal(t, 1, r.tk.starts, "second Start is a no-op")

	r.det.Release()
	r.det.Release()
	assert.Equal(t, 1, r.tk.stopped)

	// Ticks after release are ignored.
	r.hold(40 * time.Millisecond)
	r.release(40 * time.Millisecond)
	assert.Equal(t, 0, r.click)

	assert.Equal(t, errcode.Released, errcode.Of(r.det.Start(0)))
}

func TestStart_RealTicker(t *testing.T) {
	pin := hal.NewFakePin(2)
	require.NoError(t, pin.ConfigureInput(hal.PullUp))
	clicks := make(chan struct{}, 1)
	d, err := New(Config{Pin: pin, OnClick: func() { clicks <- struct{}{} }})
	require.NoError(t, err)
	require.NoError(t, d.Start(5*time.Millisecond))
	defer d.Release()

	pin.Set(false)
	time.Sleep(30 * time.Millisecond)
	pin.Set(true)

	select {
	case <-clicks:
	case <-time.After(time.Second):
		t.Fatal("click not reported")
	}
}

func TestParseBehavior(t *testing.T) {
	b, err := ParseBehavior("release")
	require.NoError(t, err)
	assert.Equal(t, TriggerOnRelease, b)

	b, err = ParseBehavior("")
	require.NoError(t, err)
	assert.Equal(t, TriggerWhileHeld, b)

	_, err = ParseBehavior("sometimes")
	assert.Equal(t, errcode.ConfigError, errcode.Of(err))
}
