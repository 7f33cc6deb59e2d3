package gesture

import (
	"log/slog"
	"time"

	"indicator-go/errcode"
	"indicator-go/hal"
	"indicator-go/x/timex"
)

const (
	DefaultLongPressTimeout = 3 * time.Second
	// DefaultPollPeriod is coarse enough that contact bounce settles between
	// samples; no separate debounce filter is applied.
	DefaultPollPeriod = 20 * time.Millisecond
	// DoubleClickWindow is the widest release-to-release gap that still pairs.
	DoubleClickWindow = 148 * time.Millisecond
)

// Behavior selects when a long press is reported.
type Behavior uint8

const (
	// TriggerWhileHeld fires once per elapsed timeout while the button stays down.
	TriggerWhileHeld Behavior = iota
	// TriggerOnRelease fires once, on release, with the full held duration.
	TriggerOnRelease
)

func (b Behavior) String() string {
	switch b {
	case TriggerWhileHeld:
		return "hold"
	case TriggerOnRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ParseBehavior accepts "hold" (or "") and "release".
func ParseBehavior(s string) (Behavior, error) {
	switch s {
	case "", "hold":
		return TriggerWhileHeld, nil
	case "release":
		return TriggerOnRelease, nil
	}
	return 0, errcode.New(errcode.ConfigError, "gesture.ParseBehavior", "unknown behavior "+s)
}

// Config is read once by New.
//
// At least one callback must be set, and OnClick and OnDoubleClick are
// mutually exclusive. OnLongPress may accompany either.
type Config struct {
	// Pin is the button line, active-low (pressed reads false).
	Pin hal.Input

	OnClick       func()
	OnDoubleClick func()
	OnLongPress   func(held time.Duration)

	LongPressTimeout time.Duration // default 3 s
	Behavior         Behavior

	Clock  timex.Clock  // default timex.Mono
	Ticker timex.Ticker // default timex.NewTicker()
	Logger *slog.Logger // default slog.Default()
}

func (c Config) validate() error {
	const op = "gesture.New"
	switch {
	case c.Pin == nil:
		return errcode.New(errcode.ConfigError, op, "pin must be specified")
	case c.OnClick == nil && c.OnDoubleClick == nil && c.OnLongPress == nil:
		return errcode.New(errcode.ConfigError, op, "set at least one of OnClick, OnDoubleClick or OnLongPress")
	case c.OnClick != nil && c.OnDoubleClick != nil:
		return errcode.New(errcode.ConfigError, op, "OnClick and OnDoubleClick cannot both be set")
	case c.LongPressTimeout < 0:
		return errcode.New(errcode.ConfigError, op, "long press timeout must be >= 0")
	case c.Behavior > TriggerOnRelease:
		return errcode.New(errcode.ConfigError, op, "unknown long press behavior")
	}
	return nil
}
