package gesture

import "time"

type phase uint8

const (
	phaseIdle     phase = iota
	phaseArmed          // press registered, not yet resolved
	phaseConsumed       // press already produced a long press while held
)

func (p phase) String() string {
	switch p {
	case phaseArmed:
		return "armed"
	case phaseConsumed:
		return "consumed"
	default:
		return "idle"
	}
}

// state is the detector record. It only changes inside step.
type state struct {
	phase   phase
	holding bool // previous tick's reading

	pressStart int64 // ms, when the current press was first seen
	fireRef    int64 // ms, reference for the next while-held long press
	streak     uint32

	lastRelease int64
	released    bool // lastRelease is valid
}

type eventKind uint8

const (
	evNone eventKind = iota
	evClick
	evDoubleClick
	evLongPress
)

func (k eventKind) String() string {
	switch k {
	case evClick:
		return "click"
	case evDoubleClick:
		return "double_click"
	case evLongPress:
		return "long_press"
	default:
		return "none"
	}
}

type event struct {
	kind eventKind
	held time.Duration
}

type params struct {
	timeoutMs   int64
	behavior    Behavior
	doubleClick bool // clicks pair up instead of firing singly
}

// step advances s by one sample. holding is the logical (inverted) reading.
func step(s state, holding bool, now int64, p params) (state, event) {
	var ev event
	prev := s.holding
	s.holding = holding

	if holding {
		switch {
		case prev && s.phase != phaseIdle:
			if p.behavior == TriggerWhileHeld && now-s.fireRef >= p.timeoutMs {
				ev = event{kind: evLongPress, held: ms(now - s.pressStart)}
				s.phase = phaseConsumed
				s.fireRef = now
			}
		case !prev && s.phase == phaseIdle:
			s.phase = phaseArmed
			s.pressStart = now
			s.fireRef = now
		}
		return s, ev
	}

	switch s.phase {
	case phaseArmed:
		held := now - s.pressStart
		if held >= p.timeoutMs && p.behavior == TriggerOnRelease {
			ev = event{kind: evLongPress, held: ms(held)}
			s.streak = 0
		} else if p.doubleClick {
			if s.released && now-s.lastRelease <= DoubleClickWindow.Milliseconds() {
				s.streak++
			} else {
				s.streak = 1
			}
			if s.streak >= 2 {
				ev = event{kind: evDoubleClick}
				s.streak = 0
			}
			s.lastRelease = now
			s.released = true
		} else {
			ev = event{kind: evClick}
		}
		s.phase = phaseIdle
	case phaseConsumed:
		s.phase = phaseIdle
	default:
		s.fireRef = now
	}
	return s, ev
}

func ms(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
