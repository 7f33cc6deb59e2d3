// Package morse translates text into International Morse timing.
//
// Timing, in units:
//
//	dot 1, dash 3
//	gap inside a letter 1
//	gap between letters 3
//	gap for each space 7
//
// Only a-z, 0-9 and space are supported; input is lower-cased first and
// anything else is dropped.
package morse

import (
	"log/slog"
	"strings"
	"time"
)

// DefaultUnit is the dot length.
const DefaultUnit = 200 * time.Millisecond

// Unit is one timed step of a translation: lit for Duration when Pulse is
// true, dark otherwise.
type Unit struct {
	Duration time.Duration
	Pulse    bool
}

var table = map[byte]string{
	'a': ".-", 'b': "-...", 'c': "-.-.", 'd': "-..", 'e': ".", 'f': "..-.",
	'g': "--.", 'h': "....", 'i': "..", 'j': ".---", 'k': "-.-", 'l': ".-..",
	'm': "--", 'n': "-.", 'o': "---", 'p': ".--.", 'q': "--.-", 'r': ".-.",
	's': "...", 't': "-", 'u': "..-", 'v': "...-", 'w': ".--", 'x': "-..-",
	'y': "-.--", 'z': "--..",
	'1': ".----", '2': "..---", '3': "...--", '4': "....-", '5': ".....",
	'6': "-....", '7': "--...", '8': "---..", '9': "----.", '0': "-----",
}

// Supported reports whether c survives Filter.
func Supported(c rune) bool {
	if c == ' ' {
		return true
	}
	if c > 0x7f {
		return false
	}
	_, ok := table[byte(c)]
	return ok
}

// Pattern returns the dot/dash pattern of c ("" for space).
func Pattern(c rune) (string, bool) {
	if c == ' ' {
		return "", true
	}
	if c > 0x7f {
		return "", false
	}
	p, ok := table[byte(c)]
	return p, ok
}

// Filter lower-cases msg and keeps only supported characters.
func Filter(msg string) (kept string, dropped int) {
	var b strings.Builder
	for _, c := range strings.ToLower(msg) {
		if Supported(c) {
			b.WriteRune(c)
		} else {
			dropped++
		}
	}
	return b.String(), dropped
}

// Encoder translates messages with a configurable unit length.
// The zero value uses DefaultUnit and slog.Default().
type Encoder struct {
	Unit   time.Duration
	Logger *slog.Logger
}

// Translate filters msg and returns its timed units. Unsupported characters
// are reported through the logger, never as an error.
func (e Encoder) Translate(msg string) []Unit {
	u := e.Unit
	if u <= 0 {
		u = DefaultUnit
	}
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}

	kept, dropped := Filter(msg)
	if dropped > 0 {
		log.Warn("morse: dropped unsupported characters", "message", msg, "dropped", dropped)
	}
	log.Debug("morse: translated", "text", kept)

	var out []Unit
	for i := 0; i < len(kept); i++ {
		c := kept[i]
		if c == ' ' {
			out = append(out, Unit{Duration: 7 * u})
			continue
		}
		code := table[c]
		for j := 0; j < len(code); j++ {
			d := u
			if code[j] == '-' {
				d = 3 * u
			}
			out = append(out, Unit{Duration: d, Pulse: true})
			if j < len(code)-1 {
				out = append(out, Unit{Duration: u})
			}
		}
		if i+1 < len(kept) && kept[i+1] != ' ' {
			out = append(out, Unit{Duration: 3 * u})
		}
	}
	return out
}

// Translate uses the zero Encoder.
func Translate(msg string) []Unit { return Encoder{}.Translate(msg) }

// Total returns the summed duration of units.
func Total(units []Unit) time.Duration {
	var d time.Duration
	for _, x := range units {
		d += x.Duration
	}
	return d
}
