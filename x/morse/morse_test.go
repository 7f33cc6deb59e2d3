package morse

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const u = DefaultUnit

func on(n int) Unit  { return Unit{Duration: time.Duration(n) * u, Pulse: true} }
func off(n int) Unit { return Unit{Duration: time.Duration(n) * u} }

func TestTranslateSOS(t *testing.T) {
	want := []Unit{
		on(1), off(1), on(1), off(1), on(1), off(3),
		on(3), off(1), on(3), off(1), on(3), off(3),
		on(1), off(1), on(1), off(1), on(1),
	}
	assert.Equal(t, want, Translate("sos"))
}

func TestTranslateWordGapReplacesLetterGap(t *testing.T) {
	// "e t": dot, word gap, dash. No 3-unit gap before the space.
	assert.Equal(t, []Unit{on(1), off(7), on(3)}, Translate("e t"))

	// Leading, doubled and trailing spaces each contribute one word gap.
	assert.Equal(t, []Unit{off(7), on(1), off(7), off(7)}, Translate(" e  "))
}

func TestTranslateIsCaseInsensitiveAndFilters(t *testing.T) {
	assert.Equal(t, Translate("sos"), Translate("S.O-S!"))
	assert.Empty(t, Translate("¿?"))
	assert.Empty(t, Translate(""))
}

func TestTranslateSingleSymbolLetters(t *testing.T) {
	assert.Equal(t, []Unit{on(1), off(3), on(3)}, Translate("et"))
}

func TestEncoderUnitAndLogging(t *testing.T) {
	var buf bytes.Buffer
	e := Encoder{
		Unit:   10 * time.Millisecond,
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	}
	got := e.Translate("a#")
	require.Len(t, got, 3)
	assert.Equal(t, Unit{Duration: 10 * time.Millisecond, Pulse: true}, got[0])
	assert.Equal(t, Unit{Duration: 10 * time.Millisecond}, got[1])
	assert.Equal(t, Unit{Duration: 30 * time.Millisecond, Pulse: true}, got[2])
	assert.Contains(t, buf.String(), "dropped=1")
}

func TestFilterAndPattern(t *testing.T) {
	kept, dropped := Filter("Hello, World 42")
	assert.Equal(t, "hello world 42", kept)
	assert.Equal(t, 1, dropped)

	p, ok := Pattern('q')
	assert.True(t, ok)
	assert.Equal(t, "--.-", p)
	_, ok = Pattern('é')
	assert.False(t, ok)
	assert.False(t, Supported('_'))
}

func TestTotal(t *testing.T) {
	// dots 6x1, dashes 3x3, intra-letter gaps 6x1, letter gaps 2x3.
	assert.Equal(t, 27*u, Total(Translate("sos")))
}
