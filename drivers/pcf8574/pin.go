package pcf8574

import (
	"sync"

	"indicator-go/hal"
)

// Pin adapts one expander line to hal.Pin.
//
// hal.Pin has no error returns, so bus failures are recorded and exposed via
// Err. A failed read reports the last good level.
type Pin struct {
	dev *Device
	n   int

	mu   sync.Mutex
	last bool
	err  error
}

var _ hal.Pin = (*Pin)(nil)

// Pin returns line n as a hal.Pin.
func (d *Device) Pin(n int) (*Pin, error) {
	if n < 0 || n > 7 {
		return nil, ErrPin
	}
	return &Pin{dev: d, n: n, last: true}, nil
}

func (p *Pin) Number() int { return p.n }

// ConfigureInput releases the line to the internal weak pull-up.
func (p *Pin) ConfigureInput(pull hal.Pull) error {
	if pull == hal.PullDown {
		return ErrPullDown
	}
	return p.dev.SetPin(p.n, true)
}

func (p *Pin) ConfigureOutput(initial bool) error { return p.dev.SetPin(p.n, initial) }

func (p *Pin) Set(level bool) { p.record(p.dev.SetPin(p.n, level)) }

func (p *Pin) Get() bool {
	v, err := p.dev.GetPin(p.n)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	if err == nil {
		p.last = v
	}
	return p.last
}

func (p *Pin) Toggle() {
	p.Set(p.dev.Latch()&(1<<p.n) == 0)
}

// Err returns the error from the most recent bus operation, if any.
func (p *Pin) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pin) record(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}
