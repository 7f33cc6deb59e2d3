package hal

import "sync"

// FakePin is an in-memory Pin for host builds, tests and the simulator.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	pull    Pull
	writes  int
	watch   func(level bool)
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) ConfigureInput(pull Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	// A pulled-up input idles high.
	if pull == PullUp {
		p.level = true
	}
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.mu.Unlock()
	p.Set(initial)
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.writes++
	w := p.watch
	p.mu.Unlock()
	if w != nil {
		w(level)
	}
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

func (p *FakePin) Toggle()     { p.Set(!p.Get()) }
func (p *FakePin) Number() int { return p.number }

// IsOutput reports whether the pin was last configured as an output.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// PullMode returns the pull configured by the last ConfigureInput.
func (p *FakePin) PullMode() Pull {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pull
}

// Writes counts Set calls.
func (p *FakePin) Writes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writes
}

// Watch registers fn to observe every Set. fn runs on the caller's goroutine.
func (p *FakePin) Watch(fn func(level bool)) {
	p.mu.Lock()
	p.watch = fn
	p.mu.Unlock()
}

// FakePinFactory returns stable *FakePin instances per number.
type FakePinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *FakePinFactory) ByNumber(n int) (Pin, bool) {
	if n < 0 {
		return nil, false
	}
	return f.Get(n), true
}

// Get exposes the underlying *FakePin, creating it on first use.
func (f *FakePinFactory) Get(n int) *FakePin {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = NewFakePin(n)
		f.pins[n] = p
	}
	return p
}
