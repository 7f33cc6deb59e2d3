//go:build linux && (arm || arm64) && !(rp2040 || rp2350)

package platform

import (
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"indicator-go/hal"
)

var initOnce struct {
	sync.Once
	err error
}

// Init prepares periph host drivers. Safe to call repeatedly.
func Init() error {
	initOnce.Do(func() { _, initOnce.err = host.Init() })
	return initOnce.err
}

// DefaultPinFactory addresses Raspberry Pi pins by BCM number ("GPIO%d").
func DefaultPinFactory() hal.PinFactory { return periphPinFactory{} }

// DefaultI2CFactory maps "i2c0".."i2cN" onto periph bus number N.
// periph's i2c.Bus already has the drivers.I2C Tx signature.
func DefaultI2CFactory() hal.I2CBusFactory { return &periphI2CFactory{buses: map[string]drivers.I2C{}} }

// DefaultConsole has no dedicated UART; the CLI uses stdin/stdout.
func DefaultConsole() (hal.SerialPort, bool) { return nil, false }

// ---- GPIO ----

type periphPinFactory struct{}

func (periphPinFactory) ByNumber(n int) (hal.Pin, bool) {
	if n < 0 || Init() != nil {
		return nil, false
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if p == nil {
		return nil, false
	}
	return &periphPin{p: p, n: n}, true
}

type periphPin struct {
	p gpio.PinIO
	n int
}

func (r *periphPin) ConfigureInput(pull hal.Pull) error {
	pp := gpio.Float
	switch pull {
	case hal.PullUp:
		pp = gpio.PullUp
	case hal.PullDown:
		pp = gpio.PullDown
	}
	return r.p.In(pp, gpio.NoEdge)
}

func (r *periphPin) ConfigureOutput(initial bool) error { return r.p.Out(gpio.Level(initial)) }

// Set ignores write errors; periph reports them only for unconfigured pins.
func (r *periphPin) Set(level bool) { _ = r.p.Out(gpio.Level(level)) }
func (r *periphPin) Get() bool      { return r.p.Read() == gpio.High }
func (r *periphPin) Toggle()        { r.Set(!r.Get()) }
func (r *periphPin) Number() int    { return r.n }

// ---- I²C ----

type periphI2CFactory struct {
	mu    sync.Mutex
	buses map[string]drivers.I2C
}

func (f *periphI2CFactory) ByID(id string) (drivers.I2C, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.buses[id]; ok {
		return b, true
	}
	var n int
	if _, err := fmt.Sscanf(id, "i2c%d", &n); err != nil || Init() != nil {
		return nil, false
	}
	b, err := i2creg.Open(strconv.Itoa(n))
	if err != nil {
		return nil, false
	}
	f.buses[id] = b
	return b, true
}
