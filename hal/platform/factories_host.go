//go:build !rp2040 && !rp2350 && !(linux && (arm || arm64))

package platform

import (
	"sync"

	"indicator-go/hal"

	"tinygo.org/x/drivers"
)

// Init is a no-op on host builds.
func Init() error { return nil }

// ----------------------------- I²C (host) ------------------------------------

// HostI2C implements tinygo drivers.I2C for host-side runs. Reads return the
// bytes last written to the same address, which is enough for quasi-bidirectional
// expanders.
type HostI2C struct {
	mu   sync.Mutex
	regs map[uint16][]byte
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.regs == nil {
		h.regs = make(map[uint16][]byte)
	}
	if len(w) > 0 {
		h.regs[addr] = append([]byte(nil), w...)
	}
	if len(r) > 0 {
		copy(r, h.regs[addr])
	}
	return nil
}

type hostI2CFactory struct {
	buses map[string]drivers.I2C
}

func (f *hostI2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// DefaultI2CFactory creates inert host I²C buses "i2c0" and "i2c1".
func DefaultI2CFactory() hal.I2CBusFactory {
	return &hostI2CFactory{
		buses: map[string]drivers.I2C{
			"i2c0": &HostI2C{},
			"i2c1": &HostI2C{},
		},
	}
}

// ----------------------------- GPIO (host) -----------------------------------

// DefaultPinFactory provides in-memory pins.
func DefaultPinFactory() hal.PinFactory { return &hal.FakePinFactory{} }

// ----------------------------- Console (host) --------------------------------

// DefaultConsole has no UART on host builds; callers use stdin/stdout instead.
func DefaultConsole() (hal.SerialPort, bool) { return nil, false }
