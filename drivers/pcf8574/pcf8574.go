// Package pcf8574 provides a driver for the PCF8574/PCF8574A 8-bit I²C GPIO
// expander.
//
// The part has no direction register: every line is quasi-bidirectional.
// Writing 1 releases the line to a weak pull-up (usable as an input), writing
// 0 sinks it hard. A read returns the level present on all eight lines.
//
// NOTE: a button wired to ground and an LED wired from VCC through a resistor
// are both active-low on this part, which is how the boards in this repo use it.
package pcf8574

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

// I2C addresses. A0..A2 select the low three bits.
const (
	Address  = 0x20 // PCF8574
	AddressA = 0x38 // PCF8574A
)

// Errors returned by the driver.
var (
	ErrPin      = errors.New("pcf8574: pin out of range")
	ErrPullDown = errors.New("pcf8574: pull-down not supported")
	errNilBus   = errors.New("pcf8574: nil bus")
)

// Device wraps an I2C connection to a PCF8574 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	mu    sync.Mutex
	latch uint8 // last value written to the port
	buf   [1]byte
}

// New creates a Device on bus at the default address. The bus must already be
// configured. It does not touch the device; call Configure.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address, latch: 0xFF}
}

// Configure writes the initial port value (all lines released when initial is 0xFF).
func (d *Device) Configure(initial uint8) error {
	if d.bus == nil {
		return errNilBus
	}
	return d.Write(initial)
}

// Write sets all eight port latches.
func (d *Device) Write(v uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeLocked(v)
}

func (d *Device) writeLocked(v uint8) error {
	d.buf[0] = v
	if err := d.bus.Tx(d.Address, d.buf[:], nil); err != nil {
		return err
	}
	d.latch = v
	return nil
}

// Read samples all eight lines.
func (d *Device) Read() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var r [1]byte
	if err := d.bus.Tx(d.Address, nil, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// Latch returns the last written port value.
func (d *Device) Latch() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latch
}

// SetPin drives line n high (released) or low, leaving the other latches intact.
func (d *Device) SetPin(n int, level bool) error {
	if n < 0 || n > 7 {
		return ErrPin
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.latch
	if level {
		v |= 1 << n
	} else {
		v &^= 1 << n
	}
	if v == d.latch {
		return nil
	}
	return d.writeLocked(v)
}

// GetPin reads the level on line n.
func (d *Device) GetPin(n int) (bool, error) {
	if n < 0 || n > 7 {
		return false, ErrPin
	}
	v, err := d.Read()
	if err != nil {
		return false, err
	}
	return v&(1<<n) != 0, nil
}
