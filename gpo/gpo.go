package gpo

import (
	"errors"
	"fmt"

	"github.com/antongulenko/gpo/i2c"
	"github.com/antongulenko/gpo/mcp23009"
	log "github.com/sirupsen/logrus"
)

// Error kinds returned by Init and SetValue. Details are wrapped around
// these values, classify with errors.Is.
var (
	// Init: invalid NumOut. Fatal for the instance, nothing was written.
	ErrNumOutRange = errors.New("number of outputs out of range")
	// Init: a configuration register write failed. The device may retry
	// initialization from scratch.
	ErrConfigWrite = errors.New("failed to configure GPO device")
	// SetValue was called without a successful Init
	ErrNotReady = errors.New("GPO device is not initialized")
	// SetValue: channel outside 0..NumOut. State and chip are unchanged.
	ErrChannelRange = errors.New("channel out of range")
	// The bus transport reported a failure
	ErrBusWrite = errors.New("I2C write failed")
	// The bus transferred fewer or more bytes than requested
	ErrShortWrite = errors.New("short I2C write")
)

// Gpo drives an MCP23009 expander as a one-hot output selector: of the
// NumOut enabled output pins, at most one is asserted at any time. Channel 0
// means all outputs off, channel n (1..NumOut) asserts pin n-1.
//
// A Gpo performs no locking: use one instance per chip and serialize access
// externally (single goroutine, or a bus wrapped in an i2c.Sequencer plus a
// single writer for SetValue).
type Gpo struct {
	bus i2c.Bus

	I2cAddr byte
	NumOut  int

	inoutMask byte
	value     int
	ready     bool
}

func New(bus i2c.Bus, i2cAddr byte, numOut int) *Gpo {
	return &Gpo{
		bus:     bus,
		I2cAddr: i2cAddr,
		NumOut:  numOut,
	}
}

// Init validates NumOut and performs the two-phase chip setup: the direction
// mask to IODIR, then all-ones to GPPU (pull-ups for the remaining input
// pins). Init does not touch the data register, so the pin state is whatever
// the chip powered up with: callers that need a defined state must follow up
// with SetValue(0).
func (g *Gpo) Init() error {
	if g.NumOut < 0 || g.NumOut > mcp23009.NUM_PINS {
		return fmt.Errorf("%w: %v (must be 0..%v)", ErrNumOutRange, g.NumOut, mcp23009.NUM_PINS)
	}
	g.inoutMask = mcp23009.OutputMask(g.NumOut)
	log.Printf("Initializing one-hot GPO at %#02x (%v outputs, direction mask %#02x)...", g.I2cAddr, g.NumOut, g.inoutMask)
	if err := g.writeRegister(mcp23009.IODIR, g.inoutMask); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	if err := g.writeRegister(mcp23009.GPPU, mcp23009.PULLUP_ALL); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	g.value = 0
	g.ready = true
	return nil
}

// SetValue selects the active output channel. The cached value only changes
// after the chip confirmed the full write: on any failure Value() still
// reports the previous channel.
func (g *Gpo) SetValue(channel int) error {
	if !g.ready {
		return ErrNotReady
	}
	if channel < 0 || channel > g.NumOut {
		return fmt.Errorf("%w: %v (device has %v outputs)", ErrChannelRange, channel, g.NumOut)
	}
	if err := g.writeRegister(mcp23009.GPIO, mcp23009.ChannelMask(channel)); err != nil {
		return err
	}
	g.value = channel
	return nil
}

// Off deasserts all outputs.
func (g *Gpo) Off() error {
	return g.SetValue(0)
}

// Value returns the last successfully committed channel. No bus access.
func (g *Gpo) Value() int {
	return g.value
}

// Scale returns the fixed scale factor of the raw channel value.
func (g *Gpo) Scale() int {
	return 1
}

func (g *Gpo) writeRegister(register byte, value byte) error {
	n, err := g.bus.I2cWrite(g.I2cAddr, register, value)
	if err != nil {
		return fmt.Errorf("%w: register %#02x: %v", ErrBusWrite, register, err)
	}
	if n != 2 {
		return fmt.Errorf("%w: register %#02x: wrote %v byte instead of 2", ErrShortWrite, register, n)
	}
	return nil
}
