// Package hmcs40 models the I/O port surface of a Hitachi HMCS40 series
// 4 bit MCU: eight 4 bit R ports and the 16 discrete D pins, plus the
// program ROM and the external reset pin. It does not interpret MCU
// instructions. The chess program inside these parts is opaque mask ROM,
// so whatever stands in for it (a firmware interpreter, a scripted scan
// loop, a test) drives the ports through WriteR/WriteD/ReadD and the
// installed hooks carry the values out to the peripherals.
package hmcs40

import (
	"errors"
	"fmt"

	"github.com/cxgboard/emu/io"
	"github.com/cxgboard/emu/line"
	"github.com/cxgboard/emu/memory"
)

var (
	// The D pins form a word wide bidirectional port.
	_ = io.PortIn16(&Chip{})
	_ = io.PortOut16(&Chip{})
	// The reset pin is externally drivable.
	_ = line.Receiver(&resetPin{})
)

const (
	kNumRPorts = 8

	kRMask = uint8(0x0F)

	// D pins with nothing driving them read high through pullups.
	kDPullups = uint16(0xFFFF)
)

// Chip holds the port state and callback hooks for one MCU.
type Chip struct {
	clock int64
	rom   memory.Bank

	writeR [kNumRPorts]func(uint8)
	writeD func(uint16)
	readD  func() uint16

	rOut      [kNumRPorts]uint8
	dOut      uint16
	resetHeld bool
}

// ChipDef defines the pieces needed to set up a Chip. Hook entries may be
// nil for unconnected ports.
type ChipDef struct {
	// Clock is the MCU clock in Hz. Informational, the chip itself has no
	// instruction timing, but the machine derives all time based behavior
	// from it.
	Clock int64

	// Rom is the program memory image. Required.
	Rom memory.Bank

	// WriteR hooks the 4 bit R port outputs. WriteR[n] sees every write
	// to port Rn, already masked to 4 bits.
	WriteR [kNumRPorts]func(uint8)

	// WriteD hooks the 16 bit D port output.
	WriteD func(uint16)

	// ReadD synthesizes the 16 bit D port input on demand. A read with no
	// hook installed sees the pullups.
	ReadD func() uint16
}

// Init returns a fully initialized Chip in its power-on state.
func Init(def *ChipDef) (*Chip, error) {
	if def.Clock <= 0 {
		return nil, fmt.Errorf("invalid Clock: %d", def.Clock)
	}
	if def.Rom == nil {
		return nil, errors.New("Rom must be non-nil")
	}
	c := &Chip{
		clock:  def.Clock,
		rom:    def.Rom,
		writeR: def.WriteR,
		writeD: def.WriteD,
		readD:  def.ReadD,
	}
	c.powerOnPorts()
	return c, nil
}

// powerOnPorts forces all output latches to their power-on defaults.
func (c *Chip) powerOnPorts() {
	for i := range c.rOut {
		c.rOut[i] = 0
	}
	c.dOut = 0
}

// WriteR drives a 4 bit value onto the given R port. The port index
// aliases onto the 8 wired ports and the value is masked to 4 bits. The
// installed hook, if any, runs synchronously.
func (c *Chip) WriteR(port int, val uint8) {
	port &= kNumRPorts - 1
	val &= kRMask
	c.rOut[port] = val
	if fn := c.writeR[port]; fn != nil {
		fn(val)
	}
}

// WriteD drives a 16 bit value onto the D pins. The installed hook, if
// any, runs synchronously.
func (c *Chip) WriteD(val uint16) {
	c.dOut = val
	if c.writeD != nil {
		c.writeD(val)
	}
}

// ReadD samples the D pins. This is a pure function of whatever the
// installed hook computes from current peripheral state, nothing is
// buffered between reads.
func (c *Chip) ReadD() uint16 {
	if c.readD == nil {
		return kDPullups
	}
	return c.readD()
}

// R returns the value last driven onto the given R port.
func (c *Chip) R(port int) uint8 {
	return c.rOut[port&(kNumRPorts-1)]
}

// D returns the value last driven onto the D pins.
func (c *Chip) D() uint16 {
	return c.dOut
}

// Input exposes the D pins as a 16 bit input port.
func (c *Chip) Input() uint16 {
	return c.ReadD()
}

// Output exposes the D output latch as a 16 bit output port.
func (c *Chip) Output() uint16 {
	return c.dOut
}

// ROM returns the program memory bank.
func (c *Chip) ROM() memory.Bank {
	return c.rom
}

// Clock returns the MCU clock in Hz.
func (c *Chip) Clock() int64 {
	return c.clock
}

// resetPin adapts the chip's reset input to the line.Receiver interface.
type resetPin struct {
	c *Chip
}

// Set implements the interface for line.Receiver. Asserting the pin is a
// hard electrical reset: the output latches snap back to their power-on
// defaults immediately and stay there while the pin is held.
func (p *resetPin) Set(held bool) {
	p.c.resetHeld = held
	if held {
		p.c.powerOnPorts()
	}
}

// ResetPin returns the reset input as a line.Receiver for wiring to a
// button.
func (c *Chip) ResetPin() line.Receiver {
	return &resetPin{c}
}

// ResetHeld implements the interface for line.Sender on the reset pin
// level, for anything that wants to observe it.
func (c *Chip) ResetHeld() bool {
	return c.resetHeld
}

// Debug returns a one line dump of the current port state.
func (c *Chip) Debug() string {
	return fmt.Sprintf("R: %X D: %.4X reset: %t", c.rOut, c.dOut, c.resetHeld)
}
