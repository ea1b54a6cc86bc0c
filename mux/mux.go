// Package mux implements the shared input multiplexer register found in
// the CXG sensor chess machines. Two 4 bit MCU output ports each drive one
// half of an 8 bit register which selects the keypad bank column and the
// chessboard file currently being scanned. As a hardware economy the very
// same register also feeds the LED matrix row data, so every nibble write
// is republished to the display with no separate commit step.
package mux

import "errors"

const (
	// kNibbleMask strips a port write down to the 4 wired lines.
	kNibbleMask = uint8(0x0F)

	kNibbleShift = 4
	kSlotMask    = 1
)

// toActiveHigh flips an active low nibble from the port pins into the
// active high convention used internally. Kept as a named helper so the
// bus polarity contract stays auditable in one place.
func toActiveHigh(v uint8) uint8 {
	return ^v & kNibbleMask
}

// Mux holds the 8 bit multiplexer register.
type Mux struct {
	value   uint8
	changed func(uint8)
}

// MuxDef defines the pieces needed to set up a Mux.
type MuxDef struct {
	// Changed is invoked with the full register value after every nibble
	// write, even one that leaves the value unchanged. This is the LED row
	// data path and it relies on the re-publish to keep the matrix strobed.
	Changed func(uint8)
}

// Init returns a fully initialized Mux.
func Init(def *MuxDef) (*Mux, error) {
	if def.Changed == nil {
		return nil, errors.New("Changed must be non-nil")
	}
	return &Mux{
		changed: def.Changed,
	}, nil
}

// WriteNibble stores the bit-inverted low 4 bits of val into half of the
// register. Slot 0 is bits 0-3 and slot 1 is bits 4-7, the other half is
// never disturbed. The full register is republished after every write.
// The slot is masked to the 2 wired ports so out of range values alias.
func (m *Mux) WriteNibble(slot int, val uint8) {
	shift := uint(slot&kSlotMask) * kNibbleShift
	m.value = (m.value &^ (kNibbleMask << shift)) | (toActiveHigh(val) << shift)
	m.changed(m.value)
}

// Value returns the current 8 bit register contents.
func (m *Mux) Value() uint8 {
	return m.value
}

// Output implements the interface for io.PortOut8.
func (m *Mux) Output() uint8 {
	return m.value
}
