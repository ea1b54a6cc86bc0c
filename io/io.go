// Package io defines the basic interfaces for working with the I/O ports
// of the emulated machine. Ports come in 1, 8 and 16 bit widths and are
// split into input and output capabilities so that a component only has to
// implement (or accept) the direction it actually wires up.
package io

// PortIn1 defines a 1 bit input port such as a single button or switch.
// For buttons true == pressed.
type PortIn1 interface {
	// Input will return the current value being set on the given input port.
	Input() bool
}

// PortIn8 defines an 8 bit input port.
type PortIn8 interface {
	// Input will return the current value being set on the given input port.
	Input() uint8
}

// PortOut8 defines an 8 bit output port.
type PortOut8 interface {
	// Output returns the value currently being driven onto the port pins.
	Output() uint8
}

// PortIn16 defines a 16 bit input port.
type PortIn16 interface {
	// Input will return the current value being set on the given input port.
	Input() uint16
}

// PortOut16 defines a 16 bit output port.
type PortOut16 interface {
	// Output returns the value currently being driven onto the port pins.
	Output() uint16
}
