// Package line defines the basic interfaces for working with a discrete
// control line between two components, such as the wire from the New Game
// button to the MCU reset pin. Unlike the clocked I/O ports a level change
// on a line is pushed to the receiver the moment it happens. There is no
// sampling involved so implementors must be prepared to react from within
// the Set call itself.
package line

// Receiver is implemented by components exposing a control pin which can
// be held high or low externally.
type Receiver interface {
	// Set drives the line to the given level. The transition takes effect
	// immediately with no intermediate state.
	Set(held bool)
}

// Sender is implemented by components which report the level they are
// currently driving onto a line.
type Sender interface {
	// Raised indicates whether the line is currently held high.
	Raised() bool
}
