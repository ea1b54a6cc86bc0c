// Package memory defines the basic interface for the MCU program memory
// along with the fixed ROM bank backing it. The program image is loaded
// once at construction and is immutable from then on, the same way a mask
// programmed ROM is on the real hardware.
package memory

import "fmt"

// Bank is the read side of a memory region. Program memory on these parts
// is read-only so no write interface is defined.
type Bank interface {
	// Read returns the data byte stored at addr.
	Read(addr uint16) uint8
	// Size returns the number of addressable bytes in the bank.
	Size() int
}

// ROM implements Bank over a fixed byte image. Addresses past the end of
// the image alias back around, matching how unused address lines behave on
// a real part.
type ROM struct {
	data []uint8
	mask uint16
}

// NewROM returns a ROM wrapping the given image. The image length must be
// a power of 2 so that out of range addresses can alias with a simple mask.
func NewROM(data []uint8) (*ROM, error) {
	l := len(data)
	if l == 0 || l > 0x10000 || l&(l-1) != 0 {
		return nil, fmt.Errorf("invalid ROM image. Must be a power of 2 and <= 64k in length. Got %d bytes", l)
	}
	// Copy so later mutation of the caller's slice can't change the image.
	d := make([]uint8, l)
	copy(d, data)
	return &ROM{
		data: d,
		mask: uint16(l - 1),
	}, nil
}

// Read implements the Bank interface for Read.
func (r *ROM) Read(addr uint16) uint8 {
	return r.data[addr&r.mask]
}

// Size implements the Bank interface for Size.
func (r *ROM) Size() int {
	return len(r.data)
}
