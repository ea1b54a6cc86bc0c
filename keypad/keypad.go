// Package keypad implements the scanned button banks on the machine's
// control panel. Each bank is 8 sense lines the MCU tests against the
// input multiplexer, with individual buttons wired to fixed bits. The New
// Game button is not part of any bank, it goes straight to the MCU reset
// pin and never shows up here.
package keypad

import "github.com/cxgboard/emu/io"

// Bit positions within bank 0 (the piece keys, used when telling the
// machine about promotions and when verifying positions).
const (
	kKingBit = 1 + iota
	kQueenBit
	kRookBit
	kBishopBit
	kKnightBit
	kPawnBit
)

// Bit positions within bank 1 (the game control keys).
const (
	kTakeBackBit = 4 + iota
	kReversePlayBit
	kSoundBit
	kLevelBit
)

// Bank maps up to 8 buttons onto the sense lines of one scanned bank.
// Unwired lines read 0.
type Bank struct {
	buttons [8]io.PortIn1
}

// Input implements the interface for io.PortIn8. A set bit means the
// button on that line is currently pressed.
func (b *Bank) Input() uint8 {
	var out uint8
	for i, btn := range b.buttons {
		if btn != nil && btn.Input() {
			out |= 1 << uint(i)
		}
	}
	return out
}

// NewPieceBank returns bank 0 with the six piece keys on bits 1-6. Bits 0
// and 7 are unused on the real panel.
func NewPieceBank(king, queen, rook, bishop, knight, pawn io.PortIn1) *Bank {
	b := &Bank{}
	b.buttons[kKingBit] = king
	b.buttons[kQueenBit] = queen
	b.buttons[kRookBit] = rook
	b.buttons[kBishopBit] = bishop
	b.buttons[kKnightBit] = knight
	b.buttons[kPawnBit] = pawn
	return b
}

// NewGameBank returns bank 1 with the four game control keys on bits 4-7.
// The low nibble is unused on the real panel.
func NewGameBank(takeBack, reversePlay, sound, level io.PortIn1) *Bank {
	b := &Bank{}
	b.buttons[kTakeBackBit] = takeBack
	b.buttons[kReversePlayBit] = reversePlay
	b.buttons[kSoundBit] = sound
	b.buttons[kLevelBit] = level
	return b
}
