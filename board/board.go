// Package board implements a button sensor chessboard of the kind used in
// dedicated chess machines: an 8x8 grid of pressure/membrane switches the
// MCU scans one file at a time. The sensors only report occupancy but the
// device also tracks piece identity so a front end can draw the position.
//
// Physical events (a piece being placed or lifted) bounce, so a square's
// readable state only changes after the new state has held for a settle
// delay. The delay is driven through the machine's event scheduler rather
// than polled. Reads during the settle window always return the last
// stable value, never an intermediate one.
package board

import (
	"errors"
	"fmt"

	"github.com/cxgboard/emu/scheduler"
)

// Piece enumerates the piece identities a square can hold.
type Piece uint8

const (
	NO_PIECE Piece = iota
	WHITE_PAWN
	WHITE_KNIGHT
	WHITE_BISHOP
	WHITE_ROOK
	WHITE_QUEEN
	WHITE_KING
	BLACK_PAWN
	BLACK_KNIGHT
	BLACK_BISHOP
	BLACK_ROOK
	BLACK_QUEEN
	BLACK_KING
	PIECE_MAX // End of piece enumerations.
)

const (
	kFiles = 8
	kRanks = 8

	// kFileWire is the fixed wiring reversal between the file index the
	// MCU scans with and the physical column. This mirrors how the sensor
	// rows are routed on the PCB, not board geometry, and has to be
	// reproduced exactly for the ROM to see the board it expects.
	kFileWire = 7
)

// Board holds the stable sensor grid plus the per-square pending state
// waiting out a settle delay.
type Board struct {
	sched  *scheduler.Scheduler
	base   scheduler.EventType
	settle uint64

	occupied [kFiles][kRanks]bool  // Stable (readable) occupancy.
	pieces   [kFiles][kRanks]Piece // Identity of the piece on (or last on) a square.
	pending  [kFiles][kRanks]bool  // Whether a settle timer is running for the square.
	target   [kFiles][kRanks]bool  // Occupancy to commit when the settle timer fires.
	targetID [kFiles][kRanks]Piece // Identity to commit alongside target.
}

// BoardDef defines the pieces needed to set up a Board.
type BoardDef struct {
	// Scheduler drives the settle delay callbacks. Required.
	Scheduler *scheduler.Scheduler

	// EventBase is the first of the 64 consecutive scheduler event types
	// the board claims for its squares.
	EventBase scheduler.EventType

	// SettleTicks is how many clock cycles a square must hold a new state
	// before reads see it. 0 means changes commit on the next scheduler
	// tick. The machine derives this from the 150ms hardware debounce.
	SettleTicks uint64
}

// Init returns a fully initialized Board with every square empty. Use
// Preset to load the chess starting position.
func Init(def *BoardDef) (*Board, error) {
	if def.Scheduler == nil {
		return nil, errors.New("Scheduler must be non-nil")
	}
	if int(def.EventBase) > 256-kFiles*kRanks {
		return nil, fmt.Errorf("EventBase %d leaves no room for %d square events", def.EventBase, kFiles*kRanks)
	}
	b := &Board{
		sched:  def.Scheduler,
		base:   def.EventBase,
		settle: def.SettleTicks,
	}
	for f := 0; f < kFiles; f++ {
		for r := 0; r < kRanks; r++ {
			f, r := f, r
			b.sched.RegisterEvent(b.event(f, r), func() {
				b.commit(f, r)
			})
		}
	}
	return b, nil
}

func (b *Board) event(file, rank int) scheduler.EventType {
	return b.base + scheduler.EventType(file*kRanks+rank)
}

func (b *Board) commit(file, rank int) {
	b.occupied[file][rank] = b.target[file][rank]
	b.pieces[file][rank] = b.targetID[file][rank]
	b.pending[file][rank] = false
}

// Preset loads the standard chess starting position directly into the
// stable state. This models the power-on initialization hook, not a
// physical event, so no settle delay applies and any in-flight settle
// timers are dropped.
func (b *Board) Preset() {
	var back = [kFiles]Piece{
		WHITE_ROOK, WHITE_KNIGHT, WHITE_BISHOP, WHITE_QUEEN,
		WHITE_KING, WHITE_BISHOP, WHITE_KNIGHT, WHITE_ROOK,
	}
	for f := 0; f < kFiles; f++ {
		for r := 0; r < kRanks; r++ {
			p := NO_PIECE
			switch r {
			case 0:
				p = back[f]
			case 1:
				p = WHITE_PAWN
			case 6:
				p = BLACK_PAWN
			case 7:
				p = back[f] + (BLACK_ROOK - WHITE_ROOK)
			}
			b.occupied[f][r] = p != NO_PIECE
			b.pieces[f][r] = p
			b.target[f][r] = b.occupied[f][r]
			b.targetID[f][r] = p
			if b.pending[f][r] {
				b.sched.DescheduleEvent(b.event(f, r))
				b.pending[f][r] = false
			}
		}
	}
}

// ReadFile returns the occupancy of one scanned file as a bitmask with one
// bit per rank. The file index goes through the fixed wiring reversal
// before lookup.
func (b *Board) ReadFile(i int) uint8 {
	f := (i ^ kFileWire) & (kFiles - 1)
	var out uint8
	for r := 0; r < kRanks; r++ {
		if b.occupied[f][r] {
			out |= 1 << r
		}
	}
	return out
}

// Toggle reports a physical sensor event flipping the occupancy of a
// square. The change only becomes readable once it has held through the
// settle delay, and toggling back inside the window nets out to no change
// at all. Re-occupying a square restores the piece identity it last held
// (WHITE_PAWN when the square has no history).
func (b *Board) Toggle(file, rank int) {
	file &= kFiles - 1
	rank &= kRanks - 1
	if b.target[file][rank] {
		b.Remove(file, rank)
		return
	}
	p := b.pieces[file][rank]
	if p == NO_PIECE {
		p = WHITE_PAWN
	}
	b.Place(file, rank, p)
}

// Place reports a physical placement of the given piece on a square,
// subject to the settle delay. Conflicting events on the same square
// resolve last write wins.
func (b *Board) Place(file, rank int, p Piece) {
	file &= kFiles - 1
	rank &= kRanks - 1
	b.target[file][rank] = true
	b.targetID[file][rank] = p
	b.arm(file, rank)
}

// Remove reports a physical removal of whatever is on a square, subject
// to the settle delay. The square remembers the piece identity so a
// subsequent Toggle can restore it.
func (b *Board) Remove(file, rank int) {
	file &= kFiles - 1
	rank &= kRanks - 1
	b.target[file][rank] = false
	b.arm(file, rank)
}

// arm (re)starts the settle timer for a square. Every new event restarts
// the full delay from scratch, matching sensor bounce behavior.
func (b *Board) arm(file, rank int) {
	b.pending[file][rank] = true
	b.sched.ScheduleEvent(b.event(file, rank), b.settle)
}

// Occupied returns the stable occupancy of a square.
func (b *Board) Occupied(file, rank int) bool {
	return b.occupied[file&(kFiles-1)][rank&(kRanks-1)]
}

// PieceAt returns the identity of the piece on a square, or NO_PIECE if
// the square is (stably) empty.
func (b *Board) PieceAt(file, rank int) Piece {
	file &= kFiles - 1
	rank &= kRanks - 1
	if !b.occupied[file][rank] {
		return NO_PIECE
	}
	return b.pieces[file][rank]
}

// Settling reports whether the square has an unsettled event in flight.
func (b *Board) Settling(file, rank int) bool {
	return b.pending[file&(kFiles-1)][rank&(kRanks-1)]
}
