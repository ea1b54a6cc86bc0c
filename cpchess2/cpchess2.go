// Package cpchess2 is the main logic for pulling together an emulated CXG
// Computachess II (CXG-002/WA-002, 1982): an HMCS40 series MCU wired to a
// button sensor chessboard, a 2x8 LED matrix, a 10 key panel and a 1 bit
// speaker DAC. The devices are implemented in other packages and most of
// the logic here is the port wiring between them, reproducing the board's
// active low bus conventions bit for bit so the original chess program
// sees the hardware it expects.
package cpchess2

import (
	"fmt"
	"image"
	"time"

	"github.com/cxgboard/emu/board"
	"github.com/cxgboard/emu/dac"
	"github.com/cxgboard/emu/display"
	"github.com/cxgboard/emu/hmcs40"
	"github.com/cxgboard/emu/io"
	"github.com/cxgboard/emu/keypad"
	"github.com/cxgboard/emu/line"
	"github.com/cxgboard/emu/memory"
	"github.com/cxgboard/emu/mux"
	"github.com/cxgboard/emu/scheduler"
)

// Name is the machine identifier, matching the ROM set name.
const Name = "cpchess2"

// Clock approximates the MCU clock in Hz set by the 62K resistor. Anything
// driving the machine paces itself in these cycles.
const Clock = 650000

// FrameRate is how often the LED matrix persistence-of-vision result is
// delivered per emulated second.
const FrameRate = 60

const (
	kClock = Clock

	kDisplayCols = 2
	kDisplayRows = 8
	kFrameRate   = FrameRate

	// kSettleDelay is the sensorboard debounce on the real hardware. A
	// tuned constant with no documented rationale beyond matching real
	// sensor bounce, so it is configuration, not something to optimize.
	kSettleDelay = 150 * time.Millisecond

	kSampleRate = 44100

	// D port output bits.
	kMASK_SPEAKER = uint16(0x0010) // D4: speaker out.
	kMASK_LED_SEL = uint8(0x03)    // D2,D3: led column select.
	kShiftLedSel  = 2

	// D port input bits.
	kShiftButtons = 6 // D6,D7: the two keypad banks.
	kShiftBoard   = 8 // D8-D15: one scanned file of the chessboard.

	// R ports carrying the input mux / led row data nibbles.
	kMuxPortLow  = 2
	kMuxPortHigh = 3

	kBoardEventBase = scheduler.EventType(0)
)

// The D bus is active low. Helpers rather than inline complements so the
// polarity flips stay named and auditable in one place.

// toActiveHigh16 flips an active low bus word to active high semantics.
func toActiveHigh16(v uint16) uint16 {
	return ^v
}

// toActiveLow16 flips an active high word back onto the active low bus.
func toActiveLow16(v uint16) uint16 {
	return ^v
}

// Machine owns the MCU port model and the peripherals hanging off it.
type Machine struct {
	mcu     *hmcs40.Chip
	mux     *mux.Mux
	board   *board.Board
	display *display.Display
	dac     *dac.DAC
	inputs  [2]io.PortIn8
	sched   *scheduler.Scheduler
	reset   line.Receiver
}

// MachineDef defines the pieces needed to set up a Machine. All ten panel
// buttons must be wired, the scan matrix assumes they exist.
type MachineDef struct {
	// Rom is the 16k program image. It is verified against the known good
	// dump before the machine will run.
	Rom []uint8

	// Bank 0, the piece keys. True == pressed for all buttons.
	King, Queen, Rook, Bishop, Knight, Pawn io.PortIn1

	// Bank 1, the game control keys.
	TakeBack, ReversePlay, Sound, Level io.PortIn1

	// SettleDelay overrides the sensorboard debounce. 0 means the
	// hardware value of 150ms.
	SettleDelay time.Duration

	// SampleRate is the speaker PCM rate. 0 means 44.1kHz.
	SampleRate int

	// FrameDone, if non-nil, is called with the rendered LED matrix at
	// the end of every display refresh window.
	FrameDone func(*image.NRGBA)
}

// Init returns an initialized and powered on Computachess II with the
// chessboard preset to the starting position.
func Init(def *MachineDef) (*Machine, error) {
	rom, err := loadROM(def.Rom)
	if err != nil {
		return nil, fmt.Errorf("can't load ROM: %v", err)
	}
	return initMachine(def, rom)
}

// initMachine wires the machine around an already validated program
// image. Split from Init so tests can run without the real ROM dump.
func initMachine(def *MachineDef, rom memory.Bank) (*Machine, error) {
	buttons := []struct {
		name string
		p    io.PortIn1
	}{
		{"King", def.King}, {"Queen", def.Queen}, {"Rook", def.Rook},
		{"Bishop", def.Bishop}, {"Knight", def.Knight}, {"Pawn", def.Pawn},
		{"TakeBack", def.TakeBack}, {"ReversePlay", def.ReversePlay},
		{"Sound", def.Sound}, {"Level", def.Level},
	}
	for _, b := range buttons {
		if b.p == nil {
			return nil, fmt.Errorf("%s must be non-nil in def", b.name)
		}
	}
	settle := def.SettleDelay
	if settle == 0 {
		settle = kSettleDelay
	}
	rate := def.SampleRate
	if rate == 0 {
		rate = kSampleRate
	}

	m := &Machine{
		sched: scheduler.New(),
		inputs: [2]io.PortIn8{
			keypad.NewPieceBank(def.King, def.Queen, def.Rook, def.Bishop, def.Knight, def.Pawn),
			keypad.NewGameBank(def.TakeBack, def.ReversePlay, def.Sound, def.Level),
		},
	}

	d, err := display.Init(&display.DisplayDef{
		Cols:       kDisplayCols,
		Rows:       kDisplayRows,
		FrameTicks: kClock / kFrameRate,
		FrameDone:  def.FrameDone,
	})
	if err != nil {
		return nil, fmt.Errorf("can't initialize display: %v", err)
	}
	m.display = d

	// The mux register doubles as the led row data, every nibble write
	// restrobes the matrix.
	mx, err := mux.Init(&mux.MuxDef{
		Changed: d.WriteRows,
	})
	if err != nil {
		return nil, fmt.Errorf("can't initialize mux: %v", err)
	}
	m.mux = mx

	b, err := board.Init(&board.BoardDef{
		Scheduler:   m.sched,
		EventBase:   kBoardEventBase,
		SettleTicks: cycles(settle),
	})
	if err != nil {
		return nil, fmt.Errorf("can't initialize board: %v", err)
	}
	b.Preset()
	m.board = b

	da, err := dac.Init(&dac.DACDef{
		Clock:      kClock,
		SampleRate: rate,
	})
	if err != nil {
		return nil, fmt.Errorf("can't initialize dac: %v", err)
	}
	m.dac = da

	var writeR [8]func(uint8)
	writeR[kMuxPortLow] = func(v uint8) { mx.WriteNibble(0, v) }
	writeR[kMuxPortHigh] = func(v uint8) { mx.WriteNibble(1, v) }
	mc, err := hmcs40.Init(&hmcs40.ChipDef{
		Clock:  kClock,
		Rom:    rom,
		WriteR: writeR,
		WriteD: m.controlW,
		ReadD:  m.inputR,
	})
	if err != nil {
		return nil, fmt.Errorf("can't initialize MCU: %v", err)
	}
	m.mcu = mc
	m.reset = mc.ResetPin()
	return m, nil
}

// cycles converts a duration into MCU clock cycles.
func cycles(d time.Duration) uint64 {
	return uint64(d * kClock / time.Second)
}

// controlW decodes a D port write.
func (m *Machine) controlW(data uint16) {
	// D4: speaker out.
	m.dac.Write(data&kMASK_SPEAKER != 0)

	// D2,D3: led column select, active low on the pins.
	m.display.WriteCols(uint8(toActiveHigh16(data)>>kShiftLedSel) & kMASK_LED_SEL)
}

// inputR synthesizes a D port read from the current mux, keypad and board
// state. Pure function of that state, nothing is buffered here.
func (m *Machine) inputR() uint16 {
	var data uint16

	// D6,D7: a bit per keypad bank whose pressed keys overlap the mux.
	for i := range m.inputs {
		if m.mux.Value()&m.inputs[i].Input() != 0 {
			data |= 1 << uint(kShiftButtons+i)
		}
	}

	// D8-D15: the rank byte of every file the mux selects, merged.
	for i := 0; i < 8; i++ {
		if m.mux.Value()&(1<<uint(i)) != 0 {
			data |= uint16(m.board.ReadFile(i)) << kShiftBoard
		}
	}

	return toActiveLow16(data)
}

// Tick advances the emulated clock by the given number of MCU cycles,
// running due board settle callbacks and accumulating display and speaker
// output.
func (m *Machine) Tick(c uint64) {
	m.sched.Tick(c)
	m.display.Tick(c)
	m.dac.Tick(c)
}

// SetReset drives the MCU reset pin. The New Game button is wired
// straight to it: held == asserted, released == cleared, nothing in
// between and no delay. The chessboard is physically independent of the
// MCU so its state (settling squares included) is untouched.
func (m *Machine) SetReset(held bool) {
	m.reset.Set(held)
}

// Cycles returns the total MCU cycles ticked since power on.
func (m *Machine) Cycles() uint64 {
	return m.sched.Cycles()
}

// MCU returns the MCU port model for whatever is standing in for the
// chess program.
func (m *Machine) MCU() *hmcs40.Chip {
	return m.mcu
}

// Board returns the sensor chessboard.
func (m *Machine) Board() *board.Board {
	return m.board
}

// Display returns the LED matrix driver.
func (m *Machine) Display() *display.Display {
	return m.display
}

// DAC returns the speaker DAC.
func (m *Machine) DAC() *dac.DAC {
	return m.dac
}
