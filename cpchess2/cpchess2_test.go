package cpchess2

import (
	"image"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/cxgboard/emu/memory"
)

type swtch struct {
	b bool
}

func (s *swtch) Input() bool {
	return s.b
}

// panel bundles the ten buttons for poking at in tests.
type panel struct {
	king, queen, rook, bishop, knight, pawn swtch
	takeBack, reversePlay, sound, level     swtch
}

func testDef(p *panel) *MachineDef {
	return &MachineDef{
		King: &p.king, Queen: &p.queen, Rook: &p.rook,
		Bishop: &p.bishop, Knight: &p.knight, Pawn: &p.pawn,
		TakeBack: &p.takeBack, ReversePlay: &p.reversePlay,
		Sound: &p.sound, Level: &p.level,
	}
}

func testMachine(t *testing.T, def *MachineDef) *Machine {
	t.Helper()
	rom, err := memory.NewROM(make([]uint8, kRomSize))
	if err != nil {
		t.Fatalf("Unexpected error building test ROM: %v", err)
	}
	m, err := initMachine(def, rom)
	if err != nil {
		t.Fatalf("Unexpected error on initMachine: %v", err)
	}
	return m
}

// setMux drives the mux register to val through the two R ports the way
// the firmware does, remembering the pins are active low.
func setMux(m *Machine, val uint8) {
	m.MCU().WriteR(kMuxPortLow, ^val&0x0F)
	m.MCU().WriteR(kMuxPortHigh, ^(val>>4)&0x0F)
}

func TestRomVerification(t *testing.T) {
	p := &panel{}
	def := testDef(p)

	def.Rom = make([]uint8, 100)
	if _, err := Init(def); err == nil {
		t.Error("Didn't get error for short ROM")
	}
	// Right size, wrong content.
	def.Rom = make([]uint8, kRomSize)
	if _, err := Init(def); err == nil {
		t.Error("Didn't get error for wrong ROM content")
	}
}

func TestDefValidation(t *testing.T) {
	p := &panel{}
	def := testDef(p)
	def.Sound = nil
	rom, err := memory.NewROM(make([]uint8, kRomSize))
	if err != nil {
		t.Fatalf("Unexpected error building test ROM: %v", err)
	}
	if _, err := initMachine(def, rom); err == nil {
		t.Error("Didn't get error for nil button")
	}
}

func TestInputIdleMux(t *testing.T) {
	p := &panel{}
	m := testMachine(t, testDef(p))
	// With the mux clear nothing can contribute, whatever the keypad and
	// board are doing. The board is at the starting position already; jam
	// every button too.
	p.king.b, p.pawn.b, p.level.b, p.takeBack.b = true, true, true, true
	setMux(m, 0x00)
	if got, want := m.MCU().ReadD(), uint16(0xFFFF); got != want {
		t.Errorf("Idle mux read. Got %#x and want %#x\n%s", got, want, spew.Sdump(m.mux))
	}
}

func TestInputBoardScan(t *testing.T) {
	p := &panel{}
	m := testMachine(t, testDef(p))
	// Scan each file individually. Starting position: ranks 1-2 and 7-8
	// occupied on every file, so each selected file contributes 0xC3.
	for i := 0; i < 8; i++ {
		setMux(m, 1<<uint(i))
		want := ^(uint16(0xC3) << 8)
		if got := m.MCU().ReadD(); got != want {
			t.Errorf("File %d scan. Got %#x and want %#x", i, got, want)
		}
	}
	// All files at once merge into the same byte.
	setMux(m, 0xFF)
	if got, want := m.MCU().ReadD(), ^(uint16(0xC3) << 8); got != want {
		t.Errorf("Full scan. Got %#x and want %#x", got, want)
	}
}

func TestInputKeypad(t *testing.T) {
	p := &panel{}
	m := testMachine(t, testDef(p))
	// Clear the board so only keypad bits contribute.
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			m.Board().Remove(f, r)
		}
	}
	m.Tick(cycles(kSettleDelay))

	// King sits on bit 1 of bank 0. Selecting mux bit 1 hits it.
	p.king.b = true
	setMux(m, 0x02)
	if got, want := m.MCU().ReadD(), ^uint16(0x0040); got != want {
		t.Errorf("King read. Got %#x and want %#x", got, want)
	}
	// A different mux column misses it.
	setMux(m, 0x04)
	if got, want := m.MCU().ReadD(), uint16(0xFFFF); got != want {
		t.Errorf("King off-column read. Got %#x and want %#x", got, want)
	}
	// Level sits on bit 7 of bank 1.
	p.king.b = false
	p.level.b = true
	setMux(m, 0x80)
	if got, want := m.MCU().ReadD(), ^uint16(0x0080); got != want {
		t.Errorf("Level read. Got %#x and want %#x", got, want)
	}
	// Both banks at once.
	p.king.b = true
	setMux(m, 0x82)
	if got, want := m.MCU().ReadD(), ^uint16(0x00C0); got != want {
		t.Errorf("Both banks read. Got %#x and want %#x", got, want)
	}
}

func TestControlWord(t *testing.T) {
	p := &panel{}
	m := testMachine(t, testDef(p))

	// D4 toggles the speaker with no buffering.
	m.MCU().WriteD(0x0010)
	if !m.DAC().Output() {
		t.Error("Speaker not high after D4 set")
	}
	m.MCU().WriteD(0x0000)
	if m.DAC().Output() {
		t.Error("Speaker not low after D4 clear")
	}

	// D2,D3 select led columns, active low. Writing 0 selects both.
	setMux(m, 0xA5)
	m.MCU().WriteD(0x0000)
	if got, want := m.Display().Lit(0), uint8(0xA5); got != want {
		t.Errorf("Column 0. Got %#x and want %#x", got, want)
	}
	if got, want := m.Display().Lit(1), uint8(0xA5); got != want {
		t.Errorf("Column 1. Got %#x and want %#x", got, want)
	}
	// Raising D2 deselects column 0.
	m.MCU().WriteD(0x0004)
	if got := m.Display().Lit(0); got != 0 {
		t.Errorf("Column 0 still lit: %#x", got)
	}
	if got, want := m.Display().Lit(1), uint8(0xA5); got != want {
		t.Errorf("Column 1 after D2. Got %#x and want %#x", got, want)
	}
}

func TestMuxDrivesRows(t *testing.T) {
	p := &panel{}
	m := testMachine(t, testDef(p))
	m.MCU().WriteD(0x0000) // Both columns on.
	// Every mux nibble write restrobes the row data immediately.
	m.MCU().WriteR(kMuxPortLow, 0x00)
	if got, want := m.Display().Lit(0), uint8(0x0F); got != want {
		t.Errorf("Rows after low nibble. Got %#x and want %#x", got, want)
	}
	m.MCU().WriteR(kMuxPortHigh, 0x0A)
	if got, want := m.Display().Lit(0), uint8(0x5F); got != want {
		t.Errorf("Rows after high nibble. Got %#x and want %#x", got, want)
	}
}

func TestResetButton(t *testing.T) {
	p := &panel{}
	m := testMachine(t, testDef(p))
	m.MCU().WriteD(0x0010)
	m.SetReset(true)
	// Immediate hard reset: port latches back to power-on defaults.
	if !m.MCU().ResetHeld() {
		t.Error("Reset not held")
	}
	if got := m.MCU().D(); got != 0 {
		t.Errorf("D latch survived reset: %#x", got)
	}
	// The board is electrically independent: a settling square keeps
	// settling across the reset.
	m.Board().Toggle(4, 4)
	m.SetReset(false)
	if m.MCU().ResetHeld() {
		t.Error("Reset still held after release")
	}
	m.Tick(cycles(kSettleDelay))
	if !m.Board().Occupied(4, 4) {
		t.Error("Board settle didn't survive the reset")
	}
}

func TestSettleThroughMachine(t *testing.T) {
	p := &panel{}
	m := testMachine(t, testDef(p))
	// Lift the a1 rook: physical square (7,0), scanned on file 0.
	m.Board().Toggle(7, 0)
	setMux(m, 0x01)
	if got, want := m.MCU().ReadD(), ^(uint16(0xC3) << 8); got != want {
		t.Errorf("Read during settle window. Got %#x and want %#x", got, want)
	}
	m.Tick(cycles(kSettleDelay))
	if got, want := m.MCU().ReadD(), ^(uint16(0xC2) << 8); got != want {
		t.Errorf("Read after settle. Got %#x and want %#x", got, want)
	}
}

func TestFrameAndAudioPlumbing(t *testing.T) {
	p := &panel{}
	def := testDef(p)
	frames := 0
	def.FrameDone = func(*image.NRGBA) { frames++ }
	m := testMachine(t, def)
	// One second of emulated time.
	m.Tick(kClock)
	if got, want := frames, kFrameRate; got != want {
		t.Errorf("Wrong frame count. Got %d and want %d", got, want)
	}
	if got, want := len(m.DAC().Samples()), kSampleRate; got != want {
		t.Errorf("Wrong sample count. Got %d and want %d", got, want)
	}
	if got, want := m.Cycles(), uint64(kClock); got != want {
		t.Errorf("Wrong cycle count. Got %d and want %d", got, want)
	}
}
