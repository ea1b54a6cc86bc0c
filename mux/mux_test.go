package mux

import "testing"

func TestNibbleIsolation(t *testing.T) {
	for slot := 0; slot < 2; slot++ {
		for v := uint8(0); v < 0x10; v++ {
			m, err := Init(&MuxDef{Changed: func(uint8) {}})
			if err != nil {
				t.Fatalf("Unexpected error on Init: %v", err)
			}
			// Preload the other nibble and make sure the write can't touch it.
			other := 1 - slot
			m.WriteNibble(other, 0x05)
			pre := m.Value() & (0x0F << (uint(other) * 4))

			m.WriteNibble(slot, v)
			shift := uint(slot) * 4
			if got, want := (m.Value()>>shift)&0x0F, ^v&0x0F; got != want {
				t.Errorf("slot %d val %#x: wrong nibble stored. Got %#x and want %#x", slot, v, got, want)
			}
			if got := m.Value() & (0x0F << (uint(other) * 4)); got != pre {
				t.Errorf("slot %d val %#x: other nibble disturbed. Got %#x and want %#x", slot, v, got, pre)
			}
		}
	}
}

func TestRepublishOnEveryWrite(t *testing.T) {
	var published []uint8
	m, err := Init(&MuxDef{Changed: func(v uint8) { published = append(published, v) }})
	if err != nil {
		t.Fatalf("Unexpected error on Init: %v", err)
	}
	m.WriteNibble(0, 0x0F)
	m.WriteNibble(0, 0x0F)
	m.WriteNibble(1, 0x00)
	// Repeated identical writes still republish, the display strobe depends on it.
	if got, want := len(published), 3; got != want {
		t.Fatalf("Wrong publish count. Got %d and want %d", got, want)
	}
	if published[0] != 0x00 || published[1] != 0x00 || published[2] != 0xF0 {
		t.Errorf("Wrong published values: %#v", published)
	}
}

func TestSlotAliasing(t *testing.T) {
	m, err := Init(&MuxDef{Changed: func(uint8) {}})
	if err != nil {
		t.Fatalf("Unexpected error on Init: %v", err)
	}
	// Only 2 ports are wired so slot 2 aliases back onto slot 0.
	m.WriteNibble(2, 0x00)
	if got, want := m.Value(), uint8(0x0F); got != want {
		t.Errorf("Aliased slot write wrong. Got %#x and want %#x", got, want)
	}
	if got, want := m.Output(), m.Value(); got != want {
		t.Errorf("Output() disagrees with Value(). Got %#x and want %#x", got, want)
	}
}

func TestInitErrors(t *testing.T) {
	if _, err := Init(&MuxDef{}); err == nil {
		t.Error("Didn't get error for nil Changed")
	}
}
