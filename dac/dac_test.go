package dac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name string
		def  DACDef
	}{
		{"no clock", DACDef{SampleRate: 44100}},
		{"no sample rate", DACDef{Clock: 650000}},
		{"rate above clock", DACDef{Clock: 1000, SampleRate: 44100}},
		{"bad gain", DACDef{Clock: 650000, SampleRate: 44100, Gain: 2.0}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if _, err := Init(&test.def); err == nil {
				t.Errorf("%s: didn't get Init error", test.name)
			}
		})
	}
}

func TestSynchronousToggle(t *testing.T) {
	d, err := Init(&DACDef{Clock: 650000, SampleRate: 44100})
	if err != nil {
		t.Fatalf("Unexpected error on Init: %v", err)
	}
	if d.Output() {
		t.Error("Pin high after Init")
	}
	d.Write(true)
	if !d.Output() {
		t.Error("Write(true) not reflected immediately")
	}
	if got, want := d.Level(), int16(0x7FFF / 4); got != want {
		t.Errorf("Wrong high level. Got %d and want %d", got, want)
	}
	d.Write(false)
	if d.Output() || d.Level() != 0 {
		t.Error("Write(false) not reflected immediately")
	}
}

func TestSampleSynthesis(t *testing.T) {
	// 10 clock cycles per sample keeps the arithmetic exact.
	d, err := Init(&DACDef{Clock: 441000, SampleRate: 44100})
	if err != nil {
		t.Fatalf("Unexpected error on Init: %v", err)
	}
	d.Write(true)
	d.Tick(9)
	if got := d.Samples(); len(got) != 0 {
		t.Errorf("Samples emitted before a full period: %d", len(got))
	}
	d.Tick(1)
	d.Write(false)
	d.Tick(20)
	got := d.Samples()
	if len(got) != 3 {
		t.Fatalf("Wrong sample count. Got %d and want 3", len(got))
	}
	amp := int16(0x7FFF / 4)
	if got[0] != amp || got[1] != 0 || got[2] != 0 {
		t.Errorf("Wrong sample values: %v (amp %d)", got, amp)
	}
	// Drained.
	if got := d.Samples(); len(got) != 0 {
		t.Errorf("Samples not drained: %d left", len(got))
	}
}

func TestWavRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speaker.wav")
	r, err := NewWavRecorder(path, 44100)
	if err != nil {
		t.Fatalf("Unexpected error on NewWavRecorder: %v", err)
	}
	samples := make([]int16, 441)
	for i := range samples {
		if (i/50)%2 == 0 {
			samples[i] = int16(0x7FFF / 4)
		}
	}
	if err := r.Write(samples); err != nil {
		t.Fatalf("Unexpected error on Write: %v", err)
	}
	if err := r.Write(nil); err != nil {
		t.Fatalf("Unexpected error on empty Write: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Unexpected error on Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Can't reopen recording: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("Recording isn't a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("Can't decode recording: %v", err)
	}
	if got, want := len(buf.Data), len(samples); got != want {
		t.Errorf("Wrong decoded sample count. Got %d and want %d", got, want)
	}
	if got, want := int(dec.SampleRate), 44100; got != want {
		t.Errorf("Wrong sample rate. Got %d and want %d", got, want)
	}
	if got, want := buf.Data[0], int(int16(0x7FFF / 4)); got != want {
		t.Errorf("Wrong first sample. Got %d and want %d", got, want)
	}
}
