// Package dac implements the 1 bit DAC driving the machine's speaker. The
// MCU toggles a single output pin and the firmware's toggle rate is the
// pitch, so all the DAC does is turn the pin level into a stream of PCM
// samples at a fixed attenuation. Sample synthesis runs off the emulated
// clock so pitch stays correct regardless of host timing.
package dac

import "fmt"

const (
	// kDefaultGain matches the resistor network between the pin and the
	// speaker on the real board.
	kDefaultGain = 0.25

	kMaxAmplitude = 0x7FFF
)

// DAC holds the pin level and the sample synthesis state.
type DAC struct {
	level bool
	amp   int16

	clock      int64 // Emulated clock in Hz.
	sampleRate int   // Output rate in Hz.
	acc        int64 // Fractional cycle accumulator toward the next sample.
	samples    []int16
}

// DACDef defines the pieces needed to set up a DAC.
type DACDef struct {
	// Clock is the emulated machine clock in Hz feeding Tick.
	Clock int64

	// SampleRate is the PCM output rate in Hz.
	SampleRate int

	// Gain scales the output amplitude. 0 means the default hardware
	// attenuation of 0.25.
	Gain float32
}

// Init returns a fully initialized DAC with the pin low.
func Init(def *DACDef) (*DAC, error) {
	if def.Clock <= 0 {
		return nil, fmt.Errorf("invalid Clock: %d", def.Clock)
	}
	if def.SampleRate <= 0 || int64(def.SampleRate) > def.Clock {
		return nil, fmt.Errorf("invalid SampleRate: %d for clock %d", def.SampleRate, def.Clock)
	}
	gain := def.Gain
	if gain == 0 {
		gain = kDefaultGain
	}
	if gain < 0 || gain > 1 {
		return nil, fmt.Errorf("invalid Gain: %f", gain)
	}
	return &DAC{
		amp:        int16(gain * kMaxAmplitude),
		clock:      def.Clock,
		sampleRate: def.SampleRate,
	}, nil
}

// Write sets the pin level. Takes effect synchronously: any sample
// produced from this point reflects the new level.
func (d *DAC) Write(on bool) {
	d.level = on
}

// Output returns the current pin level.
func (d *DAC) Output() bool {
	return d.level
}

// Level returns the current output amplitude as a PCM value.
func (d *DAC) Level() int16 {
	if d.level {
		return d.amp
	}
	return 0
}

// Tick accounts c clock cycles of the current pin level, appending PCM
// samples to the pending buffer as sample periods complete.
func (d *DAC) Tick(c uint64) {
	d.acc += int64(c) * int64(d.sampleRate)
	for d.acc >= d.clock {
		d.acc -= d.clock
		d.samples = append(d.samples, d.Level())
	}
}

// Samples drains and returns the pending PCM samples. The caller owns the
// returned slice.
func (d *DAC) Samples() []int16 {
	s := d.samples
	d.samples = nil
	return s
}
