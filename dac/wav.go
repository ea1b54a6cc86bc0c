package dac

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	kWavBitDepth = 16
	kWavChannels = 1 // The speaker is mono.
	kWavPCM      = 1
)

// WavRecorder captures speaker output to a WAV file. Feed it the same
// sample stream being queued to the audio device and Close it when done,
// the WAV header isn't finalized until then.
type WavRecorder struct {
	f   *os.File
	enc *wav.Encoder
	buf *audio.IntBuffer
}

// NewWavRecorder creates the file at path and returns a recorder writing
// mono 16 bit PCM at the given sample rate.
func NewWavRecorder(path string, sampleRate int) (*WavRecorder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("can't create recording: %v", err)
	}
	return &WavRecorder{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, kWavBitDepth, kWavChannels, kWavPCM),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: kWavChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: kWavBitDepth,
		},
	}, nil
}

// Write appends the given samples to the recording.
func (w *WavRecorder) Write(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		w.buf.Data[i] = int(s)
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("can't write recording: %v", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *WavRecorder) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("can't finalize recording: %v", err)
	}
	return w.f.Close()
}
