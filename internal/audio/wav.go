package audio

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

const wavBitDepth = 16

// WriteWAV writes float32 samples in [-1, 1] as a 16-bit PCM WAV file.
// Out-of-range samples are clipped.
func WriteWAV(path string, samples []float32, sampleRate, channels int) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("audio: invalid wav format: %d Hz, %d channels", sampleRate, channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create wav: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           floatToPCM16(samples),
		SourceBitDepth: wavBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("audio: write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("audio: finalize wav: %w", err)
	}
	return f.Close()
}

// ReadWAV decodes a PCM WAV file into float32 samples in [-1, 1] along
// with its sample rate and channel count.
func ReadWAV(path string) ([]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("audio: open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("audio: %s is not a valid wav file", path)
	}

	if dec.BitDepth == 0 || dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, 0, 0, fmt.Errorf("audio: %s has an invalid wav format: %d-bit, %d channels, %d Hz", path, dec.BitDepth, dec.NumChans, dec.SampleRate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("audio: decode wav: %w", err)
	}

	scale := float32(int(1) << (dec.BitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, int(dec.SampleRate), int(dec.NumChans), nil
}

// NewRecordingPath returns a unique WAV path inside dir.
func NewRecordingPath(dir string) string {
	return filepath.Join(dir, "ostt-"+uuid.NewString()+".wav")
}

func floatToPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		out[i] = int(s * 32767)
	}
	return out
}
