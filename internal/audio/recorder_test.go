package audio

import (
	"testing"

	"github.com/chaz8081/ostt/internal/config"
)

func testAudioConfig() config.AudioConfig {
	return config.Default().Audio
}

func TestNewRecorderAndClose(t *testing.T) {
	r, err := NewRecorder(testAudioConfig(), 1, nil)
	if err != nil {
		t.Skipf("no audio backend available: %v", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	if r.sampleRate != 16000 {
		t.Errorf("sampleRate = %d, want 16000", r.sampleRate)
	}
	if r.channels != 1 {
		t.Errorf("channels = %d, want 1", r.channels)
	}
	if r.DeviceName() != "system default" {
		t.Errorf("DeviceName() = %q, want system default", r.DeviceName())
	}
	if r.recording {
		t.Error("recorder should not be recording after creation")
	}
	if samples := r.Stop(); samples != nil {
		t.Errorf("Stop() without Start() should return nil, got %d samples", len(samples))
	}
}

func TestOnDataFeedsBufferAndMeter(t *testing.T) {
	r := &Recorder{
		sampleRate: 4,
		channels:   1,
		meter:      NewMeter(0, 90),
	}

	// 0.5 and -1.0 in little-endian float32
	data := []byte{
		0x00, 0x00, 0x00, 0x3F,
		0x00, 0x00, 0x80, 0xBF,
	}
	r.onData(nil, data, 2)

	if len(r.buf) != 2 {
		t.Fatalf("buffered %d samples, want 2", len(r.buf))
	}
	if got := r.Duration(); got != 0.5 {
		t.Errorf("Duration() = %f, want 0.5", got)
	}
	if got := r.Meter().Level(); got != 100 {
		t.Errorf("Meter().Level() = %f, want 100", got)
	}
}

func TestBytesToFloat32(t *testing.T) {
	// Test with known float32 value: 1.0 = 0x3F800000
	data := []byte{0x00, 0x00, 0x80, 0x3F} // 1.0 in little-endian float32
	samples := bytesToFloat32(data, 1)

	if len(samples) != 1 {
		t.Fatalf("bytesToFloat32() returned %d samples, want 1", len(samples))
	}
	if samples[0] != 1.0 {
		t.Errorf("bytesToFloat32() = %f, want 1.0", samples[0])
	}
}

func TestBytesToFloat32Short(t *testing.T) {
	// Asked for two samples but only one full sample is present.
	data := []byte{0x00, 0x00, 0x80, 0xBF, 0x00, 0x00}
	samples := bytesToFloat32(data, 2)

	if len(samples) != 1 {
		t.Fatalf("bytesToFloat32() returned %d samples, want 1", len(samples))
	}
	if samples[0] != -1.0 {
		t.Errorf("samples[0] = %f, want -1.0", samples[0])
	}
}

func TestSamplesDuration(t *testing.T) {
	tests := []struct {
		n                    int
		sampleRate, channels uint32
		want                 float64
	}{
		{16000, 16000, 1, 1},
		{32000, 16000, 2, 1},
		{8000, 16000, 1, 0.5},
		{100, 0, 1, 0},
		{100, 16000, 0, 0},
	}
	for _, tt := range tests {
		if got := samplesDuration(tt.n, tt.sampleRate, tt.channels); got != tt.want {
			t.Errorf("samplesDuration(%d, %d, %d) = %f, want %f", tt.n, tt.sampleRate, tt.channels, got, tt.want)
		}
	}
}
