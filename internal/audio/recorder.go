// Package audio captures microphone input with malgo, writes it to WAV and
// encodes it to the configured output format.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"

	"github.com/chaz8081/ostt/internal/config"
)

// Recorder captures audio from a capture device into a float32 buffer.
type Recorder struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	deviceID   *malgo.DeviceID // nil selects the system default
	deviceName string
	sampleRate uint32
	channels   uint32
	meter      *Meter
	log        *zap.Logger

	mu        sync.Mutex
	buf       []float32
	recording bool
}

// NewRecorder creates a recorder for the device named in cfg. Call Close()
// when done.
func NewRecorder(cfg config.AudioConfig, channels uint32, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: initialize context: %w", err)
	}

	r := &Recorder{
		ctx:        ctx,
		sampleRate: cfg.SampleRate,
		channels:   channels,
		meter:      NewMeter(cfg.ReferenceLevelDB, cfg.PeakVolumeThreshold),
		log:        log.Named("recorder"),
		deviceName: "system default",
	}

	if !isDefaultDevice(cfg.Device) {
		devices, err := listDevices(ctx)
		if err != nil {
			r.Close()
			return nil, err
		}
		dev, err := SelectDevice(devices, cfg.Device)
		if err != nil {
			r.Close()
			return nil, err
		}
		if dev != nil {
			id := dev.id
			r.deviceID = &id
			r.deviceName = dev.Name
		}
	}

	r.log.Debug("recorder ready",
		zap.String("device", r.deviceName),
		zap.Uint32("sample_rate", r.sampleRate),
		zap.Uint32("channels", r.channels))

	return r, nil
}

// DeviceName returns the name of the selected capture device.
func (r *Recorder) DeviceName() string { return r.deviceName }

// Meter returns the level meter fed by the capture callback.
func (r *Recorder) Meter() *Meter { return r.meter }

// Start begins capturing audio. Samples accumulate in an internal buffer.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return fmt.Errorf("audio: already recording")
	}
	r.buf = r.buf[:0]
	r.recording = true
	r.mu.Unlock()

	r.meter.Reset()

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatF32
	deviceCfg.Capture.Channels = r.channels
	deviceCfg.SampleRate = r.sampleRate
	if r.deviceID != nil {
		deviceCfg.Capture.DeviceID = r.deviceID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: r.onData,
	}

	device, err := malgo.InitDevice(r.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return fmt.Errorf("audio: initialize capture device %q: %w", r.deviceName, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return fmt.Errorf("audio: start capture device %q: %w", r.deviceName, err)
	}

	r.mu.Lock()
	r.device = device
	r.mu.Unlock()

	return nil
}

// Stop ends the capture and returns a copy of the recorded samples, or nil
// if the recorder was not recording.
func (r *Recorder) Stop() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return nil
	}

	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	r.recording = false

	result := make([]float32, len(r.buf))
	copy(result, r.buf)

	return result
}

// Duration returns the length of the buffered audio in seconds. The buffer
// is kept after Stop until the next Start.
func (r *Recorder) Duration() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return samplesDuration(len(r.buf), r.sampleRate, r.channels)
}

// Close releases all audio resources.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	r.recording = false
	r.mu.Unlock()

	if r.ctx != nil {
		if err := r.ctx.Uninit(); err != nil {
			return fmt.Errorf("audio: uninitialize context: %w", err)
		}
		r.ctx.Free()
		r.ctx = nil
	}

	return nil
}

// onData is the malgo callback invoked when audio data is available.
// pSample holds little-endian float32 frames.
func (r *Recorder) onData(_, pSample []byte, frameCount uint32) {
	sampleCount := frameCount * r.channels
	samples := bytesToFloat32(pSample, sampleCount)

	r.meter.Observe(samples)

	r.mu.Lock()
	r.buf = append(r.buf, samples...)
	r.mu.Unlock()
}

// bytesToFloat32 converts raw bytes (little-endian float32) to a float32 slice.
func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 4
		if offset+4 > uint32(len(data)) {
			break
		}
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}

func samplesDuration(n int, sampleRate, channels uint32) float64 {
	if sampleRate == 0 || channels == 0 {
		return 0
	}
	return float64(n) / float64(channels) / float64(sampleRate)
}
