package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chaz8081/ostt/internal/audio"
	"github.com/chaz8081/ostt/internal/config"
	"github.com/chaz8081/ostt/internal/history"
	"github.com/chaz8081/ostt/internal/inject"
	"github.com/chaz8081/ostt/internal/transcribe"
)

const (
	channels     = 1
	minRecording = 300 * time.Millisecond
	meterWidth   = 30
	meterRefresh = 100 * time.Millisecond
)

func (a *app) record(ctx context.Context) error {
	cfg, req, err := a.prepare()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w\n\nRun 'ostt config' to locate the file", err)
	}
	format, err := audio.ParseOutputFormat(cfg.Audio.OutputFormat)
	if err != nil {
		return err
	}
	injector, err := inject.NewInjector(a.output)
	if err != nil {
		return err
	}

	rec, err := audio.NewRecorder(cfg.Audio, channels, a.log)
	if err != nil {
		return fmt.Errorf("%w\n\nCheck microphone access and the audio.device setting ('ostt list-devices')", err)
	}
	defer rec.Close()

	if err := rec.Start(); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "Recording from %s. Press Enter to stop, Ctrl+C to cancel.\n", rec.DeviceName())

	stopped := make(chan struct{})
	go func() {
		_, _ = a.in.ReadString('\n')
		close(stopped)
	}()

	a.showLevel(ctx, rec.Meter(), stopped)
	samples := rec.Stop()

	if ctx.Err() != nil {
		return errors.New("recording cancelled")
	}

	duration := time.Duration(rec.Duration() * float64(time.Second))
	if len(samples) == 0 || duration < minRecording {
		return fmt.Errorf("recording too short (%.1fs)", duration.Seconds())
	}

	meter := rec.Meter()
	if meter.Silent() {
		a.log.Warn("no audio signal captured", zap.String("device", rec.DeviceName()))
	} else if peak := meter.MaxLevel(); peak > float64(cfg.Audio.PeakVolumeThreshold) {
		a.log.Warn("input level exceeded the peak threshold",
			zap.Float64("peak_percent", peak),
			zap.Float64("peak_dbfs", meter.MaxDBFS()),
			zap.Uint8("threshold", cfg.Audio.PeakVolumeThreshold))
	}

	audioPath, err := a.saveRecording(ctx, samples, cfg.Audio.SampleRate, format)
	if err != nil {
		return err
	}

	return a.finish(ctx, req, audioPath, duration, injector)
}

// saveRecording writes samples to the recordings directory and encodes
// them to format.
func (a *app) saveRecording(ctx context.Context, samples []float32, sampleRate uint32, format audio.OutputFormat) (string, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(dataDir, "recordings")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create recordings directory: %w", err)
	}

	wavPath := audio.NewRecordingPath(dir)
	if err := audio.WriteWAV(wavPath, samples, int(sampleRate), channels); err != nil {
		return "", err
	}

	out, err := audio.NewEncoder("", a.log).Encode(ctx, wavPath, format)
	if err != nil {
		return "", err
	}
	if out != wavPath {
		if err := os.Remove(wavPath); err != nil {
			a.log.Debug("could not remove intermediate wav", zap.String("path", wavPath), zap.Error(err))
		}
	}

	a.log.Info("recording saved", zap.String("path", out))
	return out, nil
}

func (a *app) transcribeFile(ctx context.Context, path string) error {
	_, req, err := a.prepare()
	if err != nil {
		return err
	}
	injector, err := inject.NewInjector(a.output)
	if err != nil {
		return err
	}
	return a.finish(ctx, req, path, a.audioDuration(path), injector)
}

// audioDuration returns the length of a WAV file, or 0 for other formats
// and unreadable files.
func (a *app) audioDuration(path string) time.Duration {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return 0
	}
	samples, rate, chans, err := audio.ReadWAV(path)
	if err != nil {
		a.log.Debug("could not read wav duration", zap.String("path", path), zap.Error(err))
		return 0
	}
	return time.Duration(float64(len(samples)) / float64(chans) / float64(rate) * float64(time.Second))
}

// finish transcribes audioPath, stores the result in history and
// delivers it.
func (a *app) finish(ctx context.Context, req *transcribe.Request, audioPath string, duration time.Duration, injector inject.TextInjector) error {
	tr, err := transcribe.New(req.Model, a.log)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stderr, "Transcribing with %s...\n", req.Model)
	start := time.Now()
	text, err := tr.Transcribe(ctx, req, audioPath)
	if err != nil {
		return err
	}
	a.log.Info("transcription complete",
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		zap.Int("chars", len(text)))

	a.remember(ctx, history.Record{
		Model:     string(req.Model),
		AudioPath: absPath(audioPath),
		Text:      text,
		Duration:  duration,
	})

	if text == "" {
		fmt.Fprintln(a.stderr, "No speech detected")
	}
	return injector.Inject(text)
}

// remember stores rec in history. Failures are logged, not returned.
func (a *app) remember(ctx context.Context, rec history.Record) {
	store, err := openHistory(a.log)
	if err != nil {
		a.log.Warn("history unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	if _, err := store.Add(ctx, rec); err != nil {
		a.log.Warn("could not save transcription to history", zap.Error(err))
	}
}

// showLevel redraws the input meter until stopped or ctx is done.
func (a *app) showLevel(ctx context.Context, meter *audio.Meter, stopped <-chan struct{}) {
	ticker := time.NewTicker(meterRefresh)
	defer ticker.Stop()
	defer fmt.Fprintln(a.stderr)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopped:
			return
		case <-ticker.C:
			fmt.Fprintf(a.stderr, "\r%s", renderMeter(meter.Level(), meter.Clipping(), meterWidth))
		}
	}
}

// renderMeter draws level (percent of the reference) as a bar of width
// cells. Levels above 100 fill the bar.
func renderMeter(level float64, clipping bool, width int) string {
	filled := int(math.Round(level / 100 * float64(width)))
	filled = max(0, min(filled, width))

	status := "    "
	if clipping {
		status = "CLIP"
	}
	return fmt.Sprintf("[%s%s] %3.0f%% %s",
		strings.Repeat("#", filled),
		strings.Repeat("-", width-filled),
		level,
		status)
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
