package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ostt.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireKind(t *testing.T, err error, want Kind) {
	t.Helper()
	require.Error(t, err)
	var cerr *Error
	require.True(t, errors.As(err, &cerr), "error %v is not a *config.Error", err)
	assert.Equal(t, want, cerr.Kind, "error: %v", err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "default", cfg.Audio.Device)
	assert.Equal(t, uint32(16000), cfg.Audio.SampleRate)
	assert.Equal(t, uint8(90), cfg.Audio.PeakVolumeThreshold)
	assert.Equal(t, int8(-20), cfg.Audio.ReferenceLevelDB)
	assert.Equal(t, "mp3 -ab 16k -ar 12000", cfg.Audio.OutputFormat)
	assert.Equal(t, 0.8, cfg.Providers.Deepgram.UttSplit)
	assert.False(t, cfg.Providers.Deepgram.Punctuate)
	assert.False(t, cfg.Providers.Parakeet.UseGPU)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
[audio]
device = "USB Microphone"
sample_rate = 44100
peak_volume_threshold = 75
reference_level_db = -12
output_format = "ogg -c:a libopus"

[providers.deepgram]
punctuate = true
smart_format = true
utt_split = 1.5
detect_language = true

[providers.openai]

[providers.parakeet]
use_gpu = true
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, AudioConfig{
		Device:              "USB Microphone",
		SampleRate:          44100,
		PeakVolumeThreshold: 75,
		ReferenceLevelDB:    -12,
		OutputFormat:        "ogg -c:a libopus",
	}, cfg.Audio)
	assert.Equal(t, DeepgramConfig{
		Punctuate:      true,
		SmartFormat:    true,
		UttSplit:       1.5,
		DetectLanguage: true,
	}, cfg.Providers.Deepgram)
	assert.True(t, cfg.Providers.Parakeet.UseGPU)
}

func TestLoadFromWithoutProviders(t *testing.T) {
	path := writeConfig(t, `
[audio]
device = "2"
sample_rate = 48000
peak_volume_threshold = 50
reference_level_db = -6
output_format = "wav"
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, AudioConfig{
		Device:              "2",
		SampleRate:          48000,
		PeakVolumeThreshold: 50,
		ReferenceLevelDB:    -6,
		OutputFormat:        "wav",
	}, cfg.Audio)
	assert.Equal(t, DefaultProviders(), cfg.Providers)
}

func TestLoadFromFillsOptionalAudioDefaults(t *testing.T) {
	path := writeConfig(t, `
[audio]
device = "default"
sample_rate = 16000

[providers.deepgram]
numerals = true
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, Default().Audio, cfg.Audio)
	assert.True(t, cfg.Providers.Deepgram.Numerals)
	assert.Equal(t, 0.8, cfg.Providers.Deepgram.UttSplit)
}

func TestLoadFromErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "malformed toml",
			content: "[audio\ndevice = ",
		},
		{
			name:    "missing audio section",
			content: "[providers.deepgram]\npunctuate = true\n",
		},
		{
			name:    "missing device",
			content: "[audio]\nsample_rate = 16000\n",
		},
		{
			name:    "missing sample rate",
			content: "[audio]\ndevice = \"default\"\n",
		},
		{
			name:    "type mismatch",
			content: "[audio]\ndevice = \"default\"\nsample_rate = \"fast\"\n",
		},
		{
			name:    "flag type mismatch",
			content: "[audio]\ndevice = \"default\"\nsample_rate = 16000\n[providers.deepgram]\npunctuate = \"yes\"\n",
		},
		{
			name:    "threshold overflows",
			content: "[audio]\ndevice = \"default\"\nsample_rate = 16000\npeak_volume_threshold = 300\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content))
			requireKind(t, err, KindParse)
		})
	}
}

func TestLoadFromKeepsOutOfRangeValues(t *testing.T) {
	content := `[audio]
device = ""
sample_rate = 0
peak_volume_threshold = 150

[providers.deepgram]
utt_split = -0.5
`
	cfg, err := LoadFrom(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Audio.Device)
	assert.Equal(t, uint32(0), cfg.Audio.SampleRate)
	assert.Equal(t, uint8(150), cfg.Audio.PeakVolumeThreshold)
	assert.Equal(t, -0.5, cfg.Providers.Deepgram.UttSplit)
	assert.Error(t, cfg.Validate())
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFrom("/nonexistent/ostt.toml")
	requireKind(t, err, KindIO)
}

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Audio.Device = "MacBook Pro Microphone"
	cfg.Audio.ReferenceLevelDB = -6
	cfg.Providers.Deepgram.FillerWords = true
	cfg.Providers.Deepgram.ProfanityFilter = true
	cfg.Providers.Deepgram.UttSplit = 1.25
	cfg.Providers.Deepgram.MIPOptOut = true
	cfg.Providers.Parakeet.UseGPU = true

	path := filepath.Join(t.TempDir(), "ostt.toml")
	require.NoError(t, SaveTo(path, cfg))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveAndLoadUseHomeConfigDir(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	cfg := Default()
	cfg.Providers.Deepgram.Punctuate = true
	require.NoError(t, Save(cfg))

	expected := filepath.Join(tmpHome, ".config", "ostt", "ostt.toml")
	_, err := os.Stat(expected)
	require.NoError(t, err, "Save should create %s", expected)

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadDoesNotCreateConfig(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	_, err := Load()
	requireKind(t, err, KindIO)

	_, err = os.Stat(filepath.Join(tmpHome, ".config", "ostt"))
	assert.True(t, os.IsNotExist(err), "Load must not create the config directory")
}

func TestPathWithoutHome(t *testing.T) {
	t.Setenv("HOME", "")

	_, err := Path()
	requireKind(t, err, KindNotFound)

	_, err = Load()
	requireKind(t, err, KindNotFound)
}

func TestSaveToUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := SaveTo(filepath.Join(blocker, "ostt", "ostt.toml"), Default())
	requireKind(t, err, KindIO)
}

func TestMarshalContainsSections(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	content := string(data)
	for _, want := range []string{"[audio]", "[providers.deepgram]", "[providers.parakeet]", "utt_split = 0.8"} {
		assert.True(t, strings.Contains(content, want), "marshalled config missing %q:\n%s", want, content)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty device",
			modify:  func(c *Config) { c.Audio.Device = "" },
			wantErr: true,
		},
		{
			name:    "zero sample rate",
			modify:  func(c *Config) { c.Audio.SampleRate = 0 },
			wantErr: true,
		},
		{
			name:    "threshold above 100",
			modify:  func(c *Config) { c.Audio.PeakVolumeThreshold = 101 },
			wantErr: true,
		},
		{
			name:    "threshold at 100",
			modify:  func(c *Config) { c.Audio.PeakVolumeThreshold = 100 },
			wantErr: false,
		},
		{
			name:    "negative utt_split",
			modify:  func(c *Config) { c.Providers.Deepgram.UttSplit = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
