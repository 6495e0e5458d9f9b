// Package config loads and saves the ostt TOML configuration file,
// stored at ~/.config/ostt/ostt.toml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// AppName names the config directory and file.
const AppName = "ostt"

// Default values for optional keys.
const (
	DefaultDevice              = "default"
	DefaultSampleRate          = 16000
	DefaultPeakVolumeThreshold = 90
	DefaultReferenceLevelDB    = -20
	DefaultOutputFormat        = "mp3 -ab 16k -ar 12000"
	DefaultUttSplit            = 0.8
)

// Config is the complete application configuration.
type Config struct {
	Audio     AudioConfig     `toml:"audio"`
	Providers ProvidersConfig `toml:"providers"`
}

// AudioConfig holds audio capture and encoding settings.
type AudioConfig struct {
	// Device is "default", a numeric index from `ostt list-devices`, or a device name.
	Device              string `toml:"device"`
	SampleRate          uint32 `toml:"sample_rate"`           // Hz, 16000 recommended for speech
	PeakVolumeThreshold uint8  `toml:"peak_volume_threshold"` // 0-100, percent of reference level
	ReferenceLevelDB    int8   `toml:"reference_level_db"`    // dBFS shown as 100% on the meter
	OutputFormat        string `toml:"output_format"`         // "codec [ffmpeg options]"
}

// ProvidersConfig holds the per-provider options. Each section is
// defaulted independently.
type ProvidersConfig struct {
	Deepgram DeepgramConfig `toml:"deepgram"`
	OpenAI   OpenAIConfig   `toml:"openai"`
	Parakeet ParakeetConfig `toml:"parakeet"`
}

// DeepgramConfig holds Deepgram feature flags. Flags left false are not
// sent, so Deepgram applies its own defaults.
type DeepgramConfig struct {
	FillerWords     bool    `toml:"filler_words"`     // include "uh", "um"
	Measurements    bool    `toml:"measurements"`     // spoken measurements to abbreviations
	Numerals        bool    `toml:"numerals"`         // written numbers to digits
	Paragraphs      bool    `toml:"paragraphs"`       // split into paragraphs
	ProfanityFilter bool    `toml:"profanity_filter"` // mask profanity
	Punctuate       bool    `toml:"punctuate"`        // punctuation and capitalization
	SmartFormat     bool    `toml:"smart_format"`     // smart formatting
	Utterances      bool    `toml:"utterances"`       // segment into semantic units
	UttSplit        float64 `toml:"utt_split"`        // pause in seconds between utterances
	MIPOptOut       bool    `toml:"mip_opt_out"`      // opt out of the Model Improvement Program
	DetectLanguage  bool    `toml:"detect_language"`  // automatic language detection
}

// OpenAIConfig is reserved for OpenAI options. It has no fields yet.
type OpenAIConfig struct{}

// ParakeetConfig holds local Parakeet model settings.
type ParakeetConfig struct {
	UseGPU bool `toml:"use_gpu"`
}

// Dir returns the config directory, ~/.config/ostt.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", &Error{Kind: KindNotFound, Op: "resolve home directory", Err: err}
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DataDir returns the data directory holding recordings and history,
// ~/.local/share/ostt.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", &Error{Kind: KindNotFound, Op: "resolve home directory", Err: err}
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// Path returns the config file path, ~/.config/ostt/ostt.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName+".toml"), nil
}

// Default returns a Config with every default applied. It does not touch
// the filesystem.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			Device:              DefaultDevice,
			SampleRate:          DefaultSampleRate,
			PeakVolumeThreshold: DefaultPeakVolumeThreshold,
			ReferenceLevelDB:    DefaultReferenceLevelDB,
			OutputFormat:        DefaultOutputFormat,
		},
		Providers: DefaultProviders(),
	}
}

// DefaultProviders returns provider options with every default applied.
func DefaultProviders() ProvidersConfig {
	return ProvidersConfig{
		Deepgram: DeepgramConfig{UttSplit: DefaultUttSplit},
	}
}

// Load reads the config file from its fixed location. It never creates
// the file or directory; run setup (`ostt auth` or `ostt config`) first.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and parses the config file at path. Optional keys that
// are missing take their defaults; a missing audio section, audio.device
// or audio.sample_rate is a parse error. Values that fit their types load
// as written; range checks are left to Validate.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindIO, Op: "read " + path, Err: err}
	}

	cfg := &Config{
		Audio: AudioConfig{
			PeakVolumeThreshold: DefaultPeakVolumeThreshold,
			ReferenceLevelDB:    DefaultReferenceLevelDB,
			OutputFormat:        DefaultOutputFormat,
		},
		Providers: DefaultProviders(),
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, &Error{Kind: KindParse, Op: "parse " + path, Err: err}
	}

	for _, key := range [][]string{{"audio"}, {"audio", "device"}, {"audio", "sample_rate"}} {
		if !md.IsDefined(key...) {
			return nil, &Error{Kind: KindParse, Op: "parse " + path, Err: fmt.Errorf("missing required key %q", joinKey(key))}
		}
	}

	return cfg, nil
}

// Save writes cfg to the fixed config location, creating the directory
// if needed.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo encodes cfg as TOML and writes it to path, creating parent
// directories first.
func SaveTo(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return &Error{Kind: KindIO, Op: "encode config", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Kind: KindIO, Op: "create " + filepath.Dir(path), Err: err}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Kind: KindIO, Op: "write " + path, Err: err}
	}

	zap.L().Info("configuration saved", zap.String("path", path))
	return nil
}

// Marshal returns the canonical TOML form of the config.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the config for values outside their documented ranges.
// Callers that record audio run it before opening a device.
func (c *Config) Validate() error {
	if c.Audio.Device == "" {
		return fmt.Errorf("audio.device must not be empty")
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.PeakVolumeThreshold > 100 {
		return fmt.Errorf("audio.peak_volume_threshold must be 0-100, got %d", c.Audio.PeakVolumeThreshold)
	}

	if c.Providers.Deepgram.UttSplit < 0 {
		return fmt.Errorf("providers.deepgram.utt_split must be >= 0, got %v", c.Providers.Deepgram.UttSplit)
	}

	return nil
}

func joinKey(key []string) string {
	s := key[0]
	for _, k := range key[1:] {
		s += "." + k
	}
	return s
}
