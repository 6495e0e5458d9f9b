package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// OutputFormat is a parsed audio.output_format value: the codec name
// followed by extra ffmpeg arguments.
type OutputFormat struct {
	Codec string
	Args  []string
}

// ParseOutputFormat splits a format string such as "mp3 -ab 16k -ar 12000".
func ParseOutputFormat(s string) (OutputFormat, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return OutputFormat{}, fmt.Errorf("audio: empty output format")
	}
	codec := strings.ToLower(fields[0])
	if strings.HasPrefix(codec, "-") {
		return OutputFormat{}, fmt.Errorf("audio: output format %q must start with a codec name", s)
	}
	return OutputFormat{Codec: codec, Args: fields[1:]}, nil
}

// Extension returns the file extension ffmpeg should write.
func (f OutputFormat) Extension() string {
	switch f.Codec {
	case "opus", "vorbis":
		return "ogg"
	case "aac":
		return "m4a"
	default:
		return f.Codec
	}
}

// Passthrough reports whether the WAV capture can be used as is.
func (f OutputFormat) Passthrough() bool {
	return f.Codec == "wav" && len(f.Args) == 0
}

// Encoder converts WAV captures with an external ffmpeg.
type Encoder struct {
	ffmpegPath string
	log        *zap.Logger
}

// NewEncoder returns an encoder that runs ffmpegPath, or "ffmpeg" from
// PATH when empty.
func NewEncoder(ffmpegPath string, log *zap.Logger) *Encoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Encoder{ffmpegPath: ffmpegPath, log: log.Named("encoder")}
}

// Encode converts the WAV file at in to format and returns the new path,
// next to in with the format's extension. Passthrough formats return in
// unchanged.
func (e *Encoder) Encode(ctx context.Context, in string, format OutputFormat) (string, error) {
	if format.Passthrough() {
		return in, nil
	}

	out := strings.TrimSuffix(in, ".wav") + "." + format.Extension()
	if out == in {
		out = in + "." + format.Extension()
	}

	args := ffmpegArgs(in, out, format)
	e.log.Debug("encoding recording", zap.String("ffmpeg", e.ffmpegPath), zap.Strings("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("audio: ffmpeg %s: %w: %s", format.Codec, err, msg)
		}
		return "", fmt.Errorf("audio: ffmpeg %s: %w", format.Codec, err)
	}
	return out, nil
}

func ffmpegArgs(in, out string, format OutputFormat) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", in}
	args = append(args, format.Args...)
	return append(args, out)
}
