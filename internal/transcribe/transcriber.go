// Package transcribe provides speech-to-text backends.
//
// Supported providers:
//   - deepgram: Deepgram pre-recorded audio API (nova-3, nova-2)
//   - openai: OpenAI audio transcriptions API
//   - parakeet: local Parakeet TDT model (not available in this build)
package transcribe

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chaz8081/ostt/internal/config"
)

// Request carries everything a provider needs for one transcription.
type Request struct {
	Model    Model
	Endpoint string // overrides Model.Endpoint() when set
	APIKey   string
	Keywords []string
	// Providers is the resolved provider section of the user config.
	Providers config.ProvidersConfig
}

// endpoint returns the URL the request is sent to.
func (r *Request) endpoint() string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	return r.Model.Endpoint()
}

// Transcriber converts an encoded audio file to text.
type Transcriber interface {
	// Transcribe sends the audio file at audioPath and returns the transcript.
	Transcribe(ctx context.Context, req *Request, audioPath string) (string, error)
	// Name returns the provider name.
	Name() string
}

// New creates the Transcriber for the model's provider.
func New(model Model, log *zap.Logger) (Transcriber, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch model.Provider() {
	case ProviderDeepgram:
		return NewDeepgramTranscriber(nil, log), nil
	case ProviderOpenAI:
		return NewOpenAITranscriber(nil, log), nil
	case ProviderParakeet:
		return NewParakeetTranscriber(log), nil
	default:
		return nil, fmt.Errorf("transcribe: unknown model %q", model)
	}
}
