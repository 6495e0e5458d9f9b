package transcribe

import (
	"context"

	"go.uber.org/zap"
)

// ParakeetTranscriber stands in for the local Parakeet engine, which is
// not compiled into this build. The model stays selectable so configs
// written for it keep loading.
type ParakeetTranscriber struct {
	log *zap.Logger
}

var _ Transcriber = (*ParakeetTranscriber)(nil)

// NewParakeetTranscriber creates the Parakeet placeholder.
func NewParakeetTranscriber(log *zap.Logger) *ParakeetTranscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &ParakeetTranscriber{log: log.Named("parakeet")}
}

// Name returns the provider name.
func (p *ParakeetTranscriber) Name() string { return string(ProviderParakeet) }

// Transcribe always fails with KindUnsupported.
func (p *ParakeetTranscriber) Transcribe(_ context.Context, req *Request, audioPath string) (string, error) {
	p.log.Debug("parakeet requested",
		zap.String("audio", audioPath),
		zap.Bool("use_gpu", req.Providers.Parakeet.UseGPU))
	return "", &Error{
		Kind:    KindUnsupported,
		Message: "Local Parakeet transcription is not available in this build. Run 'ostt auth' to choose a cloud model.",
	}
}
