package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// OpenAITranscriber uploads audio to OpenAI's transcriptions endpoint.
type OpenAITranscriber struct {
	client *http.Client
	log    *zap.Logger
}

var _ Transcriber = (*OpenAITranscriber)(nil)

type openAIResponse struct {
	Text string `json:"text"`
}

// NewOpenAITranscriber creates an OpenAI transcriber. A nil client uses an
// http.Client with no timeout of its own.
func NewOpenAITranscriber(client *http.Client, log *zap.Logger) *OpenAITranscriber {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAITranscriber{client: client, log: log.Named("openai")}
}

// Name returns the provider name.
func (o *OpenAITranscriber) Name() string { return string(ProviderOpenAI) }

// Transcribe posts the audio file as multipart/form-data. Keywords are
// passed as the prompt to bias spelling.
func (o *OpenAITranscriber) Transcribe(ctx context.Context, req *Request, audioPath string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", &Error{Kind: KindAudioFile, Message: fmt.Sprintf("Failed to read audio file: %v", err), Err: err}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", networkError(ProviderOpenAI, &buildError{err: err})
	}
	if _, err := part.Write(audio); err != nil {
		return "", networkError(ProviderOpenAI, &buildError{err: err})
	}
	if err := w.WriteField("model", req.Model.APIModelName()); err != nil {
		return "", networkError(ProviderOpenAI, &buildError{err: err})
	}
	if len(req.Keywords) > 0 {
		if err := w.WriteField("prompt", strings.Join(req.Keywords, ", ")); err != nil {
			return "", networkError(ProviderOpenAI, &buildError{err: err})
		}
	}
	if err := w.Close(); err != nil {
		return "", networkError(ProviderOpenAI, &buildError{err: err})
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.endpoint(), &buf)
	if err != nil {
		return "", networkError(ProviderOpenAI, &buildError{err: err})
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	o.log.Debug("sending audio",
		zap.String("model", req.Model.APIModelName()),
		zap.Int("bytes", len(audio)))

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", networkError(ProviderOpenAI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			body = nil
		}
		return "", statusError(ProviderOpenAI, resp.StatusCode, body)
	}

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &Error{Kind: KindResponseParse, Message: fmt.Sprintf("Failed to parse OpenAI response: %v", err), Err: err}
	}

	return strings.TrimSpace(result.Text), nil
}
