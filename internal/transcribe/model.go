package transcribe

import (
	"fmt"
	"strings"
)

// Provider identifies a transcription backend.
type Provider string

const (
	ProviderDeepgram Provider = "deepgram"
	ProviderOpenAI   Provider = "openai"
	ProviderParakeet Provider = "parakeet"
)

// DisplayName is the provider name used in user-facing messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderDeepgram:
		return "Deepgram"
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderParakeet:
		return "Parakeet"
	default:
		return string(p)
	}
}

// Model is a transcription model identifier as stored in credentials.
type Model string

const (
	DeepgramNova3         Model = "deepgram-nova-3"
	DeepgramNova2         Model = "deepgram-nova-2"
	OpenAIGPT4oTranscribe Model = "openai-gpt-4o-transcribe"
	OpenAIGPT4oMini       Model = "openai-gpt-4o-mini-transcribe"
	OpenAIWhisper1        Model = "openai-whisper-1"
	ParakeetTDT06BV3      Model = "parakeet-tdt-0.6b-v3"

	DefaultModel = DeepgramNova3
)

const (
	deepgramListenEndpoint   = "https://api.deepgram.com/v1/listen"
	openAITranscribeEndpoint = "https://api.openai.com/v1/audio/transcriptions"
)

type modelInfo struct {
	provider Provider
	apiName  string
	endpoint string
}

var models = map[Model]modelInfo{
	DeepgramNova3:         {ProviderDeepgram, "nova-3", deepgramListenEndpoint},
	DeepgramNova2:         {ProviderDeepgram, "nova-2", deepgramListenEndpoint},
	OpenAIGPT4oTranscribe: {ProviderOpenAI, "gpt-4o-transcribe", openAITranscribeEndpoint},
	OpenAIGPT4oMini:       {ProviderOpenAI, "gpt-4o-mini-transcribe", openAITranscribeEndpoint},
	OpenAIWhisper1:        {ProviderOpenAI, "whisper-1", openAITranscribeEndpoint},
	ParakeetTDT06BV3:      {ProviderParakeet, "parakeet-tdt-0.6b-v3", ""},
}

// Models lists every known model in display order.
func Models() []Model {
	return []Model{
		DeepgramNova3,
		DeepgramNova2,
		OpenAIGPT4oTranscribe,
		OpenAIGPT4oMini,
		OpenAIWhisper1,
		ParakeetTDT06BV3,
	}
}

// ParseModel validates a model identifier.
func ParseModel(s string) (Model, error) {
	m := Model(strings.TrimSpace(s))
	if _, ok := models[m]; !ok {
		names := make([]string, 0, len(models))
		for _, known := range Models() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("transcribe: unknown model %q (supported: %s)", s, strings.Join(names, ", "))
	}
	return m, nil
}

// Provider returns the backend serving the model.
func (m Model) Provider() Provider { return models[m].provider }

// APIModelName returns the model name sent to the provider API.
func (m Model) APIModelName() string { return models[m].apiName }

// Endpoint returns the provider endpoint URL. Local models have none.
func (m Model) Endpoint() string { return models[m].endpoint }

// keywordParam returns the Deepgram query parameter used for keywords.
// nova-3 takes keyterms; nova-2 and any other model take keywords.
func (m Model) keywordParam() string {
	switch m {
	case DeepgramNova3:
		return "keyterm"
	case DeepgramNova2:
		return "keywords"
	default:
		return "keywords"
	}
}
