package transcribe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModel(t *testing.T) {
	for _, m := range Models() {
		got, err := ParseModel(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseModel("  deepgram-nova-2 ")
	require.NoError(t, err)
	assert.Equal(t, DeepgramNova2, got)

	_, err = ParseModel("deepgram-nova-9")
	assert.ErrorContains(t, err, "unknown model")
}

func TestModelCatalogue(t *testing.T) {
	tests := []struct {
		model    Model
		provider Provider
		apiName  string
		endpoint string
	}{
		{DeepgramNova3, ProviderDeepgram, "nova-3", "https://api.deepgram.com/v1/listen"},
		{DeepgramNova2, ProviderDeepgram, "nova-2", "https://api.deepgram.com/v1/listen"},
		{OpenAIWhisper1, ProviderOpenAI, "whisper-1", "https://api.openai.com/v1/audio/transcriptions"},
		{ParakeetTDT06BV3, ProviderParakeet, "parakeet-tdt-0.6b-v3", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			assert.Equal(t, tt.provider, tt.model.Provider())
			assert.Equal(t, tt.apiName, tt.model.APIModelName())
			assert.Equal(t, tt.endpoint, tt.model.Endpoint())
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		model Model
		name  string
	}{
		{DeepgramNova3, "deepgram"},
		{OpenAIGPT4oMini, "openai"},
		{ParakeetTDT06BV3, "parakeet"},
	}

	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			tr, err := New(tt.model, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.name, tr.Name())
		})
	}

	_, err := New(Model("bogus"), nil)
	assert.Error(t, err)
}

func TestParakeetUnsupported(t *testing.T) {
	tr, err := New(ParakeetTDT06BV3, nil)
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), &Request{Model: ParakeetTDT06BV3}, "recording.wav")
	requireKind(t, err, KindUnsupported)
}
