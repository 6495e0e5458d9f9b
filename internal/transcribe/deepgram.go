package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chaz8081/ostt/internal/config"
)

// uttSplitTolerance is how close utt_split must be to the default to be
// treated as unset.
const uttSplitTolerance = 1e-9

// DeepgramTranscriber sends binary audio to Deepgram's pre-recorded API.
type DeepgramTranscriber struct {
	client *http.Client
	log    *zap.Logger
}

// Compile-time interface satisfaction check.
var _ Transcriber = (*DeepgramTranscriber)(nil)

// deepgramResponse mirrors the fields read from a pre-recorded response.
// Pointers and nil slices distinguish missing or null fields from empty
// values.
type deepgramResponse struct {
	Results *struct {
		Channels []struct {
			Alternatives []struct {
				Transcript *string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// NewDeepgramTranscriber creates a Deepgram transcriber. A nil client uses
// an http.Client with no timeout of its own.
func NewDeepgramTranscriber(client *http.Client, log *zap.Logger) *DeepgramTranscriber {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DeepgramTranscriber{client: client, log: log.Named("deepgram")}
}

// Name returns the provider name.
func (d *DeepgramTranscriber) Name() string { return string(ProviderDeepgram) }

// Transcribe reads the whole audio file, posts it to Deepgram and returns
// the first alternative of the first channel.
func (d *DeepgramTranscriber) Transcribe(ctx context.Context, req *Request, audioPath string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", &Error{Kind: KindAudioFile, Message: fmt.Sprintf("Failed to read audio file: %v", err), Err: err}
	}

	reqURL := deepgramURL(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(audio))
	if err != nil {
		return "", networkError(ProviderDeepgram, &buildError{err: err})
	}
	httpReq.Header.Set("Authorization", "Token "+req.APIKey)
	httpReq.Header.Set("Content-Type", "audio/mpeg")

	d.log.Debug("sending audio",
		zap.String("model", req.Model.APIModelName()),
		zap.Int("bytes", len(audio)),
		zap.Int("keywords", len(req.Keywords)))

	start := time.Now()
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", networkError(ProviderDeepgram, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			body = nil
		}
		d.log.Debug("request failed", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", statusError(ProviderDeepgram, resp.StatusCode, body)
	}

	var result deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &Error{Kind: KindResponseParse, Message: fmt.Sprintf("Failed to parse Deepgram response: %v", err), Err: err}
	}
	if result.Results == nil {
		return "", &Error{Kind: KindResponseParse, Message: "Failed to parse Deepgram response: missing field `results`"}
	}

	channels := result.Results.Channels
	if channels == nil || (len(channels) > 0 && channels[0].Alternatives == nil) {
		return "", &Error{Kind: KindResponseParse, Message: "Failed to parse Deepgram response: missing field `channels` or `alternatives`"}
	}
	if len(channels) == 0 || len(channels[0].Alternatives) == 0 {
		return "", &Error{Kind: KindResponseParse, Message: "No transcript found in Deepgram response"}
	}

	transcript := channels[0].Alternatives[0].Transcript
	if transcript == nil {
		return "", &Error{Kind: KindResponseParse, Message: "Failed to parse Deepgram response: missing field `transcript`"}
	}

	d.log.Debug("transcribed", zap.Duration("elapsed", time.Since(start)))
	return *transcript, nil
}

// deepgramURL builds the request URL: model, enabled feature flags in a
// fixed order, non-default utt_split, then one parameter per keyword.
func deepgramURL(req *Request) string {
	var b strings.Builder
	b.WriteString(req.endpoint())
	b.WriteString("?model=")
	b.WriteString(req.Model.APIModelName())

	dg := req.Providers.Deepgram
	for _, flag := range deepgramFlags(dg) {
		if flag.on {
			b.WriteString("&" + flag.name + "=true")
		}
	}

	if math.Abs(dg.UttSplit-config.DefaultUttSplit) > uttSplitTolerance {
		b.WriteString("&utt_split=")
		b.WriteString(strconv.FormatFloat(dg.UttSplit, 'f', -1, 64))
	}

	if dg.MIPOptOut {
		b.WriteString("&mip_opt_out=true")
	}
	if dg.DetectLanguage {
		b.WriteString("&detect_language=true")
	}

	if len(req.Keywords) > 0 {
		param := req.Model.keywordParam()
		for _, kw := range req.Keywords {
			b.WriteString("&" + param + "=" + encodeQueryValue(kw))
		}
	}

	return b.String()
}

type deepgramFlag struct {
	name string
	on   bool
}

func deepgramFlags(dg config.DeepgramConfig) []deepgramFlag {
	return []deepgramFlag{
		{"filler_words", dg.FillerWords},
		{"measurements", dg.Measurements},
		{"numerals", dg.Numerals},
		{"paragraphs", dg.Paragraphs},
		{"profanity_filter", dg.ProfanityFilter},
		{"punctuate", dg.Punctuate},
		{"smart_format", dg.SmartFormat},
		{"utterances", dg.Utterances},
	}
}

// encodeQueryValue percent-encodes s, with spaces as %20.
func encodeQueryValue(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
