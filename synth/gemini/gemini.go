// SPDX-License-Identifier: EPL-2.0

// Package gemini requests speech from the Gemini TTS models and returns the
// raw PCM they produce.
//
// The Gemini API ships inline audio as base64 inside JSON; the genai SDK
// already decodes it, so Synthesize hands back bytes ready for
// voxenc.Pipeline.StartPCM.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strconv"

	"google.golang.org/genai"

	"github.com/ik5/voxenc/voice"
)

const (
	// DefaultModel is the speech model used when none is configured.
	DefaultModel = "gemini-2.5-flash-preview-tts"
	// DefaultVoice is a prebuilt Gemini voice.
	DefaultVoice = "Kore"
	// DefaultSampleRate is what the service returns when the MIME type
	// carries no rate.
	DefaultSampleRate = 24000
)

var (
	ErrMissingAPIKey = errors.New("gemini: API key not set")
	ErrNoCandidate   = errors.New("gemini: response has no candidate")
	ErrBlocked       = errors.New("gemini: content blocked for safety")
	ErrNoAudio       = errors.New("gemini: response has no audio part")
)

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Speech is one synthesized utterance.
type Speech struct {
	// PCM is signed 16-bit little-endian mono audio.
	PCM        []byte
	SampleRate int
}

// Client synthesizes speech with one model.
type Client struct {
	models generator
	model  string
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a Client talking to the Gemini API with apiKey.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return newClient(gc.Models, opts...), nil
}

func newClient(models generator, opts ...Option) *Client {
	c := &Client{models: models, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize speaks prompt with the prebuilt voice voiceName. An empty
// voiceName selects DefaultVoice.
func (c *Client) Synthesize(ctx context.Context, prompt voice.Prompt, voiceName string) (*Speech, error) {
	if voiceName == "" {
		voiceName = DefaultVoice
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt.String()), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrNoCandidate
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return nil, ErrBlocked
	}
	if cand.Content == nil {
		return nil, ErrNoAudio
	}

	for _, part := range cand.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return &Speech{
			PCM:        part.InlineData.Data,
			SampleRate: sampleRate(part.InlineData.MIMEType),
		}, nil
	}

	return nil, ErrNoAudio
}

// sampleRate reads the rate parameter of an "audio/L16;rate=24000" style
// MIME type.
func sampleRate(mimeType string) int {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return DefaultSampleRate
	}
	rate, err := strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		return DefaultSampleRate
	}
	return rate
}
