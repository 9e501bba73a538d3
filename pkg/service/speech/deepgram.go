package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	defaultDeepgramBaseURL = "https://api.deepgram.com/v1"
	defaultDeepgramVoice   = "aura-asteria-en"
)

// DeepgramSynthesizer runs text-to-speech against the Deepgram Aura endpoint
type DeepgramSynthesizer struct {
	apiKey     string
	voice      string
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.Synthesizer = &DeepgramSynthesizer{}

type DeepgramOption func(*DeepgramSynthesizer)

func WithDeepgramBaseURL(url string) DeepgramOption {
	return func(s *DeepgramSynthesizer) {
		s.baseURL = url
	}
}

func WithDeepgramVoice(voice string) DeepgramOption {
	return func(s *DeepgramSynthesizer) {
		s.voice = voice
	}
}

func WithDeepgramHTTPClient(client *http.Client) DeepgramOption {
	return func(s *DeepgramSynthesizer) {
		s.httpClient = client
	}
}

func NewDeepgramSynthesizer(apiKey string, options ...DeepgramOption) *DeepgramSynthesizer {
	s := &DeepgramSynthesizer{
		apiKey:     apiKey,
		voice:      defaultDeepgramVoice,
		baseURL:    defaultDeepgramBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *DeepgramSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode synthesis request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/speak?model="+s.voice, bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build synthesis request")
	}
	req.Header.Set("Authorization", "Token "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "synthesis request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("synthesis service error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)),
		)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read synthesized audio")
	}
	return audio, nil
}
