package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "whisper-large-v3"
)

// GroqTranscriber runs speech-to-text against the Groq Whisper endpoint
type GroqTranscriber struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.Transcriber = &GroqTranscriber{}

type GroqOption func(*GroqTranscriber)

func WithGroqBaseURL(url string) GroqOption {
	return func(t *GroqTranscriber) {
		t.baseURL = url
	}
}

func WithGroqModel(model string) GroqOption {
	return func(t *GroqTranscriber) {
		t.model = model
	}
}

func WithGroqHTTPClient(client *http.Client) GroqOption {
	return func(t *GroqTranscriber) {
		t.httpClient = client
	}
}

func NewGroqTranscriber(apiKey string, options ...GroqOption) *GroqTranscriber {
	t := &GroqTranscriber{
		apiKey:     apiKey,
		model:      defaultGroqModel,
		baseURL:    defaultGroqBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *GroqTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", goerr.Wrap(err, "failed to create multipart form")
	}
	safe.Write(ctx, part, audio)
	if err := writer.WriteField("model", t.model); err != nil {
		return "", goerr.Wrap(err, "failed to write model field")
	}
	if err := writer.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build transcription request")
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "transcription request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", goerr.New("transcription service error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)),
		)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", goerr.Wrap(err, "failed to decode transcription response")
	}
	return result.Text, nil
}
