package speech_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abcbank/voxteller/pkg/service/speech"
	"github.com/m-mizutani/gt"
)

func TestGroqTranscriber(t *testing.T) {
	var gotAuth, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gt.NoError(t, r.ParseMultipartForm(1 << 20))
		gotModel = r.FormValue("model")

		file, _, err := r.FormFile("file")
		gt.NoError(t, err)
		defer file.Close()

		w.Header().Set("Content-Type", "application/json")
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]string{
			"text": "what is my balance",
		}))
	}))
	defer server.Close()

	transcriber := speech.NewGroqTranscriber("test-key",
		speech.WithGroqBaseURL(server.URL),
		speech.WithGroqModel("whisper-large-v3-turbo"),
	)

	text, err := transcriber.Transcribe(context.Background(), []byte("fake-wav-bytes"))
	gt.NoError(t, err)
	gt.Equal(t, text, "what is my balance")
	gt.Equal(t, gotAuth, "Bearer test-key")
	gt.Equal(t, gotModel, "whisper-large-v3-turbo")
}

func TestGroqTranscriberServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	transcriber := speech.NewGroqTranscriber("test-key", speech.WithGroqBaseURL(server.URL))

	_, err := transcriber.Transcribe(context.Background(), []byte("fake-wav-bytes"))
	gt.Error(t, err)
}

func TestDeepgramSynthesizer(t *testing.T) {
	var gotAuth, gotVoice, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVoice = r.URL.Query().Get("model")

		var body map[string]string
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotText = body["text"]

		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("synthesized-audio"))
	}))
	defer server.Close()

	synthesizer := speech.NewDeepgramSynthesizer("test-key",
		speech.WithDeepgramBaseURL(server.URL),
		speech.WithDeepgramVoice("aura-luna-en"),
	)

	audio, err := synthesizer.Synthesize(context.Background(), "Your balance is $5,000")
	gt.NoError(t, err)
	gt.Equal(t, string(audio), "synthesized-audio")
	gt.Equal(t, gotAuth, "Token test-key")
	gt.Equal(t, gotVoice, "aura-luna-en")
	gt.Equal(t, gotText, "Your balance is $5,000")
}

func TestDeepgramSynthesizerServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	synthesizer := speech.NewDeepgramSynthesizer("test-key", speech.WithDeepgramBaseURL(server.URL))

	_, err := synthesizer.Synthesize(context.Background(), "hello")
	gt.Error(t, err)
}
