package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/usecase"
	"github.com/abcbank/voxteller/pkg/utils/errutil"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/abcbank/voxteller/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	maxTranscriptBytes = 4 << 10
	maxAudioBytes      = 10 << 20
	minAudioBytes      = 1 << 10
)

type chatRequest struct {
	Text string `json:"text"`
}

// chatTurn is the stateless transport: one request, one full turn. The body
// is either JSON text or multipart audio that goes through the transcriber
// first.
func (s *Server) chatTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transcript, ok := s.extractTranscript(w, r)
	if !ok {
		return
	}
	if transcript == "" || len(transcript) > maxTranscriptBytes {
		errutil.HandleHTTP(ctx, w, goerr.New("transcript must be between 1 byte and 4KiB"), http.StatusBadRequest)
		return
	}

	turn, err := s.uc.ChatTurn(ctx, sessionIDFromURL(r), transcript)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
		case errors.Is(err, usecase.ErrSessionEnded):
			errutil.HandleHTTP(ctx, w, err, http.StatusConflict)
		default:
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		}
		return
	}

	body := map[string]any{
		"session_id": turn.SessionID,
		"turn_index": turn.Index,
		"transcript": turn.Transcript,
		"response":   turn.Response,
		"flow":       turn.Flow,
		"tool_calls": turn.ToolCalls,
	}

	if s.uc.HasSynthesizer() {
		audio, err := s.uc.Synthesize(ctx, turn.Response)
		if err != nil {
			// TTS failure degrades to a text-only response
			logging.From(ctx).Warn("speech synthesis failed", "error", err)
		} else {
			body["audio"] = base64.StdEncoding.EncodeToString(audio)
		}
	}

	respondJSON(w, r, http.StatusOK, body)
}

// extractTranscript pulls the utterance text out of the request, running
// speech-to-text for audio uploads. On failure it writes the error response
// and returns ok=false.
func (s *Server) extractTranscript(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid content type"), http.StatusBadRequest)
		return "", false
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse multipart body"), http.StatusBadRequest)
			return "", false
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "audio part is required"), http.StatusBadRequest)
			return "", false
		}
		defer safe.Close(ctx, file)

		audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read audio"), http.StatusBadRequest)
			return "", false
		}
		if len(audio) < minAudioBytes || len(audio) > maxAudioBytes {
			errutil.HandleHTTP(ctx, w, goerr.New("audio must be between 1KiB and 10MiB"), http.StatusBadRequest)
			return "", false
		}

		transcript, err := s.uc.Transcribe(ctx, audio)
		if err != nil {
			// Transcription failures are turn-level: the session stays alive
			// and the caller may retry.
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "transcription failed"), http.StatusBadGateway)
			return "", false
		}
		return transcript, true
	}

	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxTranscriptBytes+1024)).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return "", false
	}
	return req.Text, true
}
