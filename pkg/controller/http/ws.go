package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/utils/errutil"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// utteranceQueueSize bounds how many finalized utterances may wait while a
// turn is in flight. Beyond that, new utterances are dropped rather than
// interleaved into the running conversation.
const utteranceQueueSize = 4

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Voice clients connect from native apps and telephony bridges, not
	// browsers on our origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is one frame from the caller side. Audio arrives as binary
// frames instead.
type clientMessage struct {
	Type string `json:"type"` // "text" or "end"
	Text string `json:"text,omitempty"`
}

// turnEvent is the server frame sent after each completed turn
type turnEvent struct {
	Type       string                 `json:"type"`
	Transcript string                 `json:"transcript"`
	Response   string                 `json:"response"`
	Flow       string                 `json:"flow"`
	Verified   bool                   `json:"verified"`
	ToolCalls  []model.ToolCallRecord `json:"tool_calls,omitempty"`
}

type utterance struct {
	text  string
	audio []byte
}

// handleCall is the persistent-connection transport. The conversation history
// lives in memory for the life of the connection; turns are processed
// strictly one at a time by a single worker.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.uc.GetSession(ctx, sessionIDFromURL(r))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	if session.Ended {
		errutil.HandleHTTP(ctx, w, goerr.New("session has ended"), http.StatusConflict)
		return
	}

	history, err := s.uc.LoadHistory(ctx, session.ID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(ctx).Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := logging.From(ctx)
	queue := make(chan utterance, utteranceQueueSize)

	eg, egCtx := errgroup.WithContext(ctx)

	// Read pump: only enqueues; it never touches conversation state
	eg.Go(func() error {
		defer close(queue)
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return goerr.Wrap(err, "websocket read failed")
				}
				return nil
			}

			var u utterance
			switch msgType {
			case websocket.BinaryMessage:
				if len(data) < minAudioBytes || len(data) > maxAudioBytes {
					logger.Warn("dropping audio frame of invalid size", "bytes", len(data))
					continue
				}
				u = utterance{audio: data}
			case websocket.TextMessage:
				var msg clientMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					logger.Warn("dropping malformed client frame", "error", err)
					continue
				}
				if msg.Type == "end" {
					return nil
				}
				if msg.Text == "" {
					continue
				}
				u = utterance{text: msg.Text}
			default:
				continue
			}

			select {
			case queue <- u:
			default:
				logger.Warn("utterance queue full, dropping", "sessionID", session.ID)
			}
		}
	})

	// Worker: processes utterances serially against the in-memory state
	eg.Go(func() error {
		for u := range queue {
			// An in-flight turn must complete and persist even if the
			// connection drops mid-turn.
			turnCtx := logging.With(context.WithoutCancel(egCtx), logger)
			if err := s.processUtterance(turnCtx, conn, session, &history, u); err != nil {
				return err
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		logger.Error("call connection failed", "error", err, "sessionID", session.ID)
	}

	// Ending the call stops accepting audio; the last turn has already
	// completed by the time we get here.
	if _, err := s.uc.EndSession(context.WithoutCancel(ctx), session.ID); err != nil {
		logger.Error("failed to end session", "error", err, "sessionID", session.ID)
	}
}

func (s *Server) processUtterance(ctx context.Context, conn *websocket.Conn, session *model.Session, history *[]model.Message, u utterance) error {
	transcript := u.text
	if transcript == "" {
		text, err := s.uc.Transcribe(ctx, u.audio)
		if err != nil {
			// Transient speech failure: report and keep the call alive
			logging.From(ctx).Error("transcription failed", "error", err)
			return writeJSON(conn, map[string]string{"type": "error", "error": "transcription_failed"})
		}
		transcript = text
	}

	turn, err := s.uc.StreamTurn(ctx, session, *history, transcript)
	if err != nil {
		logging.From(ctx).Error("turn failed", "error", err, "sessionID", session.ID)
		return writeJSON(conn, map[string]string{"type": "error", "error": "turn_failed"})
	}
	*history = append(*history, turn.Messages...)

	if err := writeJSON(conn, turnEvent{
		Type:       "turn",
		Transcript: turn.Transcript,
		Response:   turn.Response,
		Flow:       turn.Flow.String(),
		Verified:   session.Verified,
		ToolCalls:  turn.ToolCalls,
	}); err != nil {
		return goerr.Wrap(err, "failed to send turn event")
	}

	if !s.uc.HasSynthesizer() {
		return nil
	}
	audio, err := s.uc.Synthesize(ctx, turn.Response)
	if err != nil {
		logging.From(ctx).Warn("speech synthesis failed", "error", err)
		return nil
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return goerr.Wrap(err, "failed to send audio")
	}
	return nil
}

func writeJSON(conn *websocket.Conn, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return goerr.Wrap(err, "failed to encode frame")
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
