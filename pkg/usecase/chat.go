package usecase

import (
	"context"
	"time"

	"github.com/abcbank/voxteller/pkg/agent"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/utils/async"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var ErrSessionEnded = goerr.New("session has ended")

// ChatTurn runs one stateless turn: the conversation history is rebuilt from
// persisted turns, the reasoning loop runs, and the completed turn is
// appended to the ledger synchronously before returning. A sequence of
// stateless turns is behaviorally identical to one persistent conversation.
func (uc *UseCases) ChatTurn(ctx context.Context, sessionID types.SessionID, transcript string) (*model.Turn, error) {
	unlock := uc.lockSession(sessionID)
	defer unlock()

	session, err := uc.repo.Session().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Ended {
		return nil, goerr.Wrap(ErrSessionEnded, "cannot accept turn", goerr.V("sessionID", sessionID))
	}

	history, err := uc.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := uc.runTurn(ctx, session, history, transcript)
	if err != nil {
		return nil, err
	}

	turn := uc.buildTurn(session, transcript, result)
	index, err := uc.repo.Turn().Append(ctx, turn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append turn", goerr.V("sessionID", sessionID))
	}
	turn.Index = index

	if err := uc.repo.Session().Update(ctx, session); err != nil {
		logging.From(ctx).Error("failed to update session snapshot", "error", err, "sessionID", sessionID)
	}

	return turn, nil
}

// StreamTurn runs one turn for the persistent-connection transport. The
// caller owns the in-memory history for the connection lifetime; the ledger
// write is a fire-and-forget mirror that never blocks the conversation. The
// session lock is held for the whole turn, so a stateless request for the
// same session cannot interleave with it.
func (uc *UseCases) StreamTurn(ctx context.Context, session *model.Session, history []model.Message, transcript string) (*model.Turn, error) {
	unlock := uc.lockSession(session.ID)
	defer unlock()

	if session.Ended {
		return nil, goerr.Wrap(ErrSessionEnded, "cannot accept turn", goerr.V("sessionID", session.ID))
	}

	result, err := uc.runTurn(ctx, session, history, transcript)
	if err != nil {
		return nil, err
	}

	turn := uc.buildTurn(session, transcript, result)

	// The mirror appends a copy: the repository assigns the index on the
	// turn it is given, and the returned turn is already in the caller's
	// hands.
	mirror := *turn
	snapshot := *session
	async.Dispatch(ctx, func(ctx context.Context) error {
		unlock := uc.lockSession(snapshot.ID)
		defer unlock()

		if _, err := uc.repo.Turn().Append(ctx, &mirror); err != nil {
			return goerr.Wrap(err, "failed to mirror turn", goerr.V("sessionID", snapshot.ID))
		}
		return uc.repo.Session().Update(ctx, &snapshot)
	})

	return turn, nil
}

// runTurn executes the reasoning loop with a consistent config snapshot
func (uc *UseCases) runTurn(ctx context.Context, session *model.Session, history []model.Message, transcript string) (*agent.Result, error) {
	config, err := uc.repo.Config().Get(ctx, session.EnvKey)
	if err != nil {
		return nil, err
	}
	config = config.Clone()

	result, err := uc.agent.Execute(ctx, session, config, history, transcript)
	if err != nil {
		uc.metrics.TurnFailuresTotal.Inc()
		return nil, err
	}

	uc.metrics.TurnsTotal.WithLabelValues(result.Flow.String()).Inc()
	for _, record := range result.ToolCalls {
		uc.metrics.ToolCallsTotal.WithLabelValues(record.Name, toolOutcome(record.Result, record.Error)).Inc()
		if record.Name == "verify_identity" {
			outcome := "failed"
			if verified, _ := record.Result["verified"].(bool); verified {
				outcome = "verified"
			}
			uc.metrics.VerificationsTotal.WithLabelValues(outcome).Inc()
		}
	}
	return result, nil
}

// buildTurn finalizes the turn record, redacting credentials before it can
// reach persistence or logs.
func (uc *UseCases) buildTurn(session *model.Session, transcript string, result *agent.Result) *model.Turn {
	turn := &model.Turn{
		SessionID:  session.ID,
		Transcript: transcript,
		Response:   result.Response,
		Flow:       result.Flow,
		ToolCalls:  result.ToolCalls,
		Messages:   result.Messages,
		CreatedAt:  time.Now().UTC(),
	}
	turn.Redact()
	return turn
}

// LoadHistory reconstructs the exact message sequence the reasoning loop
// would have held in memory, by concatenating the persisted message segments
// of all turns in index order. The persistent transport uses it once at
// connection start; the stateless transport on every turn.
func (uc *UseCases) LoadHistory(ctx context.Context, sessionID types.SessionID) ([]model.Message, error) {
	turns, err := uc.repo.Turn().List(ctx, sessionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load turn history", goerr.V("sessionID", sessionID))
	}

	var history []model.Message
	for _, turn := range turns {
		history = append(history, turn.Messages...)
	}
	return history, nil
}

// Transcribe converts caller audio to text via the speech collaborator
func (uc *UseCases) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if uc.transcriber == nil {
		return "", goerr.New("no transcriber configured")
	}
	return uc.transcriber.Transcribe(ctx, audio)
}

// HasSynthesizer reports whether a text-to-speech collaborator is configured
func (uc *UseCases) HasSynthesizer() bool {
	return uc.synthesizer != nil
}

// Synthesize converts an answer to speech audio via the speech collaborator
func (uc *UseCases) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if uc.synthesizer == nil {
		return nil, goerr.New("no synthesizer configured")
	}
	return uc.synthesizer.Synthesize(ctx, text)
}
