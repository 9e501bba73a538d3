package usecase

import (
	"context"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// StartSession creates and persists a session for a new call
func (uc *UseCases) StartSession(ctx context.Context) (*model.Session, error) {
	session := model.NewSession(uc.envKey)
	if err := uc.repo.Session().Create(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to create session")
	}
	logging.From(ctx).Info("session started", "sessionID", session.ID)
	return session, nil
}

// GetSession loads one session
func (uc *UseCases) GetSession(ctx context.Context, id types.SessionID) (*model.Session, error) {
	return uc.repo.Session().Get(ctx, id)
}

// ListSessions returns all stored sessions
func (uc *UseCases) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return uc.repo.Session().List(ctx)
}

// ListTurns returns the persisted turns of a session in index order
func (uc *UseCases) ListTurns(ctx context.Context, sessionID types.SessionID) ([]*model.Turn, error) {
	return uc.repo.Turn().List(ctx, sessionID)
}

// EndSession marks the session ended. An in-flight turn holds the session
// lock, so taking it here lets that turn complete and persist first.
func (uc *UseCases) EndSession(ctx context.Context, id types.SessionID) (*model.Session, error) {
	unlock := uc.lockSession(id)
	defer unlock()

	session, err := uc.repo.Session().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Ended {
		session.End()
		if err := uc.repo.Session().Update(ctx, session); err != nil {
			return nil, goerr.Wrap(err, "failed to end session", goerr.V("sessionID", id))
		}
	}

	uc.forgetSessionLock(id)
	logging.From(ctx).Info("session ended", "sessionID", id)
	return session, nil
}
