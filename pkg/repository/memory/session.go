package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*model.Session
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[types.SessionID]*model.Session),
	}
}

func copySession(s *model.Session) *model.Session {
	copied := *s
	return &copied
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return goerr.New("session already exists", goerr.V("sessionID", session.ID))
	}

	stored := copySession(session)
	if stored.StartedAt.IsZero() {
		stored.StartedAt = time.Now().UTC()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.StartedAt
	}
	r.sessions[session.ID] = stored
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id types.SessionID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("sessionID", id))
	}
	return copySession(session), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("sessionID", session.ID))
	}

	stored := copySession(session)
	stored.UpdatedAt = time.Now().UTC()
	r.sessions[session.ID] = stored
	return nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, copySession(s))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}
