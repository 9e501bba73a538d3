package memory

import (
	"context"
	"sync"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type turnRepository struct {
	mu    sync.Mutex
	turns map[types.SessionID][]*model.Turn
}

func newTurnRepository() *turnRepository {
	return &turnRepository{
		turns: make(map[types.SessionID][]*model.Turn),
	}
}

func copyTurn(t *model.Turn) *model.Turn {
	copied := *t
	if t.ToolCalls != nil {
		copied.ToolCalls = append([]model.ToolCallRecord(nil), t.ToolCalls...)
	}
	if t.Messages != nil {
		copied.Messages = append([]model.Message(nil), t.Messages...)
	}
	return &copied
}

// Append assigns the next contiguous index for the session under the
// repository lock, so two overlapping appends cannot collide.
func (r *turnRepository) Append(ctx context.Context, turn *model.Turn) (int64, error) {
	if turn.SessionID == "" {
		return 0, goerr.New("turn session ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyTurn(turn)
	stored.Index = int64(len(r.turns[turn.SessionID]))
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.turns[turn.SessionID] = append(r.turns[turn.SessionID], stored)
	turn.Index = stored.Index
	return stored.Index, nil
}

func (r *turnRepository) List(ctx context.Context, sessionID types.SessionID) ([]*model.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.turns[sessionID]
	result := make([]*model.Turn, 0, len(bucket))
	for _, t := range bucket {
		result = append(result, copyTurn(t))
	}
	return result, nil
}
