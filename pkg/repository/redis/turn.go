package redis

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

func turnsKey(id types.SessionID) string {
	return "turns:" + id.String()
}

func turnSeqKey(id types.SessionID) string {
	return "turnseq:" + id.String()
}

type turnRepository struct {
	client *redis.Client
}

func newTurnRepository(client *redis.Client) *turnRepository {
	return &turnRepository{client: client}
}

// Append allocates the index with INCR (atomic per session) and pushes the
// serialized turn. List orders by the embedded index, so interleaved pushes
// from racing appends cannot reorder the ledger. When the push fails the
// counter is rolled back, so a retried turn gets the same index and the
// ledger stays contiguous.
func (r *turnRepository) Append(ctx context.Context, turn *model.Turn) (int64, error) {
	if turn.SessionID == "" {
		return 0, goerr.New("turn session ID is required")
	}

	seq, err := r.client.Incr(ctx, turnSeqKey(turn.SessionID)).Result()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to allocate turn index", goerr.V("sessionID", turn.SessionID))
	}
	turn.Index = seq - 1
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(turn)
	if err != nil {
		r.rollbackIndex(ctx, turn.SessionID)
		return 0, goerr.Wrap(err, "failed to marshal turn", goerr.V("sessionID", turn.SessionID))
	}

	if err := r.client.RPush(ctx, turnsKey(turn.SessionID), data).Err(); err != nil {
		r.rollbackIndex(ctx, turn.SessionID)
		return 0, goerr.Wrap(err, "failed to push turn", goerr.V("sessionID", turn.SessionID))
	}

	return turn.Index, nil
}

func (r *turnRepository) rollbackIndex(ctx context.Context, sessionID types.SessionID) {
	if err := r.client.Decr(ctx, turnSeqKey(sessionID)).Err(); err != nil {
		logging.From(ctx).Error("failed to roll back turn counter",
			"sessionID", sessionID,
			"error", err.Error(),
		)
	}
}

func (r *turnRepository) List(ctx context.Context, sessionID types.SessionID) ([]*model.Turn, error) {
	items, err := r.client.LRange(ctx, turnsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read turns", goerr.V("sessionID", sessionID))
	}

	turns := make([]*model.Turn, 0, len(items))
	for _, item := range items {
		var turn model.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal turn", goerr.V("sessionID", sessionID))
		}
		turns = append(turns, &turn)
	}

	sort.Slice(turns, func(i, j int) bool {
		return turns[i].Index < turns[j].Index
	})

	return turns, nil
}
