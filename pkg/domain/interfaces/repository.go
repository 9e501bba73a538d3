package interfaces

import (
	"context"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
)

// Repository defines the interface for session/turn/config persistence
type Repository interface {
	Session() SessionRepository
	Turn() TurnRepository
	Config() ConfigRepository
	Close() error
}

// SessionRepository stores call session snapshots
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id types.SessionID) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	List(ctx context.Context) ([]*model.Session, error)
}

// TurnRepository is the persistent side of the turn ledger. Append assigns
// the turn's index: per session the indices are contiguous starting at 0
// and strictly increasing, and appends for the same session are atomic.
type TurnRepository interface {
	Append(ctx context.Context, turn *model.Turn) (int64, error)
	List(ctx context.Context, sessionID types.SessionID) ([]*model.Turn, error)
}

// ConfigRepository stores environment-scoped agent configuration. Get
// returns a default config when none has been stored for the key.
type ConfigRepository interface {
	Get(ctx context.Context, envKey types.EnvKey) (*model.AgentConfig, error)
	Put(ctx context.Context, cfg *model.AgentConfig) error
}
