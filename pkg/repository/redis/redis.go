package redis

import (
	"context"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

// Redis is the Redis repository backend. It keeps session snapshots and the
// turn ledger in Redis so multiple stateless transport instances can share
// conversation state.
type Redis struct {
	client  *redis.Client
	session *sessionRepository
	turn    *turnRepository
	config  *configRepository
}

var _ interfaces.Repository = &Redis{}

func New(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}

	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client; tests use this with miniredis.
func NewWithClient(client *redis.Client) *Redis {
	return &Redis{
		client:  client,
		session: newSessionRepository(client),
		turn:    newTurnRepository(client),
		config:  newConfigRepository(client),
	}
}

func (r *Redis) Session() interfaces.SessionRepository {
	return r.session
}

func (r *Redis) Turn() interfaces.TurnRepository {
	return r.turn
}

func (r *Redis) Config() interfaces.ConfigRepository {
	return r.config
}

func (r *Redis) Close() error {
	return r.client.Close()
}
