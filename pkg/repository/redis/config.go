package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

func configKey(envKey types.EnvKey) string {
	return "config:" + envKey.String()
}

type configRepository struct {
	client *redis.Client
}

func newConfigRepository(client *redis.Client) *configRepository {
	return &configRepository{client: client}
}

func (r *configRepository) Get(ctx context.Context, envKey types.EnvKey) (*model.AgentConfig, error) {
	data, err := r.client.Get(ctx, configKey(envKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.AgentConfig{EnvKey: envKey}, nil
		}
		return nil, goerr.Wrap(err, "failed to get agent config", goerr.V("envKey", envKey))
	}

	var cfg model.AgentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal agent config", goerr.V("envKey", envKey))
	}
	return &cfg, nil
}

func (r *configRepository) Put(ctx context.Context, cfg *model.AgentConfig) error {
	cfg.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(cfg)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal agent config", goerr.V("envKey", cfg.EnvKey))
	}
	if err := r.client.Set(ctx, configKey(cfg.EnvKey), data, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to store agent config", goerr.V("envKey", cfg.EnvKey))
	}
	return nil
}
