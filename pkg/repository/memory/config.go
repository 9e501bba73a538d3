package memory

import (
	"context"
	"sync"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
)

type configRepository struct {
	mu      sync.RWMutex
	configs map[types.EnvKey]*model.AgentConfig
}

func newConfigRepository() *configRepository {
	return &configRepository{
		configs: make(map[types.EnvKey]*model.AgentConfig),
	}
}

// Get returns the stored config, or an empty default for unknown keys so a
// fresh environment works without any seeding.
func (r *configRepository) Get(ctx context.Context, envKey types.EnvKey) (*model.AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, exists := r.configs[envKey]; exists {
		return cfg.Clone(), nil
	}
	return &model.AgentConfig{EnvKey: envKey}, nil
}

func (r *configRepository) Put(ctx context.Context, cfg *model.AgentConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cfg.Clone()
	stored.UpdatedAt = time.Now().UTC()
	r.configs[cfg.EnvKey] = stored
	return nil
}
