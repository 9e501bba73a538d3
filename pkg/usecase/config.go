package usecase

import (
	"context"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// GetConfig returns the agent configuration for an environment key
func (uc *UseCases) GetConfig(ctx context.Context, envKey types.EnvKey) (*model.AgentConfig, error) {
	if envKey == "" {
		envKey = uc.envKey
	}
	return uc.repo.Config().Get(ctx, envKey)
}

// PutConfig stores an agent configuration. Running turns keep their snapshot;
// the new values apply from the next turn on.
func (uc *UseCases) PutConfig(ctx context.Context, cfg *model.AgentConfig) error {
	if cfg.EnvKey == "" {
		cfg.EnvKey = uc.envKey
	}
	for name := range cfg.ToolFlags {
		if name == "" {
			return goerr.New("tool flag with empty name")
		}
	}
	cfg.UpdatedAt = time.Now().UTC()
	return uc.repo.Config().Put(ctx, cfg)
}
