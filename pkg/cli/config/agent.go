package config

import (
	"os"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Agent holds CLI flags for the agent behavior configuration seed
type Agent struct {
	envKey     string
	configPath string
}

// Flags returns CLI flags for agent configuration
func (a *Agent) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "env-key",
			Usage:       "Environment key for configuration scoping",
			Value:       types.DefaultEnvKey.String(),
			Sources:     cli.EnvVars("VOXTELLER_ENV_KEY"),
			Destination: &a.envKey,
		},
		&cli.StringFlag{
			Name:        "agent-config",
			Usage:       "TOML file seeding prompts, tool flags and routing rules (optional)",
			Sources:     cli.EnvVars("VOXTELLER_AGENT_CONFIG"),
			Destination: &a.configPath,
		},
	}
}

// EnvKey returns the configured environment key
func (a *Agent) EnvKey() types.EnvKey {
	return types.EnvKey(a.envKey)
}

// Load reads the agent configuration seed from the TOML file. Returns nil
// when no file is configured.
func (a *Agent) Load() (*model.AgentConfig, error) {
	if a.configPath == "" {
		return nil, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(a.configPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read agent config file", goerr.V("path", a.configPath))
	}

	var cfg model.AgentConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML agent config", goerr.V("path", a.configPath))
	}

	if cfg.EnvKey == "" {
		cfg.EnvKey = a.EnvKey()
	}
	for name := range cfg.RoutingRules {
		if _, err := types.ParseFlow(name); err != nil {
			return nil, goerr.Wrap(err, "routing rule references unknown flow", goerr.V("flow", name))
		}
	}
	return &cfg, nil
}
