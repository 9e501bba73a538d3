package model

import (
	"maps"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/types"
)

// ToolFlags maps tool name to its enabled bit. Tools absent from the map
// are enabled; only an explicit false disables a tool.
type ToolFlags map[string]bool

// Enabled reports whether the named tool may be offered and executed
func (f ToolFlags) Enabled(name string) bool {
	if f == nil {
		return true
	}
	enabled, ok := f[name]
	if !ok {
		return true
	}
	return enabled
}

// RoutingRules maps a flow name to keywords that short-circuit the
// classifier before any model call.
type RoutingRules map[string][]string

// AgentConfig is the environment-scoped agent behavior configuration. The
// orchestration engine treats it as read-only input; only the admin surface
// mutates it.
type AgentConfig struct {
	EnvKey           types.EnvKey `json:"env_key" firestore:"EnvKey" toml:"env_key"`
	BaseSystemPrompt string       `json:"base_system_prompt" firestore:"BaseSystemPrompt" toml:"base_system_prompt"`
	RouterPrompt     string       `json:"router_prompt" firestore:"RouterPrompt" toml:"router_prompt"`
	ToolFlags        ToolFlags    `json:"tool_flags" firestore:"ToolFlags" toml:"tool_flags"`
	RoutingRules     RoutingRules `json:"routing_rules" firestore:"RoutingRules" toml:"routing_rules"`
	UpdatedAt        time.Time    `json:"updated_at" firestore:"UpdatedAt" toml:"-"`
}

// Clone returns a deep copy. The reasoning loop takes a clone at turn start
// so admin updates cannot flip flags mid-turn.
func (c *AgentConfig) Clone() *AgentConfig {
	out := &AgentConfig{
		EnvKey:           c.EnvKey,
		BaseSystemPrompt: c.BaseSystemPrompt,
		RouterPrompt:     c.RouterPrompt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.ToolFlags != nil {
		out.ToolFlags = maps.Clone(c.ToolFlags)
	}
	if c.RoutingRules != nil {
		out.RoutingRules = make(RoutingRules, len(c.RoutingRules))
		for flow, words := range c.RoutingRules {
			out.RoutingRules[flow] = append([]string(nil), words...)
		}
	}
	return out
}
