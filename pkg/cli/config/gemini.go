package config

import (
	"context"
	"log/slog"
	"strings"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/service/llm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the language model client
type Gemini struct {
	apiKey string
	models string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (required)",
			Sources:     cli.EnvVars("VOXTELLER_GEMINI_API_KEY", "GEMINI_API_KEY"),
			Destination: &g.apiKey,
		},
		&cli.StringFlag{
			Name:        "gemini-models",
			Usage:       "Ordered comma-separated candidate models; later entries are rate-limit fallbacks",
			Value:       "gemini-2.0-flash,gemini-2.0-flash-lite,gemini-1.5-flash",
			Sources:     cli.EnvVars("VOXTELLER_GEMINI_MODELS"),
			Destination: &g.models,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("api_key_set", g.apiKey != ""),
		slog.String("models", g.models),
	}
}

// Candidates returns the ordered candidate model list
func (g *Gemini) Candidates() []string {
	var out []string
	for _, m := range strings.Split(g.models, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// Configure creates the model client wrapped with the rate-limit fallback
// controller.
func (g *Gemini) Configure(ctx context.Context) (interfaces.LLMClient, error) {
	if g.apiKey == "" {
		return nil, goerr.New("gemini-api-key is required")
	}
	candidates := g.Candidates()
	if len(candidates) == 0 {
		return nil, goerr.New("gemini-models must contain at least one model")
	}

	client, err := llm.NewGemini(ctx, g.apiKey, candidates[0])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	return llm.NewFallback(client, candidates), nil
}
