package agent

import (
	"bytes"
	"context"
	_ "embed"
	"sort"
	"strings"
	"text/template"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/utils/logging"
)

//go:embed prompt/router.md
var routerPromptTmpl string

var routerPrompt = template.Must(template.New("router").Parse(routerPromptTmpl))

// Router classifies the latest utterance into one flow category. A rule layer
// from configuration is consulted first; only when no rule matches does the
// classifier spend a model call. Classification never fails a turn: any
// problem falls back to the prior flow or general_inquiry.
type Router struct {
	llm interfaces.LLMClient
}

func NewRouter(llm interfaces.LLMClient) *Router {
	return &Router{llm: llm}
}

type routerPromptData struct {
	Flows     []types.Flow
	PriorFlow string
	Utterance string
}

func (r *Router) Classify(ctx context.Context, config *model.AgentConfig, utterance string, prior types.Flow) types.Flow {
	logger := logging.From(ctx)

	if flow, ok := matchRules(config.RoutingRules, utterance); ok {
		return flow
	}

	promptText := config.RouterPrompt
	if promptText == "" {
		promptText = routerPromptTmpl
	}
	tmpl, err := template.New("router").Parse(promptText)
	if err != nil {
		logger.Warn("invalid router prompt template, using default", "error", err)
		tmpl = routerPrompt
	}

	data := routerPromptData{
		Flows:     types.AllFlows(),
		Utterance: utterance,
	}
	if prior.IsValid() {
		data.PriorFlow = prior.String()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logger.Warn("failed to render router prompt", "error", err)
		return fallbackFlow(prior)
	}

	resp, err := r.llm.GenerateContent(ctx, &model.ChatRequest{
		Messages:    []model.Message{model.NewUserMessage(buf.String())},
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("flow classification failed", "error", err)
		return fallbackFlow(prior)
	}

	flow, err := types.ParseFlow(strings.ToLower(strings.TrimSpace(resp.Text)))
	if err != nil {
		logger.Warn("unrecognized flow from classifier", "output", resp.Text)
		return types.FlowGeneralInquiry
	}
	return flow
}

// matchRules checks configured keyword rules in deterministic flow-name order
func matchRules(rules model.RoutingRules, utterance string) (types.Flow, bool) {
	if len(rules) == 0 {
		return "", false
	}

	lowered := strings.ToLower(utterance)
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flow, err := types.ParseFlow(name)
		if err != nil {
			continue
		}
		for _, keyword := range rules[name] {
			if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
				return flow, true
			}
		}
	}
	return "", false
}

func fallbackFlow(prior types.Flow) types.Flow {
	if prior.IsValid() {
		return prior
	}
	return types.FlowGeneralInquiry
}
