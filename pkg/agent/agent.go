package agent

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"slices"
	"text/template"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/service/llm"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/system.md
var systemPromptTmpl string

var systemPrompt = template.Must(template.New("system").Parse(systemPromptTmpl))

// maxToolRounds bounds the reasoning loop. A model stuck requesting tools
// past this many rounds gets cut off with a safe fallback answer.
const maxToolRounds = 8

const (
	exhaustedFallbackMessage = "I'm sorry, our systems are very busy right now. Could you please try again in a moment?"
	loopFallbackMessage      = "I'm sorry, I wasn't able to complete that request. Could you rephrase what you need, or I can connect you to a human agent?"
	unknownToolMessage       = "I'm sorry, something went wrong on our side while handling that. Is there anything else I can help you with?"
)

// Agent drives one turn of the conversation: classify the flow, then
// alternate model inference and tool execution until the model produces a
// plain-text answer or the round bound is hit.
type Agent struct {
	llm      interfaces.LLMClient
	registry *Registry
	router   *Router
}

func New(llmClient interfaces.LLMClient, registry *Registry) *Agent {
	return &Agent{
		llm:      llmClient,
		registry: registry,
		router:   NewRouter(llmClient),
	}
}

// Result is the outcome of one completed turn
type Result struct {
	Response string
	Flow     types.Flow

	// Messages is the history segment this turn appended, in exact model
	// context order: user, then assistant/tool alternations.
	Messages []model.Message

	ToolCalls []model.ToolCallRecord
}

type systemPromptData struct {
	Flow     string
	Verified bool
}

func composeSystemPrompt(config *model.AgentConfig, flow types.Flow, verified bool) (string, error) {
	tmpl := systemPrompt
	if config.BaseSystemPrompt != "" {
		parsed, err := template.New("system").Parse(config.BaseSystemPrompt)
		if err != nil {
			return "", goerr.Wrap(err, "invalid base system prompt template")
		}
		tmpl = parsed
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, systemPromptData{
		Flow:     flow.String(),
		Verified: verified,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt")
	}
	return buf.String(), nil
}

// Execute runs one full turn. The session's flow and verification state are
// updated in place; history is not modified (the new segment comes back in
// the Result). The config snapshot must not change for the duration of the
// call.
func (a *Agent) Execute(ctx context.Context, session *model.Session, config *model.AgentConfig, history []model.Message, transcript string) (*Result, error) {
	logger := logging.From(ctx)

	flow := a.router.Classify(ctx, config, transcript, session.Flow)
	session.Flow = flow

	result := &Result{
		Flow:     flow,
		Messages: []model.Message{model.NewUserMessage(transcript)},
	}
	messages := append(slices.Clone(history), result.Messages...)

	for round := 0; round <= maxToolRounds; round++ {
		// Verification may flip mid-turn via verify_identity, so the prompt
		// is recomposed every round.
		prompt, err := composeSystemPrompt(config, flow, session.Verified)
		if err != nil {
			return nil, err
		}

		resp, err := a.llm.GenerateContent(ctx, &model.ChatRequest{
			SystemPrompt: prompt,
			Messages:     messages,
			Tools:        a.registry.Specs(config.ToolFlags),
			Temperature:  0.2,
		})
		if err != nil {
			if errors.Is(err, llm.ErrCandidatesExhausted) {
				logger.Error("all model candidates exhausted", "sessionID", session.ID)
				return finish(result, &messages, exhaustedFallbackMessage), nil
			}
			return nil, goerr.Wrap(err, "model inference failed",
				goerr.V("sessionID", session.ID),
				goerr.V("round", round),
			)
		}

		if !resp.HasToolCalls() {
			return finish(result, &messages, resp.Text), nil
		}

		callMsg := model.NewToolCallMessage(resp.ToolCalls)
		messages = append(messages, callMsg)
		result.Messages = append(result.Messages, callMsg)

		// Every requested call gets a tool-result message, even a failed or
		// unrecognized one: a dangling tool-call message would make the
		// persisted segment unreplayable.
		unknownTool := false
		for _, call := range resp.ToolCalls {
			toolResult, err := a.registry.Invoke(ctx, session, config.ToolFlags, call)
			record := model.ToolCallRecord{
				Name: call.Name,
				Args: model.RedactArgs(call.Args),
			}

			switch {
			case errors.Is(err, ErrUnknownTool):
				logger.Error("model requested unknown tool", "tool", call.Name, "sessionID", session.ID)
				toolResult = map[string]any{"error": "unknown_tool"}
				record.Error = "unknown_tool"
				unknownTool = true

			case err != nil:
				logger.Error("tool execution failed", "tool", call.Name, "error", err)
				toolResult = map[string]any{"error": "tool_execution_failed"}
				record.Error = err.Error()

			default:
				record.Result = toolResult
			}

			result.ToolCalls = append(result.ToolCalls, record)

			resultMsg := model.NewToolResultMessage(call.Name, toolResult)
			messages = append(messages, resultMsg)
			result.Messages = append(result.Messages, resultMsg)
		}

		if unknownTool {
			return finish(result, &messages, unknownToolMessage), nil
		}
	}

	logger.Warn("tool round bound exceeded", "sessionID", session.ID, "rounds", maxToolRounds)
	return finish(result, &messages, loopFallbackMessage), nil
}

func finish(result *Result, messages *[]model.Message, answer string) *Result {
	msg := model.NewAssistantMessage(answer)
	*messages = append(*messages, msg)
	result.Messages = append(result.Messages, msg)
	result.Response = answer
	return result
}
