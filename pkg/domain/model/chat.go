package model

import "github.com/m-mizutani/gollem"

// ChatRequest is one language-model invocation: system prompt, full message
// history in context order, and the schemas of the tools enabled for this
// turn.
type ChatRequest struct {
	// Model overrides the client's default model when set. The fallback
	// controller uses this to steer requests at the active candidate.
	Model string

	SystemPrompt string
	Messages     []Message
	Tools        []gollem.ToolSpec
	Temperature  float32
}

// ChatResponse is the model's reply: either plain text, or one or more
// requested tool calls (in which case Text may be empty).
type ChatResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the model requested tool execution
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
