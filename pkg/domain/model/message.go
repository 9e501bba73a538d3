package model

// Role identifies who produced a message in the conversation history
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single tool invocation requested by the model
type ToolCall struct {
	ID   string         `json:"id,omitempty" firestore:"ID,omitempty"`
	Name string         `json:"name" firestore:"Name"`
	Args map[string]any `json:"args,omitempty" firestore:"Args,omitempty"`
}

// Message is one entry of the conversation history. The history is an
// append-only ordered sequence; insertion order defines the model context
// order and is never reordered or deduplicated.
type Message struct {
	Role    Role   `json:"role" firestore:"Role"`
	Content string `json:"content,omitempty" firestore:"Content,omitempty"`

	// Assistant messages may request tool calls instead of (or before)
	// emitting text.
	ToolCalls []ToolCall `json:"tool_calls,omitempty" firestore:"ToolCalls,omitempty"`

	// Tool messages carry the structured result of one tool call.
	ToolName   string         `json:"tool_name,omitempty" firestore:"ToolName,omitempty"`
	ToolResult map[string]any `json:"tool_result,omitempty" firestore:"ToolResult,omitempty"`
}

// NewUserMessage builds a user utterance message
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage builds a plain-text assistant message
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// NewToolCallMessage builds an assistant message that requests tool calls
func NewToolCallMessage(calls []ToolCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// NewToolResultMessage builds a tool result message for one completed call
func NewToolResultMessage(name string, result map[string]any) Message {
	return Message{Role: RoleTool, ToolName: name, ToolResult: result}
}
