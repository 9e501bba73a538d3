package model

import (
	"time"

	"github.com/abcbank/voxteller/pkg/domain/types"
)

// RedactedValue replaces credential values in persisted and logged records
const RedactedValue = "[REDACTED]"

// redactedArgKeys are argument names whose values must never be persisted
var redactedArgKeys = map[string]bool{
	"pin": true,
}

// ToolCallRecord is the audit entry for one tool invocation within a turn.
// Every call is recorded, successful or not.
type ToolCallRecord struct {
	Name   string         `json:"name" firestore:"Name"`
	Args   map[string]any `json:"args,omitempty" firestore:"Args,omitempty"`
	Result map[string]any `json:"result,omitempty" firestore:"Result,omitempty"`
	Error  string         `json:"error,omitempty" firestore:"Error,omitempty"`
}

// Turn is one user utterance plus the complete response, including the tool
// calls made to produce it. Turns are append-only; Index is assigned by the
// ledger when the turn completes and is contiguous per session starting at 0.
type Turn struct {
	SessionID  types.SessionID  `json:"session_id" firestore:"SessionID"`
	Index      int64            `json:"index" firestore:"Index"`
	Transcript string           `json:"transcript" firestore:"Transcript"`
	Response   string           `json:"response" firestore:"Response"`
	Flow       types.Flow       `json:"flow" firestore:"Flow"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty" firestore:"ToolCalls,omitempty"`

	// Messages is the history segment this turn appended, persisted so the
	// stateless transport can rebuild the exact model context order.
	Messages []Message `json:"messages" firestore:"Messages"`

	CreatedAt time.Time `json:"created_at" firestore:"CreatedAt"`
}

// RedactArgs returns a copy of args with credential values masked.
// Non-credential values pass through untouched.
func RedactArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		if redactedArgKeys[k] {
			out[k] = RedactedValue
		} else {
			out[k] = v
		}
	}
	return out
}

// Redact masks credential values in the turn's tool call records and in its
// persisted message segment. Must be called before the turn is finalized;
// a Turn is never persisted or logged with a raw PIN.
func (t *Turn) Redact() {
	for i := range t.ToolCalls {
		t.ToolCalls[i].Args = RedactArgs(t.ToolCalls[i].Args)
	}
	for i := range t.Messages {
		for j := range t.Messages[i].ToolCalls {
			t.Messages[i].ToolCalls[j].Args = RedactArgs(t.Messages[i].ToolCalls[j].Args)
		}
	}
}
