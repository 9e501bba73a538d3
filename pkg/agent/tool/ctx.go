package tool

import (
	"context"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/m-mizutani/gollem"
)

// Descriptor pairs a tool with its guardrail requirement. The registry
// consults RequiresVerification before every invocation; the tool handler
// itself never re-checks it.
type Descriptor struct {
	Tool                 gollem.Tool
	RequiresVerification bool
}

// UpdateFunc is a function that posts a progress message during tool execution.
// Tools call this to report what they are doing to the user in real time.
type UpdateFunc func(ctx context.Context, message string)

type updateKey struct{}

// WithUpdate returns a new context that carries the given UpdateFunc.
func WithUpdate(ctx context.Context, fn UpdateFunc) context.Context {
	return context.WithValue(ctx, updateKey{}, fn)
}

// Update calls the UpdateFunc stored in ctx with the given message.
// If no UpdateFunc is present in ctx, the call is a no-op.
func Update(ctx context.Context, message string) {
	if fn, ok := ctx.Value(updateKey{}).(UpdateFunc); ok {
		fn(ctx, message)
	}
}

type sessionKey struct{}

// WithSession returns a new context carrying the active call session. The
// verify-identity tool mutates the session through this carrier; all other
// tools only read it.
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFrom returns the call session stored in ctx, if any
func SessionFrom(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*model.Session)
	return session, ok
}
