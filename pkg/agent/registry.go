package agent

import (
	"context"

	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// ErrUnknownTool means the model requested a tool that was never registered.
// This is a configuration or prompting defect, not a caller error.
var ErrUnknownTool = goerr.New("unknown tool")

// Registry holds the callable tools and enforces the guardrail gate on every
// invocation. The descriptor set is fixed at process start; only the enabled
// bits (from configuration) vary between turns.
type Registry struct {
	order       []string
	descriptors map[string]tool.Descriptor
}

func NewRegistry(descriptors ...tool.Descriptor) *Registry {
	r := &Registry{
		descriptors: make(map[string]tool.Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		name := d.Tool.Spec().Name
		if _, exists := r.descriptors[name]; !exists {
			r.order = append(r.order, name)
		}
		r.descriptors[name] = d
	}
	return r
}

// Specs returns the schemas of enabled tools in registration order. Disabled
// tools are not offered to the model at all.
func (r *Registry) Specs(flags model.ToolFlags) []gollem.ToolSpec {
	specs := make([]gollem.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		if !flags.Enabled(name) {
			continue
		}
		specs = append(specs, r.descriptors[name].Tool.Spec())
	}
	return specs
}

// Invoke runs one tool call through the guardrail gate. Guardrail denials
// come back as structured results, never as errors, so the reasoning loop can
// feed them to the model as tool output. Only unknown tools and handler
// failures return an error.
func (r *Registry) Invoke(ctx context.Context, session *model.Session, flags model.ToolFlags, call model.ToolCall) (map[string]any, error) {
	desc, ok := r.descriptors[call.Name]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownTool, "tool not registered", goerr.V("tool", call.Name))
	}

	if !flags.Enabled(call.Name) {
		return map[string]any{"error": "tool_disabled"}, nil
	}
	if desc.RequiresVerification && !session.Verified {
		return map[string]any{"error": "identity_not_verified"}, nil
	}

	return desc.Tool.Run(tool.WithSession(ctx, session), call.Args)
}
