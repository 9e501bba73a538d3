package llm

import (
	"context"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"google.golang.org/genai"
)

// GeminiClient adapts the Gemini API to the LLMClient interface. The
// conversation history is replayed verbatim in context order, including
// assistant tool-call requests and their tool results.
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
}

var _ interfaces.LLMClient = &GeminiClient{}

func NewGemini(ctx context.Context, apiKey, defaultModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return &GeminiClient{client: client, defaultModel: defaultModel}, nil
}

func (c *GeminiClient) GenerateContent(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{
			{FunctionDeclarations: toFunctionDeclarations(req.Tools)},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelID, toContents(req.Messages), config)
	if err != nil {
		if IsRateLimit(err) {
			return nil, goerr.Wrap(ErrRateLimited, err.Error(), goerr.V("model", modelID))
		}
		return nil, goerr.Wrap(err, "gemini completion failed", goerr.V("model", modelID))
	}

	return parseResponse(resp, modelID)
}

func parseResponse(resp *genai.GenerateContentResponse, modelID string) (*model.ChatResponse, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, goerr.Wrap(ErrEmptyResponse, "no candidates", goerr.V("model", modelID))
	}

	out := &model.ChatResponse{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		if part.Text != "" {
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += part.Text
		}
	}

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, goerr.Wrap(ErrEmptyResponse, "no text or tool calls", goerr.V("model", modelID))
	}
	return out, nil
}

func toContents(messages []model.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))

		case model.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				parts := make([]*genai.Part, 0, len(m.ToolCalls))
				for _, call := range m.ToolCalls {
					parts = append(parts, genai.NewPartFromFunctionCall(call.Name, call.Args))
				}
				contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
			} else {
				contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
			}

		case model.RoleTool:
			part := genai.NewPartFromFunctionResponse(m.ToolName, m.ToolResult)
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		}
	}
	return contents
}

func toFunctionDeclarations(specs []gollem.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		properties := make(map[string]*genai.Schema, len(spec.Parameters))
		var required []string
		for name, param := range spec.Parameters {
			properties[name] = toSchema(param)
			if param.Required {
				required = append(required, name)
			}
		}

		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	return decls
}

func toSchema(param *gollem.Parameter) *genai.Schema {
	schema := &genai.Schema{
		Description: param.Description,
	}

	switch param.Type {
	case gollem.TypeString:
		schema.Type = genai.TypeString
	case gollem.TypeInteger:
		schema.Type = genai.TypeInteger
	case gollem.TypeNumber:
		schema.Type = genai.TypeNumber
	case gollem.TypeBoolean:
		schema.Type = genai.TypeBoolean
	case gollem.TypeArray:
		schema.Type = genai.TypeArray
		if param.Items != nil {
			schema.Items = toSchema(param.Items)
		}
	default:
		schema.Type = genai.TypeObject
	}

	if len(param.Enum) > 0 {
		schema.Enum = param.Enum
	}
	return schema
}
