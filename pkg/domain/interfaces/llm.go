package interfaces

import (
	"context"

	"github.com/abcbank/voxteller/pkg/domain/model"
)

// LLMClient is one language-model completion call. Implementations must
// return either text or tool calls; the reasoning loop handles both.
type LLMClient interface {
	GenerateContent(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error)
}
