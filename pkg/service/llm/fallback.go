package llm

import (
	"context"
	"sync"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// FallbackClient wraps an LLMClient with an ordered candidate model list.
// When the active candidate is rate limited it advances to the next one and
// retries immediately. The active index is process-wide, not per-session:
// once a fallback is discovered, subsequent turns reuse it.
type FallbackClient struct {
	mu         sync.Mutex
	client     interfaces.LLMClient
	candidates []string
	active     int
}

var _ interfaces.LLMClient = &FallbackClient{}

func NewFallback(client interfaces.LLMClient, candidates []string) *FallbackClient {
	return &FallbackClient{
		client:     client,
		candidates: candidates,
	}
}

// ActiveModel returns the currently active candidate
func (f *FallbackClient) ActiveModel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active < len(f.candidates) {
		return f.candidates[f.active]
	}
	return ""
}

func (f *FallbackClient) activeIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *FallbackClient) advance(from int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == from {
		f.active = from + 1
	}
}

func (f *FallbackClient) GenerateContent(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	logger := logging.From(ctx)

	if len(f.candidates) == 0 {
		return f.client.GenerateContent(ctx, req)
	}

	for i := f.activeIndex(); i < len(f.candidates); i++ {
		attempt := *req
		attempt.Model = f.candidates[i]

		resp, err := f.client.GenerateContent(ctx, &attempt)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimit(err) {
			return nil, err
		}

		logger.Warn("model rate limited, advancing to next candidate",
			"model", f.candidates[i],
			"candidate", i,
			"remaining", len(f.candidates)-i-1,
		)
		f.advance(i)
	}

	return nil, goerr.Wrap(ErrCandidatesExhausted, "no usable model candidate",
		goerr.V("candidates", f.candidates),
	)
}
