package llm

import (
	"context"
	"sync"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// MockStep is one scripted model exchange
type MockStep struct {
	Response *model.ChatResponse
	Err      error
}

// MockClient replays a script of responses and records every request it
// receives. Used by tests in place of the Gemini client.
type MockClient struct {
	mu       sync.Mutex
	steps    []MockStep
	Requests []*model.ChatRequest
}

var _ interfaces.LLMClient = &MockClient{}

func NewMock(steps ...MockStep) *MockClient {
	return &MockClient{steps: steps}
}

// Push appends steps to the script
func (m *MockClient) Push(steps ...MockStep) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, steps...)
}

func (m *MockClient) GenerateContent(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if len(m.steps) == 0 {
		return nil, goerr.New("mock script exhausted", goerr.V("requests", len(m.Requests)))
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	return step.Response, step.Err
}
