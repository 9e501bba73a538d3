package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/service/llm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestFallbackAdvancesOnRateLimit(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Err: goerr.Wrap(llm.ErrRateLimited, "429")},
		llm.MockStep{Response: &model.ChatResponse{Text: "hello"}},
	)
	client := llm.NewFallback(mock, []string{"model-a", "model-b"})

	resp, err := client.GenerateContent(context.Background(), &model.ChatRequest{})
	gt.NoError(t, err)
	gt.Equal(t, resp.Text, "hello")

	// First attempt went to model-a, retry to model-b
	gt.A(t, mock.Requests).Length(2)
	gt.Equal(t, mock.Requests[0].Model, "model-a")
	gt.Equal(t, mock.Requests[1].Model, "model-b")
	gt.Equal(t, client.ActiveModel(), "model-b")
}

func TestFallbackStickyAcrossCalls(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Err: goerr.Wrap(llm.ErrRateLimited, "429")},
		llm.MockStep{Response: &model.ChatResponse{Text: "first"}},
		llm.MockStep{Response: &model.ChatResponse{Text: "second"}},
	)
	client := llm.NewFallback(mock, []string{"model-a", "model-b"})

	_, err := client.GenerateContent(context.Background(), &model.ChatRequest{})
	gt.NoError(t, err)

	// The discovered fallback is reused: no new attempt against model-a
	_, err = client.GenerateContent(context.Background(), &model.ChatRequest{})
	gt.NoError(t, err)
	gt.A(t, mock.Requests).Length(3)
	gt.Equal(t, mock.Requests[2].Model, "model-b")
}

func TestFallbackExhausted(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Err: goerr.Wrap(llm.ErrRateLimited, "429")},
		llm.MockStep{Err: goerr.Wrap(llm.ErrRateLimited, "429")},
	)
	client := llm.NewFallback(mock, []string{"model-a", "model-b"})

	_, err := client.GenerateContent(context.Background(), &model.ChatRequest{})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, llm.ErrCandidatesExhausted))
	gt.A(t, mock.Requests).Length(2)
}

func TestFallbackNonRateLimitPropagates(t *testing.T) {
	fatal := goerr.New("invalid request")
	mock := llm.NewMock(llm.MockStep{Err: fatal})
	client := llm.NewFallback(mock, []string{"model-a", "model-b"})

	_, err := client.GenerateContent(context.Background(), &model.ChatRequest{})
	gt.Error(t, err)
	// Non-rate-limit failures are not retried across candidates
	gt.A(t, mock.Requests).Length(1)
	gt.Equal(t, client.ActiveModel(), "model-a")
}
