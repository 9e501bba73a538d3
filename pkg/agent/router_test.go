package agent_test

import (
	"context"
	"testing"

	"github.com/abcbank/voxteller/pkg/agent"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/service/llm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestRouterRulesShortCircuit(t *testing.T) {
	// No mock steps: a rule match must not spend a model call
	mock := llm.NewMock()
	router := agent.NewRouter(mock)

	config := &model.AgentConfig{
		RoutingRules: model.RoutingRules{
			"card_issue": {"card", "stolen"},
			"transfers":  {"transfer", "send money"},
		},
	}

	flow := router.Classify(context.Background(), config, "my card was stolen", "")
	gt.Equal(t, flow, types.FlowCardIssue)
	gt.A(t, mock.Requests).Length(0)

	flow = router.Classify(context.Background(), config, "I want to send money to my sister", "")
	gt.Equal(t, flow, types.FlowTransfers)
}

func TestRouterModelClassification(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Response: &model.ChatResponse{Text: "transactions"}},
	)
	router := agent.NewRouter(mock)

	flow := router.Classify(context.Background(), &model.AgentConfig{}, "why was I charged twice by Netflix", "")
	gt.Equal(t, flow, types.FlowTransactions)
	gt.A(t, mock.Requests).Length(1)
}

func TestRouterUnrecognizedOutputFallsBack(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Response: &model.ChatResponse{Text: "something_else_entirely"}},
	)
	router := agent.NewRouter(mock)

	flow := router.Classify(context.Background(), &model.AgentConfig{}, "hello there", "")
	gt.Equal(t, flow, types.FlowGeneralInquiry)
}

func TestRouterModelFailureKeepsPriorFlow(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Err: goerr.New("upstream down")},
	)
	router := agent.NewRouter(mock)

	flow := router.Classify(context.Background(), &model.AgentConfig{}, "and my balance?", types.FlowAccountServicing)
	gt.Equal(t, flow, types.FlowAccountServicing)
}

func TestRouterPromptCarriesPriorFlow(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Response: &model.ChatResponse{Text: "card_issue"}},
	)
	router := agent.NewRouter(mock)

	router.Classify(context.Background(), &model.AgentConfig{}, "yes block it", types.FlowCardIssue)
	gt.A(t, mock.Requests).Length(1)
	gt.String(t, mock.Requests[0].Messages[0].Content).Contains("card_issue")
}
