package llm

import (
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/abcbank/voxteller/pkg/domain/model"
)

func TestToFunctionDeclarations(t *testing.T) {
	decls := toFunctionDeclarations([]gollem.ToolSpec{
		{
			Name:        "get_recent_transactions",
			Description: "Fetch recent transactions",
			Parameters: map[string]*gollem.Parameter{
				"customer_id": {
					Type:        gollem.TypeString,
					Description: "Customer identifier",
					Required:    true,
				},
				"count": {
					Type:        gollem.TypeInteger,
					Description: "How many transactions to return",
				},
				"statuses": {
					Type:  gollem.TypeArray,
					Items: &gollem.Parameter{Type: gollem.TypeString, Enum: []string{"completed", "declined"}},
				},
			},
		},
	})

	gt.Array(t, decls).Length(1).Required()
	decl := decls[0]
	gt.Value(t, decl.Name).Equal("get_recent_transactions")
	gt.Value(t, decl.Parameters.Type).Equal(genai.TypeObject)
	gt.Array(t, decl.Parameters.Required).Length(1)
	gt.Value(t, decl.Parameters.Required[0]).Equal("customer_id")

	gt.Value(t, decl.Parameters.Properties["customer_id"].Type).Equal(genai.TypeString)
	gt.Value(t, decl.Parameters.Properties["count"].Type).Equal(genai.TypeInteger)

	arr := decl.Parameters.Properties["statuses"]
	gt.Value(t, arr.Type).Equal(genai.TypeArray)
	gt.Value(t, arr.Items.Type).Equal(genai.TypeString)
	gt.Array(t, arr.Items.Enum).Length(2)
}

func TestToContentsReplaysHistoryInOrder(t *testing.T) {
	contents := toContents([]model.Message{
		model.NewUserMessage("what's my balance"),
		model.NewToolCallMessage([]model.ToolCall{
			{Name: "get_account_balance", Args: map[string]any{"customer_id": "user_123"}},
		}),
		model.NewToolResultMessage("get_account_balance", map[string]any{"balance": 5000.0}),
		model.NewAssistantMessage("Your balance is 5,000 dollars."),
	})

	gt.Array(t, contents).Length(4).Required()

	gt.Value(t, contents[0].Role).Equal(string(genai.RoleUser))
	gt.Value(t, contents[0].Parts[0].Text).Equal("what's my balance")

	gt.Value(t, contents[1].Role).Equal(string(genai.RoleModel))
	gt.Value(t, contents[1].Parts[0].FunctionCall.Name).Equal("get_account_balance")

	// Tool results go back as user-role function responses
	gt.Value(t, contents[2].Role).Equal(string(genai.RoleUser))
	gt.Value(t, contents[2].Parts[0].FunctionResponse.Name).Equal("get_account_balance")

	gt.Value(t, contents[3].Role).Equal(string(genai.RoleModel))
	gt.Value(t, contents[3].Parts[0].Text).Equal("Your balance is 5,000 dollars.")
}

func TestParseResponseJoinsTextAndCollectsCalls(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "Let me check."},
						{FunctionCall: &genai.FunctionCall{Name: "get_customer_cards", Args: map[string]any{}}},
					},
				},
			},
		},
	}

	out, err := parseResponse(resp, "gemini-2.0-flash")
	gt.NoError(t, err).Required()
	gt.Value(t, out.Text).Equal("Let me check.")
	gt.Array(t, out.ToolCalls).Length(1)
	gt.Value(t, out.ToolCalls[0].Name).Equal("get_customer_cards")
}

func TestParseResponseEmpty(t *testing.T) {
	_, err := parseResponse(&genai.GenerateContentResponse{}, "gemini-2.0-flash")
	gt.Error(t, err)
}
