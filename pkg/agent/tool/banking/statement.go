package banking

import (
	"context"
	"errors"
	"strings"

	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/m-mizutani/gollem"
)

type requestStatementTool struct {
	store *dataset.Store
}

func (t *requestStatementTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "request_statement",
		Description: "Request a monthly account statement for a given period",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier",
				Required:    true,
			},
			"period": {
				Type:        gollem.TypeString,
				Description: "Statement period in YYYY-MM format",
				Required:    true,
			},
		},
	}
}

func (t *requestStatementTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	customerID, ok := resolveCustomer(ctx, t.store, args)
	if !ok {
		return map[string]any{"error": "customer_not_found"}, nil
	}
	period, _ := args["period"].(string)
	period = strings.TrimSpace(period)

	tool.Update(ctx, "Looking up statement...")

	statement, available, err := t.store.Statement(customerID, period)
	if err != nil {
		switch {
		case errors.Is(err, dataset.ErrCustomerNotFound):
			return map[string]any{"error": "customer_not_found"}, nil
		case errors.Is(err, dataset.ErrStatementNotFound):
			return map[string]any{
				"error":             "statement_not_found",
				"available_periods": available,
			}, nil
		}
		return nil, err
	}

	return map[string]any{
		"statement_id": statement.ID,
		"period":       statement.Period,
		"format":       statement.Format,
		"status":       "ready",
	}, nil
}
