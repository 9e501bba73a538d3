package banking

import (
	"context"
	"errors"

	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/m-mizutani/gollem"
)

type cashNotDispensedTool struct {
	store *dataset.Store
}

func (t *cashNotDispensedTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "report_cash_not_dispensed",
		Description: "File a dispute for an ATM withdrawal where cash was not dispensed",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier",
				Required:    true,
			},
			"atm_id": {
				Type:        gollem.TypeString,
				Description: "The ATM identifier, if known",
				Required:    true,
			},
			"amount": {
				Type:        gollem.TypeNumber,
				Description: "The withdrawal amount that was not dispensed",
				Required:    true,
			},
			"date": {
				Type:        gollem.TypeString,
				Description: "The date of the incident (YYYY-MM-DD)",
				Required:    true,
			},
		},
	}
}

func (t *cashNotDispensedTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	customerID, ok := resolveCustomer(ctx, t.store, args)
	if !ok {
		return map[string]any{"error": "customer_not_found"}, nil
	}
	atmID, _ := args["atm_id"].(string)
	date, _ := args["date"].(string)
	amount, _ := args["amount"].(float64)

	tool.Update(ctx, "Filing dispute...")

	dispute, err := t.store.FileDispute(customerID, atmID, amount, date)
	if err != nil {
		if errors.Is(err, dataset.ErrCustomerNotFound) {
			return map[string]any{"error": "customer_not_found"}, nil
		}
		return nil, err
	}

	return map[string]any{
		"dispute_id": dispute.ID,
		"status":     dispute.Status,
	}, nil
}
