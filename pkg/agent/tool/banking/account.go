package banking

import (
	"context"
	"errors"
	"time"

	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/m-mizutani/gollem"
)

// resolveCustomer maps a spoken-form identifier argument to the canonical
// customer ID, falling back to the session's bound customer when the model
// omitted the argument.
func resolveCustomer(ctx context.Context, store *dataset.Store, args map[string]any) (types.CustomerID, bool) {
	if raw, _ := args["customer_id"].(string); raw != "" {
		return store.Resolve(NormalizeIdentifier(raw))
	}
	if session, ok := tool.SessionFrom(ctx); ok && session.CustomerID != "" {
		return session.CustomerID, true
	}
	return "", false
}

type accountBalanceTool struct {
	store *dataset.Store
}

func (t *accountBalanceTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_account_balance",
		Description: "Return the customer's account balance details",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier",
				Required:    true,
			},
		},
	}
}

func (t *accountBalanceTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	customerID, ok := resolveCustomer(ctx, t.store, args)
	if !ok {
		return map[string]any{"error": "customer_not_found"}, nil
	}

	tool.Update(ctx, "Looking up account balance...")

	account, err := t.store.Balance(customerID)
	if err != nil {
		if errors.Is(err, dataset.ErrCustomerNotFound) {
			return map[string]any{"error": "customer_not_found"}, nil
		}
		return nil, err
	}

	return map[string]any{
		"customer_id": customerID.String(),
		"account_id":  account.ID,
		"type":        account.Type,
		"available":   account.Available,
		"currency":    account.Currency,
		"as_of":       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

type recentTransactionsTool struct {
	store *dataset.Store
}

func (t *recentTransactionsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_recent_transactions",
		Description: "Return the customer's most recent transactions, newest first",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier",
				Required:    true,
			},
			"count": {
				Type:        gollem.TypeInteger,
				Description: "Number of transactions to return (default: 3, max: 20)",
				Required:    false,
			},
		},
	}
}

func (t *recentTransactionsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	customerID, ok := resolveCustomer(ctx, t.store, args)
	if !ok {
		return map[string]any{"error": "customer_not_found"}, nil
	}

	count := 3
	if v, ok := extractInt(args, "count"); ok {
		count = v
	}
	if count < 1 {
		count = 1
	}
	if count > 20 {
		count = 20
	}

	tool.Update(ctx, "Fetching recent transactions...")

	transactions, err := t.store.Transactions(customerID, count)
	if err != nil {
		if errors.Is(err, dataset.ErrCustomerNotFound) {
			return map[string]any{"error": "customer_not_found"}, nil
		}
		return nil, err
	}

	items := make([]map[string]any, len(transactions))
	for i, tx := range transactions {
		items[i] = map[string]any{
			"id":       tx.ID,
			"amount":   tx.Amount,
			"merchant": tx.Merchant,
			"status":   tx.Status,
			"ts":       tx.Timestamp,
		}
	}
	return map[string]any{"transactions": items, "count": len(items)}, nil
}

// extractInt pulls an integer argument, tolerating the float64 the JSON
// decoder produces for numbers.
func extractInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
