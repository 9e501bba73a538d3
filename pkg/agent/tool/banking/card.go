package banking

import (
	"context"
	"errors"
	"fmt"

	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/m-mizutani/gollem"
)

type customerCardsTool struct {
	store *dataset.Store
}

func (t *customerCardsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_customer_cards",
		Description: "List the customer's cards with their status and last four digits",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier",
				Required:    true,
			},
		},
	}
}

func (t *customerCardsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	customerID, ok := resolveCustomer(ctx, t.store, args)
	if !ok {
		return map[string]any{"error": "customer_not_found"}, nil
	}

	tool.Update(ctx, "Fetching cards...")

	cards, err := t.store.Cards(customerID)
	if err != nil {
		if errors.Is(err, dataset.ErrCustomerNotFound) {
			return map[string]any{"error": "customer_not_found"}, nil
		}
		return nil, err
	}

	items := make([]map[string]any, len(cards))
	for i, card := range cards {
		items[i] = map[string]any{
			"card_id": card.ID,
			"status":  card.Status,
			"last4":   card.Last4,
			"network": card.Network,
		}
	}
	return map[string]any{"cards": items}, nil
}

// blockCardTool permanently blocks a card. Ownership is resolved from the
// card itself, not from the customer_id argument.
type blockCardTool struct {
	store *dataset.Store
}

func (t *blockCardTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "block_card",
		Description: "Block a card permanently by its card ID. This cannot be undone over the phone.",
		Parameters: map[string]*gollem.Parameter{
			"card_id": {
				Type:        gollem.TypeString,
				Description: "The ID of the card to block",
				Required:    true,
			},
			"reason": {
				Type:        gollem.TypeString,
				Description: "Why the card is being blocked (lost, stolen, fraud suspected)",
				Required:    true,
			},
		},
	}
}

func (t *blockCardTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	cardID, _ := args["card_id"].(string)
	reason, _ := args["reason"].(string)
	if cardID == "" {
		return map[string]any{"error": "card_not_found"}, nil
	}

	tool.Update(ctx, fmt.Sprintf("Blocking card %s...", cardID))

	if _, err := t.store.CardOwner(cardID); err != nil {
		return map[string]any{"error": "card_not_found"}, nil
	}
	if err := t.store.BlockCard(cardID); err != nil {
		if errors.Is(err, dataset.ErrCardNotFound) {
			return map[string]any{"error": "card_not_found"}, nil
		}
		return nil, err
	}

	return map[string]any{
		"card_id": cardID,
		"status":  "blocked",
		"reason":  reason,
	}, nil
}
