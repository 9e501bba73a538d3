package banking

import (
	"context"
	"errors"

	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/m-mizutani/gollem"
)

type customerProfileTool struct {
	store *dataset.Store
}

func (t *customerProfileTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_customer_profile",
		Description: "Get the customer's profile: name, address, phone and email",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier",
				Required:    true,
			},
		},
	}
}

func (t *customerProfileTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	customerID, ok := resolveCustomer(ctx, t.store, args)
	if !ok {
		return map[string]any{"error": "customer_not_found"}, nil
	}

	tool.Update(ctx, "Looking up profile...")

	name, profile, err := t.store.Profile(customerID)
	if err != nil {
		if errors.Is(err, dataset.ErrCustomerNotFound) {
			return map[string]any{"error": "customer_not_found"}, nil
		}
		return nil, err
	}

	return map[string]any{
		"name":    name,
		"address": profile.Address,
		"phone":   profile.Phone,
		"email":   profile.Email,
	}, nil
}

type updateAddressTool struct {
	store *dataset.Store
}

func (t *updateAddressTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "update_address",
		Description: "Update the customer's profile address",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier",
				Required:    true,
			},
			"new_address": {
				Type:        gollem.TypeString,
				Description: "The full new address",
				Required:    true,
			},
		},
	}
}

func (t *updateAddressTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	customerID, ok := resolveCustomer(ctx, t.store, args)
	if !ok {
		return map[string]any{"error": "customer_not_found"}, nil
	}
	newAddress, _ := args["new_address"].(string)
	if newAddress == "" {
		return map[string]any{"error": "address_required"}, nil
	}

	tool.Update(ctx, "Updating address...")

	address, err := t.store.UpdateAddress(customerID, newAddress)
	if err != nil {
		if errors.Is(err, dataset.ErrCustomerNotFound) {
			return map[string]any{"error": "customer_not_found"}, nil
		}
		return nil, err
	}

	return map[string]any{
		"status":  "updated",
		"address": address,
	}, nil
}
