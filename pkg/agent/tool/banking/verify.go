package banking

import (
	"context"

	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/gollem"
)

// verifyIdentityTool checks the caller's identifier and PIN against the
// credential store and marks the session verified on success. It is the only
// tool allowed to mutate the session's verification state.
type verifyIdentityTool struct {
	store *dataset.Store
}

func (t *verifyIdentityTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "verify_identity",
		Description: "Verify the caller's identity using their customer identifier and PIN. Must succeed before any account-specific tool can be used.",
		Parameters: map[string]*gollem.Parameter{
			"customer_id": {
				Type:        gollem.TypeString,
				Description: "The customer identifier as spoken by the caller",
				Required:    true,
			},
			"pin": {
				Type:        gollem.TypeString,
				Description: "The caller's PIN, digits or spoken digit words",
				Required:    true,
			},
		},
	}
}

func (t *verifyIdentityTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	rawID, _ := args["customer_id"].(string)
	rawPIN, _ := args["pin"].(string)

	tool.Update(ctx, "Verifying identity...")

	pin, err := NormalizePIN(rawPIN)
	if err != nil {
		// Validation failures go back to the model as structured results so
		// it can ask the caller to repeat the PIN.
		return map[string]any{"verified": false, "error": "invalid_pin_format"}, nil
	}

	identifier := NormalizeIdentifier(rawID)
	customerID, ok := t.store.Resolve(identifier)
	if !ok || !t.store.VerifyPIN(customerID, pin) {
		if session, ok := tool.SessionFrom(ctx); ok {
			session.RecordFailedVerification()
		}
		logging.From(ctx).Info("identity verification failed", "identifier", identifier)
		return map[string]any{"verified": false}, nil
	}

	if session, ok := tool.SessionFrom(ctx); ok {
		session.Verify(customerID)
	}
	logging.From(ctx).Info("identity verified", "customerID", customerID)

	return map[string]any{
		"verified":    true,
		"customer_id": customerID.String(),
	}, nil
}
