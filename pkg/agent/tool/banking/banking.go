package banking

import (
	"github.com/abcbank/voxteller/pkg/agent/tool"
	"github.com/abcbank/voxteller/pkg/service/dataset"
)

// New builds the banking tool set backed by the given dataset. Every tool
// except identity verification requires a verified session; the registry
// enforces that from the descriptor, not the handlers.
func New(store *dataset.Store) []tool.Descriptor {
	return []tool.Descriptor{
		{Tool: &verifyIdentityTool{store: store}, RequiresVerification: false},
		{Tool: &accountBalanceTool{store: store}, RequiresVerification: true},
		{Tool: &recentTransactionsTool{store: store}, RequiresVerification: true},
		{Tool: &customerProfileTool{store: store}, RequiresVerification: true},
		{Tool: &customerCardsTool{store: store}, RequiresVerification: true},
		{Tool: &blockCardTool{store: store}, RequiresVerification: true},
		{Tool: &requestStatementTool{store: store}, RequiresVerification: true},
		{Tool: &updateAddressTool{store: store}, RequiresVerification: true},
		{Tool: &cashNotDispensedTool{store: store}, RequiresVerification: true},
	}
}
