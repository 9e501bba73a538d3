package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// configDoc is the Firestore document representation of model.AgentConfig
type configDoc struct {
	EnvKey           string              `firestore:"EnvKey"`
	BaseSystemPrompt string              `firestore:"BaseSystemPrompt"`
	RouterPrompt     string              `firestore:"RouterPrompt"`
	ToolFlags        map[string]bool     `firestore:"ToolFlags"`
	RoutingRules     map[string][]string `firestore:"RoutingRules"`
	UpdatedAt        time.Time           `firestore:"UpdatedAt"`
}

func toConfigDoc(c *model.AgentConfig) *configDoc {
	return &configDoc{
		EnvKey:           c.EnvKey.String(),
		BaseSystemPrompt: c.BaseSystemPrompt,
		RouterPrompt:     c.RouterPrompt,
		ToolFlags:        c.ToolFlags,
		RoutingRules:     c.RoutingRules,
		UpdatedAt:        c.UpdatedAt,
	}
}

func fromConfigDoc(d *configDoc) *model.AgentConfig {
	return &model.AgentConfig{
		EnvKey:           types.EnvKey(d.EnvKey),
		BaseSystemPrompt: d.BaseSystemPrompt,
		RouterPrompt:     d.RouterPrompt,
		ToolFlags:        d.ToolFlags,
		RoutingRules:     d.RoutingRules,
		UpdatedAt:        d.UpdatedAt,
	}
}

type configRepository struct {
	client *firestore.Client
}

func newConfigRepository(client *firestore.Client) *configRepository {
	return &configRepository{client: client}
}

func (r *configRepository) docRef(envKey types.EnvKey) *firestore.DocumentRef {
	return r.client.Collection(collectionConfigs).Doc(envKey.String())
}

func (r *configRepository) Get(ctx context.Context, envKey types.EnvKey) (*model.AgentConfig, error) {
	snap, err := r.docRef(envKey).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &model.AgentConfig{EnvKey: envKey}, nil
		}
		return nil, goerr.Wrap(err, "failed to get agent config", goerr.V("envKey", envKey))
	}

	var d configDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal agent config", goerr.V("envKey", envKey))
	}
	return fromConfigDoc(&d), nil
}

func (r *configRepository) Put(ctx context.Context, cfg *model.AgentConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	if _, err := r.docRef(cfg.EnvKey).Set(ctx, toConfigDoc(cfg)); err != nil {
		return goerr.Wrap(err, "failed to put agent config", goerr.V("envKey", cfg.EnvKey))
	}
	return nil
}
