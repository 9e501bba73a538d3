package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// configDoc is the MongoDB document representation of model.AgentConfig
type configDoc struct {
	EnvKey           string              `bson:"env_key"`
	BaseSystemPrompt string              `bson:"base_system_prompt"`
	RouterPrompt     string              `bson:"router_prompt"`
	ToolFlags        map[string]bool     `bson:"tool_flags"`
	RoutingRules     map[string][]string `bson:"routing_rules"`
	UpdatedAt        time.Time           `bson:"updated_at"`
}

type configRepository struct {
	coll *mongo.Collection
}

func newConfigRepository(db *mongo.Database) *configRepository {
	return &configRepository{coll: db.Collection(collectionConfigs)}
}

func (r *configRepository) Get(ctx context.Context, envKey types.EnvKey) (*model.AgentConfig, error) {
	var d configDoc
	err := r.coll.FindOne(ctx, bson.M{"env_key": envKey.String()}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.AgentConfig{EnvKey: envKey}, nil
		}
		return nil, goerr.Wrap(err, "failed to get agent config", goerr.V("envKey", envKey))
	}

	return &model.AgentConfig{
		EnvKey:           types.EnvKey(d.EnvKey),
		BaseSystemPrompt: d.BaseSystemPrompt,
		RouterPrompt:     d.RouterPrompt,
		ToolFlags:        d.ToolFlags,
		RoutingRules:     d.RoutingRules,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

func (r *configRepository) Put(ctx context.Context, cfg *model.AgentConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	doc := &configDoc{
		EnvKey:           cfg.EnvKey.String(),
		BaseSystemPrompt: cfg.BaseSystemPrompt,
		RouterPrompt:     cfg.RouterPrompt,
		ToolFlags:        cfg.ToolFlags,
		RoutingRules:     cfg.RoutingRules,
		UpdatedAt:        cfg.UpdatedAt,
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"env_key": cfg.EnvKey.String()},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return goerr.Wrap(err, "failed to put agent config", goerr.V("envKey", cfg.EnvKey))
	}
	return nil
}
