package mongo

import (
	"context"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionSessions = "call_sessions"
	collectionTurns    = "call_turns"
	collectionCounters = "turn_counters"
	collectionConfigs  = "configs"
)

// Mongo is the MongoDB repository backend
type Mongo struct {
	client  *mongo.Client
	session *sessionRepository
	turn    *turnRepository
	config  *configRepository
}

var _ interfaces.Repository = &Mongo{}

func New(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, goerr.Wrap(err, "failed to ping mongodb")
	}

	db := client.Database(database)
	return &Mongo{
		client:  client,
		session: newSessionRepository(db),
		turn:    newTurnRepository(db),
		config:  newConfigRepository(db),
	}, nil
}

func (m *Mongo) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Mongo) Turn() interfaces.TurnRepository {
	return m.turn
}

func (m *Mongo) Config() interfaces.ConfigRepository {
	return m.config
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
