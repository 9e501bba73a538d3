package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Collection names. The migrate command declares the composite index for
// call_turns (SessionID ASC, Index ASC).
const (
	collectionSessions     = "call_sessions"
	collectionTurns        = "call_turns"
	collectionTurnCounters = "turn_counters"
	collectionConfigs      = "configs"
)

// Firestore is the Cloud Firestore repository backend
type Firestore struct {
	client  *firestore.Client
	session *sessionRepository
	turn    *turnRepository
	config  *configRepository
}

var _ interfaces.Repository = &Firestore{}

func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	return &Firestore{
		client:  client,
		session: newSessionRepository(client),
		turn:    newTurnRepository(client),
		config:  newConfigRepository(client),
	}, nil
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.session
}

func (f *Firestore) Turn() interfaces.TurnRepository {
	return f.turn
}

func (f *Firestore) Config() interfaces.ConfigRepository {
	return f.config
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
