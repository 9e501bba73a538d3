package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sessionDoc is the MongoDB document representation of model.Session
type sessionDoc struct {
	SessionID            string    `bson:"session_id"`
	EnvKey               string    `bson:"env_key"`
	CustomerID           string    `bson:"customer_id"`
	Verified             bool      `bson:"verified_identity"`
	VerificationAttempts int       `bson:"verification_attempts"`
	Flow                 string    `bson:"flow"`
	StartedAt            time.Time `bson:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at"`
	Ended                bool      `bson:"ended"`
	EndedAt              time.Time `bson:"ended_at,omitempty"`
}

func toSessionDoc(s *model.Session) *sessionDoc {
	return &sessionDoc{
		SessionID:            s.ID.String(),
		EnvKey:               s.EnvKey.String(),
		CustomerID:           s.CustomerID.String(),
		Verified:             s.Verified,
		VerificationAttempts: s.VerificationAttempts,
		Flow:                 s.Flow.String(),
		StartedAt:            s.StartedAt,
		UpdatedAt:            s.UpdatedAt,
		Ended:                s.Ended,
		EndedAt:              s.EndedAt,
	}
}

func fromSessionDoc(d *sessionDoc) *model.Session {
	return &model.Session{
		ID:                   types.SessionID(d.SessionID),
		EnvKey:               types.EnvKey(d.EnvKey),
		CustomerID:           types.CustomerID(d.CustomerID),
		Verified:             d.Verified,
		VerificationAttempts: d.VerificationAttempts,
		Flow:                 types.Flow(d.Flow),
		StartedAt:            d.StartedAt,
		UpdatedAt:            d.UpdatedAt,
		Ended:                d.Ended,
		EndedAt:              d.EndedAt,
	}
}

type sessionRepository struct {
	coll *mongo.Collection
}

func newSessionRepository(db *mongo.Database) *sessionRepository {
	return &sessionRepository{coll: db.Collection(collectionSessions)}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	if _, err := r.coll.InsertOne(ctx, toSessionDoc(session)); err != nil {
		return goerr.Wrap(err, "failed to insert session", goerr.V("sessionID", session.ID))
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id types.SessionID) (*model.Session, error) {
	var d sessionDoc
	err := r.coll.FindOne(ctx, bson.M{"session_id": id.String()}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("sessionID", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("sessionID", id))
	}
	return fromSessionDoc(&d), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = time.Now().UTC()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"session_id": session.ID.String()}, toSessionDoc(session))
	if err != nil {
		return goerr.Wrap(err, "failed to update session", goerr.V("sessionID", session.ID))
	}
	if result.MatchedCount == 0 {
		return goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("sessionID", session.ID))
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	cursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}
	defer cursor.Close(ctx)

	var docs []sessionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, goerr.Wrap(err, "failed to decode sessions")
	}

	sessions := make([]*model.Session, len(docs))
	for i := range docs {
		sessions[i] = fromSessionDoc(&docs[i])
	}
	return sessions, nil
}
