package mongo

import (
	"context"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// turnDoc is the MongoDB document representation of model.Turn
type turnDoc struct {
	SessionID  string                 `bson:"session_id"`
	Index      int64                  `bson:"index"`
	Transcript string                 `bson:"user_transcript"`
	Response   string                 `bson:"agent_response"`
	Flow       string                 `bson:"flow"`
	ToolCalls  []model.ToolCallRecord `bson:"tool_calls"`
	Messages   []model.Message        `bson:"messages"`
	CreatedAt  time.Time              `bson:"ts"`
}

func toTurnDoc(t *model.Turn) *turnDoc {
	return &turnDoc{
		SessionID:  t.SessionID.String(),
		Index:      t.Index,
		Transcript: t.Transcript,
		Response:   t.Response,
		Flow:       t.Flow.String(),
		ToolCalls:  t.ToolCalls,
		Messages:   t.Messages,
		CreatedAt:  t.CreatedAt,
	}
}

func fromTurnDoc(d *turnDoc) *model.Turn {
	return &model.Turn{
		SessionID:  types.SessionID(d.SessionID),
		Index:      d.Index,
		Transcript: d.Transcript,
		Response:   d.Response,
		Flow:       types.Flow(d.Flow),
		ToolCalls:  d.ToolCalls,
		Messages:   d.Messages,
		CreatedAt:  d.CreatedAt,
	}
}

type turnRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func newTurnRepository(db *mongo.Database) *turnRepository {
	return &turnRepository{
		coll:     db.Collection(collectionTurns),
		counters: db.Collection(collectionCounters),
	}
}

// Append allocates the index from an atomic per-session counter, then
// inserts the turn. List orders by index, so indices stay contiguous and
// ordered even when appends race. An insert failure rolls the counter back
// so a retried turn reuses the same index.
func (r *turnRepository) Append(ctx context.Context, turn *model.Turn) (int64, error) {
	if turn.SessionID == "" {
		return 0, goerr.New("turn session ID is required")
	}

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": turn.SessionID.String()},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to allocate turn index", goerr.V("sessionID", turn.SessionID))
	}

	turn.Index = counter.Seq - 1
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, toTurnDoc(turn)); err != nil {
		if _, derr := r.counters.UpdateOne(ctx,
			bson.M{"_id": turn.SessionID.String()},
			bson.M{"$inc": bson.M{"seq": -1}},
		); derr != nil {
			logging.From(ctx).Error("failed to roll back turn counter",
				"sessionID", turn.SessionID,
				"error", derr.Error(),
			)
		}
		return 0, goerr.Wrap(err, "failed to insert turn", goerr.V("sessionID", turn.SessionID))
	}

	return turn.Index, nil
}

func (r *turnRepository) List(ctx context.Context, sessionID types.SessionID) ([]*model.Turn, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"session_id": sessionID.String()},
		options.Find().SetSort(bson.D{{Key: "index", Value: 1}}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list turns", goerr.V("sessionID", sessionID))
	}
	defer cursor.Close(ctx)

	var docs []turnDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, goerr.Wrap(err, "failed to decode turns", goerr.V("sessionID", sessionID))
	}

	turns := make([]*model.Turn, len(docs))
	for i := range docs {
		turns[i] = fromTurnDoc(&docs[i])
	}
	return turns, nil
}
