package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// turnDoc is the Firestore document representation of model.Turn. Messages
// and tool calls are stored as maps; they were redacted before append.
type turnDoc struct {
	SessionID  string                 `firestore:"SessionID"`
	Index      int64                  `firestore:"Index"`
	Transcript string                 `firestore:"Transcript"`
	Response   string                 `firestore:"Response"`
	Flow       string                 `firestore:"Flow"`
	ToolCalls  []model.ToolCallRecord `firestore:"ToolCalls"`
	Messages   []model.Message        `firestore:"Messages"`
	CreatedAt  time.Time              `firestore:"CreatedAt"`
}

// counterDoc tracks the next turn index per session
type counterDoc struct {
	Next int64 `firestore:"Next"`
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
	client *firestore.Client
}

func newTurnRepository(client *firestore.Client) *turnRepository {
	return &turnRepository{client: client}
}

// Append allocates the next index and writes the turn in one transaction,
// keeping indices contiguous even when two turns for the same session race.
func (r *turnRepository) Append(ctx context.Context, turn *model.Turn) (int64, error) {
	if turn.SessionID == "" {
		return 0, goerr.New("turn session ID is required")
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	counterRef := r.client.Collection(collectionTurnCounters).Doc(turn.SessionID.String())

	var index int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var next int64
		snap, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to read turn counter")
			}
		} else {
			var c counterDoc
			if err := snap.DataTo(&c); err != nil {
				return goerr.Wrap(err, "failed to unmarshal turn counter")
			}
			next = c.Next
		}

		index = next
		turn.Index = index
		turnRef := r.client.Collection(collectionTurns).
			Doc(fmt.Sprintf("%s_%06d", turn.SessionID, index))

		if err := tx.Set(turnRef, toTurnDoc(turn)); err != nil {
			return goerr.Wrap(err, "failed to write turn")
		}
		if err := tx.Set(counterRef, &counterDoc{Next: next + 1}); err != nil {
			return goerr.Wrap(err, "failed to advance turn counter")
		}
		return nil
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to append turn",
			goerr.V("sessionID", turn.SessionID),
		)
	}

	return index, nil
}

func (r *turnRepository) List(ctx context.Context, sessionID types.SessionID) ([]*model.Turn, error) {
	iter := r.client.Collection(collectionTurns).
		Where("SessionID", "==", sessionID.String()).
		OrderBy("Index", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	turns := make([]*model.Turn, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate turns", goerr.V("sessionID", sessionID))
		}

		var d turnDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal turn", goerr.V("sessionID", sessionID))
		}
		turns = append(turns, fromTurnDoc(&d))
	}

	return turns, nil
}
