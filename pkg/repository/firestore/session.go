package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// sessionDoc is the Firestore document representation of model.Session.
type sessionDoc struct {
	ID                   string    `firestore:"ID"`
	EnvKey               string    `firestore:"EnvKey"`
	CustomerID           string    `firestore:"CustomerID"`
	Verified             bool      `firestore:"Verified"`
	VerificationAttempts int       `firestore:"VerificationAttempts"`
	Flow                 string    `firestore:"Flow"`
	StartedAt            time.Time `firestore:"StartedAt"`
	UpdatedAt            time.Time `firestore:"UpdatedAt"`
	Ended                bool      `firestore:"Ended"`
	EndedAt              time.Time `firestore:"EndedAt"`
}

func toSessionDoc(s *model.Session) *sessionDoc {
	return &sessionDoc{
		ID:                   s.ID.String(),
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
		ID:                   types.SessionID(d.ID),
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
	client *firestore.Client
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) docRef(id types.SessionID) *firestore.DocumentRef {
	return r.client.Collection(collectionSessions).Doc(id.String())
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	if _, err := r.docRef(session.ID).Create(ctx, toSessionDoc(session)); err != nil {
		return goerr.Wrap(err, "failed to create session", goerr.V("sessionID", session.ID))
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id types.SessionID) (*model.Session, error) {
	snap, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("sessionID", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("sessionID", id))
	}

	var d sessionDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("sessionID", id))
	}
	return fromSessionDoc(&d), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = time.Now().UTC()
	if _, err := r.docRef(session.ID).Set(ctx, toSessionDoc(session)); err != nil {
		return goerr.Wrap(err, "failed to update session", goerr.V("sessionID", session.ID))
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	iter := r.client.Collection(collectionSessions).
		OrderBy("UpdatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	sessions := make([]*model.Session, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sessions")
		}

		var d sessionDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal session")
		}
		sessions = append(sessions, fromSessionDoc(&d))
	}

	return sessions, nil
}
