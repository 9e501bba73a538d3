package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

const sessionIndexKey = "sessions"

func sessionKey(id types.SessionID) string {
	return "session:" + id.String()
}

type sessionRepository struct {
	client *redis.Client
}

func newSessionRepository(client *redis.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) save(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal session", goerr.V("sessionID", session.ID))
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to store session", goerr.V("sessionID", session.ID))
	}
	if err := r.client.SAdd(ctx, sessionIndexKey, session.ID.String()).Err(); err != nil {
		return goerr.Wrap(err, "failed to index session", goerr.V("sessionID", session.ID))
	}
	return nil
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.save(ctx, session)
}

func (r *sessionRepository) Get(ctx context.Context, id types.SessionID) (*model.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "session not found", goerr.V("sessionID", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("sessionID", id))
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("sessionID", id))
	}
	return &session, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session) error {
	if _, err := r.Get(ctx, session.ID); err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()
	return r.save(ctx, session)
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	ids, err := r.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list session IDs")
	}

	sessions := make([]*model.Session, 0, len(ids))
	for _, id := range ids {
		session, err := r.Get(ctx, types.SessionID(id))
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	return sessions, nil
}
