package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-mizutani/gt"
	goredis "github.com/redis/go-redis/v9"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/repository/firestore"
	"github.com/abcbank/voxteller/pkg/repository/memory"
	"github.com/abcbank/voxteller/pkg/repository/mongo"
	"github.com/abcbank/voxteller/pkg/repository/redis"
)

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := model.NewSession(types.DefaultEnvKey)
		gt.NoError(t, repo.Session().Create(ctx, session)).Required()

		retrieved, err := repo.Session().Get(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.ID).Equal(session.ID)
		gt.Value(t, retrieved.EnvKey).Equal(types.DefaultEnvKey)
		gt.False(t, retrieved.Verified)
		gt.False(t, retrieved.Ended)
	})

	t.Run("Get returns ErrNotFound for unknown session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().Get(ctx, types.NewSessionID())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, interfaces.ErrNotFound))
	})

	t.Run("Update persists verification state", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := model.NewSession(types.DefaultEnvKey)
		gt.NoError(t, repo.Session().Create(ctx, session)).Required()

		session.Verify("user_123")
		session.RecordFailedVerification()
		gt.NoError(t, repo.Session().Update(ctx, session)).Required()

		retrieved, err := repo.Session().Get(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.True(t, retrieved.Verified)
		gt.Value(t, retrieved.CustomerID).Equal(types.CustomerID("user_123"))
		gt.Value(t, retrieved.VerificationAttempts).Equal(1)
	})

	t.Run("Update returns ErrNotFound for unknown session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Session().Update(ctx, model.NewSession(types.DefaultEnvKey))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, interfaces.ErrNotFound))
	})

	t.Run("List orders by most recent update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := model.NewSession(types.DefaultEnvKey)
		gt.NoError(t, repo.Session().Create(ctx, first)).Required()
		second := model.NewSession(types.DefaultEnvKey)
		gt.NoError(t, repo.Session().Create(ctx, second)).Required()

		// Touching the first session moves it to the front
		gt.NoError(t, repo.Session().Update(ctx, first)).Required()

		sessions, err := repo.Session().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, sessions).Length(2)
		gt.Value(t, sessions[0].ID).Equal(first.ID)
		gt.Value(t, sessions[1].ID).Equal(second.ID)
	})
}

func runTurnRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Append assigns contiguous indices from zero", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		sessionID := types.NewSessionID()

		for i := 0; i < 3; i++ {
			turn := &model.Turn{
				SessionID:  sessionID,
				Transcript: "hello",
				Response:   "hi there",
				Flow:       types.FlowGeneralInquiry,
			}
			index, err := repo.Turn().Append(ctx, turn)
			gt.NoError(t, err).Required()
			gt.Value(t, index).Equal(int64(i))
			gt.Value(t, turn.Index).Equal(int64(i))
		}
	})

	t.Run("List returns turns in index order with messages", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		sessionID := types.NewSessionID()

		turn := &model.Turn{
			SessionID:  sessionID,
			Transcript: "what's my balance",
			Response:   "Your balance is 1,250 dollars.",
			Flow:       types.FlowAccountServicing,
			ToolCalls: []model.ToolCallRecord{
				{Name: "get_account_balance", Result: map[string]any{"balance": 1250.75}},
			},
			Messages: []model.Message{
				model.NewUserMessage("what's my balance"),
				model.NewAssistantMessage("Your balance is 1,250 dollars."),
			},
		}
		_, err := repo.Turn().Append(ctx, turn)
		gt.NoError(t, err).Required()
		_, err = repo.Turn().Append(ctx, &model.Turn{
			SessionID:  sessionID,
			Transcript: "thanks",
			Response:   "You're welcome!",
			Flow:       types.FlowGeneralInquiry,
		})
		gt.NoError(t, err).Required()

		turns, err := repo.Turn().List(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Array(t, turns).Length(2)
		gt.Value(t, turns[0].Index).Equal(int64(0))
		gt.Value(t, turns[0].Transcript).Equal("what's my balance")
		gt.Array(t, turns[0].Messages).Length(2)
		gt.Value(t, turns[0].Messages[0].Role).Equal(model.RoleUser)
		gt.Array(t, turns[0].ToolCalls).Length(1)
		gt.Value(t, turns[1].Index).Equal(int64(1))
		gt.False(t, turns[0].CreatedAt.IsZero())
	})

	t.Run("Counters are independent per session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		sessionA := types.NewSessionID()
		sessionB := types.NewSessionID()

		indexA, err := repo.Turn().Append(ctx, &model.Turn{SessionID: sessionA})
		gt.NoError(t, err).Required()
		indexB, err := repo.Turn().Append(ctx, &model.Turn{SessionID: sessionB})
		gt.NoError(t, err).Required()

		gt.Value(t, indexA).Equal(int64(0))
		gt.Value(t, indexB).Equal(int64(0))
	})

	t.Run("Append rejects missing session ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Turn().Append(ctx, &model.Turn{Transcript: "hello"})
		gt.Error(t, err)
	})

	t.Run("Concurrent appends keep indices contiguous", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		sessionID := types.NewSessionID()

		const workers = 8
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Turn().Append(ctx, &model.Turn{SessionID: sessionID})
				gt.NoError(t, err)
			}()
		}
		wg.Wait()

		turns, err := repo.Turn().List(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Array(t, turns).Length(workers)
		for i, turn := range turns {
			gt.Value(t, turn.Index).Equal(int64(i))
		}
	})
}

func runConfigRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns default for unknown env key", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cfg, err := repo.Config().Get(ctx, "staging")
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.EnvKey).Equal(types.EnvKey("staging"))
		gt.Value(t, cfg.BaseSystemPrompt).Equal("")
		gt.True(t, cfg.ToolFlags.Enabled("block_card"))
	})

	t.Run("Put and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Config().Put(ctx, &model.AgentConfig{
			EnvKey:           types.DefaultEnvKey,
			BaseSystemPrompt: "You are a bank assistant.",
			ToolFlags:        model.ToolFlags{"block_card": false},
			RoutingRules:     model.RoutingRules{"card_issue": {"stolen", "lost card"}},
		})).Required()

		cfg, err := repo.Config().Get(ctx, types.DefaultEnvKey)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.BaseSystemPrompt).Equal("You are a bank assistant.")
		gt.False(t, cfg.ToolFlags.Enabled("block_card"))
		gt.True(t, cfg.ToolFlags.Enabled("verify_identity"))
		gt.Array(t, cfg.RoutingRules["card_issue"]).Length(2)
		gt.False(t, cfg.UpdatedAt.IsZero())
	})

	t.Run("Environments are isolated", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Config().Put(ctx, &model.AgentConfig{
			EnvKey:    "prod",
			ToolFlags: model.ToolFlags{"update_address": false},
		})).Required()

		cfg, err := repo.Config().Get(ctx, types.DefaultEnvKey)
		gt.NoError(t, err).Required()
		gt.True(t, cfg.ToolFlags.Enabled("update_address"))
	})
}

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newRedisRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	mr, err := miniredis.Run()
	gt.NoError(t, err).Required()
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	repo := redis.NewWithClient(client)
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Logf("failed to close redis repository: %v", err)
		}
	})
	return repo
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Logf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func newMongoRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	repo, err := mongo.New(ctx, uri, "voxteller_test")
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Logf("failed to close mongo repository: %v", err)
		}
	})
	return repo
}

func TestSessionRepository_Memory(t *testing.T) {
	runSessionRepositoryTest(t, newMemoryRepository)
}

func TestTurnRepository_Memory(t *testing.T) {
	runTurnRepositoryTest(t, newMemoryRepository)
}

func TestConfigRepository_Memory(t *testing.T) {
	runConfigRepositoryTest(t, newMemoryRepository)
}

func TestSessionRepository_Redis(t *testing.T) {
	runSessionRepositoryTest(t, newRedisRepository)
}

func TestTurnRepository_Redis(t *testing.T) {
	runTurnRepositoryTest(t, newRedisRepository)
}

func TestConfigRepository_Redis(t *testing.T) {
	runConfigRepositoryTest(t, newRedisRepository)
}

func TestTurnRepository_RedisFailedAppendKeepsIndicesContiguous(t *testing.T) {
	repo := newRedisRepository(t)
	ctx := context.Background()
	sessionID := types.NewSessionID()

	index, err := repo.Turn().Append(ctx, &model.Turn{SessionID: sessionID, Transcript: "hello"})
	gt.NoError(t, err).Required()
	gt.Value(t, index).Equal(int64(0))

	// A turn that cannot be serialized must not consume an index
	bad := &model.Turn{
		SessionID: sessionID,
		ToolCalls: []model.ToolCallRecord{
			{Name: "get_account_balance", Result: map[string]any{"bad": make(chan int)}},
		},
	}
	_, err = repo.Turn().Append(ctx, bad)
	gt.Error(t, err)

	index, err = repo.Turn().Append(ctx, &model.Turn{SessionID: sessionID, Transcript: "retry"})
	gt.NoError(t, err).Required()
	gt.Value(t, index).Equal(int64(1))

	turns, err := repo.Turn().List(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Array(t, turns).Length(2)
	gt.Value(t, turns[0].Index).Equal(int64(0))
	gt.Value(t, turns[1].Index).Equal(int64(1))
}

func TestSessionRepository_Firestore(t *testing.T) {
	runSessionRepositoryTest(t, newFirestoreRepository)
}

func TestTurnRepository_Firestore(t *testing.T) {
	runTurnRepositoryTest(t, newFirestoreRepository)
}

func TestConfigRepository_Firestore(t *testing.T) {
	runConfigRepositoryTest(t, newFirestoreRepository)
}

func TestSessionRepository_Mongo(t *testing.T) {
	runSessionRepositoryTest(t, newMongoRepository)
}

func TestTurnRepository_Mongo(t *testing.T) {
	runTurnRepositoryTest(t, newMongoRepository)
}

func TestConfigRepository_Mongo(t *testing.T) {
	runConfigRepositoryTest(t, newMongoRepository)
}
