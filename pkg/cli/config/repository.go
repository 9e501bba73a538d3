package config

import (
	"context"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/repository/firestore"
	"github.com/abcbank/voxteller/pkg/repository/memory"
	"github.com/abcbank/voxteller/pkg/repository/mongo"
	"github.com/abcbank/voxteller/pkg/repository/redis"
	"github.com/abcbank/voxteller/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend string

	projectID  string
	databaseID string

	redisAddr     string
	redisPassword string
	redisDB       int

	mongoURI      string
	mongoDatabase string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore, redis, or mongo)",
			Value:       "memory",
			Sources:     cli.EnvVars("VOXTELLER_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("VOXTELLER_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("VOXTELLER_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (required when using redis backend)",
			Sources:     cli.EnvVars("VOXTELLER_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("VOXTELLER_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Sources:     cli.EnvVars("VOXTELLER_REDIS_DB"),
			Destination: &r.redisDB,
		},
		&cli.StringFlag{
			Name:        "mongo-uri",
			Usage:       "MongoDB connection URI (required when using mongo backend)",
			Sources:     cli.EnvVars("VOXTELLER_MONGO_URI"),
			Destination: &r.mongoURI,
		},
		&cli.StringFlag{
			Name:        "mongo-database",
			Usage:       "MongoDB database name",
			Value:       "voxteller",
			Sources:     cli.EnvVars("VOXTELLER_MONGO_DATABASE"),
			Destination: &r.mongoDatabase,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "redis":
		if r.redisAddr == "" {
			return nil, goerr.New("redis-addr is required when using redis backend")
		}
		repo, err := redis.New(ctx, r.redisAddr, r.redisPassword, r.redisDB)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis repository", "addr", r.redisAddr, "db", r.redisDB)
		return repo, nil

	case "mongo":
		if r.mongoURI == "" {
			return nil, goerr.New("mongo-uri is required when using mongo backend")
		}
		repo, err := mongo.New(ctx, r.mongoURI, r.mongoDatabase)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize mongo repository")
		}
		logging.Default().Info("Using MongoDB repository", "database", r.mongoDatabase)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
