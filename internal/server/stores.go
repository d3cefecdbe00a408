package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gonotes/notes-service/internal/config"
	"github.com/gonotes/notes-service/internal/database"
	"github.com/gonotes/notes-service/internal/storage"
	"github.com/gonotes/notes-service/internal/tokens"
	"github.com/gonotes/notes-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const connectAttempts = 5

// Stores bundles the note records, the token set and the shared clients
// they were built from.
type Stores struct {
	Records storage.Store
	Tokens  *tokens.Repository
	// Redis is set whenever REDIS_HOST is configured, also for the rate
	// limiter when another backend holds the notes.
	Redis *redis.Client

	tokenStore storage.Store
	mongo      *mongo.Client
}

// OpenStores builds the stores for the configured backend.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	st := &Stores{}
	if cfg.Redis.Host != "" {
		client, err := database.Retry(ctx, "redis", connectAttempts, time.Second, func(ctx context.Context) (*redis.Client, error) {
			return database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		})
		if err != nil {
			if cfg.Storage.Backend == config.BackendRedis {
				return nil, err
			}
			// only the rate limiter wanted it; it falls back to in-process
			logger.Warnf("redis unavailable, continuing without it: %v", err)
		} else {
			st.Redis = client
		}
	}

	var err error
	switch cfg.Storage.Backend {
	case config.BackendFile:
		err = st.openFile(cfg)
	case config.BackendMemory:
		st.Records = storage.NewMemoryStore()
		st.tokenStore = storage.NewMemoryStore()
	case config.BackendRedis:
		if st.Redis == nil {
			return nil, fmt.Errorf("redis backend selected but REDIS_HOST is not set")
		}
		st.Records = storage.NewRedisStore(st.Redis, cfg.Redis.Prefix+"note:")
		st.tokenStore = storage.NewRedisStore(st.Redis, cfg.Redis.Prefix+"meta:")
	case config.BackendMongo:
		err = st.openMongo(ctx, cfg)
	case config.BackendMinIO:
		err = st.openMinIO(cfg)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		st.Close(context.Background())
		return nil, err
	}
	if st.Tokens == nil {
		st.Tokens = tokens.NewRepository(st.tokenStore, cfg.Storage.TokensKey)
	}
	return st, nil
}

func (s *Stores) openFile(cfg *config.Config) error {
	records, err := storage.NewFileStore(cfg.Storage.NotesDir)
	if err != nil {
		return err
	}
	repo, err := tokens.NewFileRepository(cfg.Storage.TokensFile)
	if err != nil {
		return err
	}
	s.Records = records
	s.Tokens = repo
	return nil
}

func (s *Stores) openMongo(ctx context.Context, cfg *config.Config) error {
	client, err := database.Retry(ctx, "mongodb", connectAttempts, time.Second, func(ctx context.Context) (*mongo.Client, error) {
		return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	})
	if err != nil {
		return err
	}
	s.mongo = client
	db := client.Database(cfg.MongoDB.Database)
	s.Records = storage.NewMongoStore(db.Collection(cfg.MongoDB.NotesCollection))
	s.tokenStore = storage.NewMongoStore(db.Collection(cfg.MongoDB.TokensCollection))
	return nil
}

func (s *Stores) openMinIO(cfg *config.Config) error {
	mc := storage.MinIOConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		UseSSL:    cfg.MinIO.UseSSL,
		Bucket:    cfg.MinIO.Bucket,
		Region:    cfg.MinIO.Region,
		Prefix:    "notes/",
	}
	records, err := storage.NewMinIOStore(&mc)
	if err != nil {
		return err
	}
	mc.Prefix = "meta/"
	meta, err := storage.NewMinIOStore(&mc)
	if err != nil {
		return err
	}
	s.Records = records
	s.tokenStore = meta
	return nil
}

// Ready pings every store that supports it. Stores without a Ping are
// reported as reachable.
func (s *Stores) Ready(ctx context.Context) map[string]bool {
	deps := map[string]bool{"records": ping(ctx, s.Records)}
	if s.tokenStore != nil {
		deps["tokens"] = ping(ctx, s.tokenStore)
	}
	if s.Redis != nil {
		deps["redis"] = s.Redis.Ping(ctx).Err() == nil
	}
	return deps
}

func ping(ctx context.Context, st storage.Store) bool {
	p, ok := st.(storage.Pinger)
	if !ok {
		return true
	}
	if err := p.Ping(ctx); err != nil {
		logger.Warnf("store ping failed: %v", err)
		return false
	}
	return true
}

// Close releases the underlying clients.
func (s *Stores) Close(ctx context.Context) {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.mongo != nil {
		_ = s.mongo.Disconnect(ctx)
	}
}
