package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMinIO  = "minio"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig selects where notes and the token set live. The file backend
// keeps one JSON file per note in NotesDir and the token set in TokensFile.
// Other backends keep the token set as a record named TokensKey in a store
// separate from the notes.
type StorageConfig struct {
	Backend      string
	NotesDir     string
	TokensFile   string
	TokensKey    string
	DefaultLabel string
	DefaultToken string
}

type MongoDBConfig struct {
	URI              string
	Database         string
	NotesCollection  string
	TokensCollection string
	Timeout          time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and an optional
// .env file in the working directory.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("STORAGE_BACKEND", BackendFile)
	v.SetDefault("NOTES_DIR", "notes")
	v.SetDefault("TOKENS_FILE", "tokens.json")
	v.SetDefault("TOKENS_KEY", "tokens")
	v.SetDefault("DEFAULT_TOKEN_LABEL", "user")
	v.SetDefault("DEFAULT_TOKEN", "test_token")

	v.SetDefault("MONGODB_DATABASE", "notes")
	v.SetDefault("MONGODB_NOTES_COLLECTION", "notes")
	v.SetDefault("MONGODB_TOKENS_COLLECTION", "tokens")
	v.SetDefault("MONGODB_TIMEOUT", 10)

	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "notes:")

	v.SetDefault("MINIO_BUCKET", "notes")
	v.SetDefault("MINIO_REGION", "us-east-1")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout:    time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(v.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			NotesDir:     v.GetString("NOTES_DIR"),
			TokensFile:   v.GetString("TOKENS_FILE"),
			TokensKey:    v.GetString("TOKENS_KEY"),
			DefaultLabel: v.GetString("DEFAULT_TOKEN_LABEL"),
			DefaultToken: v.GetString("DEFAULT_TOKEN"),
		},
		MongoDB: MongoDBConfig{
			URI:              v.GetString("MONGODB_URI"),
			Database:         v.GetString("MONGODB_DATABASE"),
			NotesCollection:  v.GetString("MONGODB_NOTES_COLLECTION"),
			TokensCollection: v.GetString("MONGODB_TOKENS_COLLECTION"),
			Timeout:          time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Region:    v.GetString("MINIO_REGION"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	var problems []string
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.NotesDir == "" {
			problems = append(problems, "NOTES_DIR is required for the file backend")
		}
		if c.Storage.TokensFile == "" {
			problems = append(problems, "TOKENS_FILE is required for the file backend")
		}
		if c.Storage.NotesDir != "" && c.Storage.TokensFile != "" &&
			samePath(c.Storage.NotesDir, filepath.Dir(c.Storage.TokensFile)) {
			problems = append(problems, "TOKENS_FILE must not live in NOTES_DIR")
		}
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Host == "" {
			problems = append(problems, "REDIS_HOST is required for the redis backend")
		}
	case BackendMongo:
		if c.MongoDB.URI == "" {
			problems = append(problems, "MONGODB_URI is required for the mongo backend")
		}
	case BackendMinIO:
		if c.MinIO.Endpoint == "" {
			problems = append(problems, "MINIO_ENDPOINT is required for the minio backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if c.Storage.Backend != BackendFile && c.Storage.TokensKey == "" {
		problems = append(problems, "TOKENS_KEY must not be empty")
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		problems = append(problems, "RATE_LIMIT_RPS must be positive when rate limiting is enabled")
	}
	if c.RateLimit.UseRedis && c.Redis.Host == "" {
		problems = append(problems, "RATE_LIMIT_USE_REDIS requires REDIS_HOST")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
