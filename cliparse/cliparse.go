package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported storage backends
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
	DatabaseMemory   = "memory"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	MongoDatabase string
	SessionSalt   string
	SendQueueSize int
	OpTimeout     time.Duration
	EnvFile       string
	LogLevel      string
	LogFormat     string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	flags := flag.NewFlagSet("livepoll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres, mongo or memory)")
	flags.StringVar(&cfg.MongoDatabase, "mongo-db", "", "Mongo database name")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")

	// Tuning
	flags.IntVar(&cfg.SendQueueSize, "queue", 0, "Per-connection outbound queue size")
	flags.DurationVar(&cfg.OpTimeout, "op-timeout", 0, "Storage timeout per poll mutation")
	flags.StringVar(&cfg.EnvFile, "env-file", "", "Optional dotenv file")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.EnvFile == "" {
		cfg.EnvFile = envOr("ENV_FILE", ".env")
	}
	if err := LoadEnvFile(cfg.EnvFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", DatabaseSQLite)
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMongo, DatabaseMemory:
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != DatabaseMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = envOr("MONGO_DATABASE", "livepoll")
	}

	// Secrets - MUST be provided
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}

	if cfg.SendQueueSize == 0 {
		size, err := envInt("SEND_QUEUE_SIZE", 64)
		if err != nil {
			return Config{}, err
		}
		cfg.SendQueueSize = size
	}
	if cfg.SendQueueSize < 1 {
		return Config{}, errors.New("send queue size must be positive")
	}

	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = 5 * time.Second
		if raw := os.Getenv("OP_TIMEOUT"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return Config{}, errors.New("invalid OP_TIMEOUT env variable")
			}
			cfg.OpTimeout = d
		}
	}

	cfg.LogLevel = envOr("LOG_LEVEL", "info")
	cfg.LogFormat = envOr("LOG_FORMAT", "text")

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
