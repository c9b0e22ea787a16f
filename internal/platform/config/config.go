package config

import (
	"errors"
	"fmt"
	"time"
)

// Status log backends.
const (
	StatusBackendFile   = "file"
	StatusBackendRedis  = "redis"
	StatusBackendMemory = "memory"
)

// Ledger backends.
const (
	LedgerBackendMemory = "memory"
	LedgerBackendFabric = "fabric"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Log      Log
	Demo     Demo
	Ledger   Ledger
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Demo configures the seeding pipeline.
type Demo struct {
	Authority      string
	StatusBackend  string
	StatusPath     string
	FixturesPath   string
	IdentitiesPath string
}

// Ledger selects and configures the ledger adapter.
type Ledger struct {
	Backend        string
	ConfigPath     string
	Channel        string
	Contract       string
	WalletPath     string
	EventFilter    string
	CreateFunction string
}

// RedisConfig configures the shared status log. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures run history. An empty URL keeps history in memory.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// KafkaConfig configures status event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers     []string
	StatusTopic string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error
	intVar := func(key string, def int) int {
		v, err := envInt(key, def)
		errs = append(errs, err)
		return v
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		v, err := envDuration(key, def)
		errs = append(errs, err)
		return v
	}

	cfg := Config{
		Server: Server{
			Addr:            envString("CUSTODIAN_ADDR", ":8080"),
			ShutdownTimeout: durationVar("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: Log{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
		Demo: Demo{
			Authority:      envString("DEMO_AUTHORITY", "Kollur"),
			StatusBackend:  envString("DEMO_STATUS_BACKEND", StatusBackendFile),
			StatusPath:     envString("DEMO_STATUS_PATH", "logs/demo_status.log"),
			FixturesPath:   envString("DEMO_FIXTURES_PATH", ""),
			IdentitiesPath: envString("DEMO_IDENTITIES_PATH", ""),
		},
		Ledger: Ledger{
			Backend:        envString("LEDGER_BACKEND", LedgerBackendMemory),
			ConfigPath:     envString("FABRIC_CONFIG_PATH", ""),
			Channel:        envString("FABRIC_CHANNEL", ""),
			Contract:       envString("FABRIC_CONTRACT", ""),
			WalletPath:     envString("FABRIC_WALLET_PATH", "wallet"),
			EventFilter:    envString("FABRIC_EVENT_FILTER", ".*"),
			CreateFunction: envString("FABRIC_CREATE_FUNCTION", "create_asset"),
		},
		Redis: RedisConfig{
			URL:          envString("REDIS_URL", ""),
			PoolSize:     intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationVar("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationVar("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationVar("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:          envString("DATABASE_URL", ""),
			MaxOpenConns: intVar("DATABASE_MAX_OPEN_CONNS", 5),
			MaxIdleConns: intVar("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Kafka: KafkaConfig{
			Brokers:     envList("KAFKA_BROKERS"),
			StatusTopic: envString("KAFKA_STATUS_TOPIC", "custodian.demo.status"),
		},
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Demo.StatusBackend {
	case StatusBackendFile:
		if c.Demo.StatusPath == "" {
			return errors.New("DEMO_STATUS_PATH is required for the file status backend")
		}
	case StatusBackendRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required for the redis status backend")
		}
	case StatusBackendMemory:
	default:
		return fmt.Errorf("unknown DEMO_STATUS_BACKEND %q", c.Demo.StatusBackend)
	}

	switch c.Ledger.Backend {
	case LedgerBackendMemory:
	case LedgerBackendFabric:
		if c.Ledger.ConfigPath == "" || c.Ledger.Channel == "" || c.Ledger.Contract == "" {
			return errors.New("FABRIC_CONFIG_PATH, FABRIC_CHANNEL and FABRIC_CONTRACT are required for the fabric ledger")
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.Ledger.Backend)
	}

	if c.Demo.Authority == "" {
		return errors.New("DEMO_AUTHORITY must not be empty")
	}
	return nil
}
