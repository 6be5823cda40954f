package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"` // apply embedded migrations at startup
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

type LedgerConfig struct {
	Storage       string        `mapstructure:"storage"`        // postgres, memory
	LockBackend   string        `mapstructure:"lock_backend"`   // local, redis
	LockTimeout   time.Duration `mapstructure:"lock_timeout"`   // bounded wait for account locks
	Timezone      string        `mapstructure:"timezone"`       // calendar for daily/monthly limit windows
	EnforceLimits bool          `mapstructure:"enforce_limits"` // false = limit gate is a no-op
	Fixtures      string        `mapstructure:"fixtures"`       // YAML seed file for the memory store
}

// Location resolves the ledger timezone used for limit aggregation windows.
func (l LedgerConfig) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading ledger timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WLG_ (Wallet LedGer).
// Nested keys use underscore: WLG_DATABASE_HOST, WLG_LEDGER_LOCK_TIMEOUT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "wallet_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "transaction_settled")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "1h")
	v.SetDefault("jwt.issuer", "wallet-ledger")
	v.SetDefault("ledger.storage", StoragePostgres)
	v.SetDefault("ledger.lock_backend", LockLocal)
	v.SetDefault("ledger.lock_timeout", "3s")
	v.SetDefault("ledger.timezone", "UTC")
	v.SetDefault("ledger.enforce_limits", true)
	v.SetDefault("ledger.fixtures", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// WLG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("WLG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional, env vars can suffice
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Ledger.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid ledger.storage %q: must be %s or %s", c.Ledger.Storage, StoragePostgres, StorageMemory)
	}
	switch c.Ledger.LockBackend {
	case LockLocal, LockRedis:
	default:
		return fmt.Errorf("invalid ledger.lock_backend %q: must be %s or %s", c.Ledger.LockBackend, LockLocal, LockRedis)
	}
	if c.Ledger.LockBackend == LockRedis && !c.Redis.Enabled {
		return fmt.Errorf("ledger.lock_backend %q requires redis.enabled", LockRedis)
	}
	if c.Ledger.LockTimeout <= 0 {
		return fmt.Errorf("ledger.lock_timeout must be positive")
	}
	if _, err := c.Ledger.Location(); err != nil {
		return err
	}
	return nil
}
