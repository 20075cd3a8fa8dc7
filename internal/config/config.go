// Package config loads paddock settings from a YAML file and PADDOCK_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// defaultLockTTL matches the session manager's default distributed lock TTL.
const defaultLockTTL = 30 * time.Second

// EnvPrefix prefixes every environment override, e.g. PADDOCK_SERVER_ADDR.
const EnvPrefix = "PADDOCK_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the full paddock configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	API    APIConfig    `mapstructure:"api"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig configures `paddock serve`.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
}

// APIConfig configures the racing-statistics API client.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	Burst     int           `mapstructure:"burst"`
	UserAgent string        `mapstructure:"user_agent"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend    string        `mapstructure:"backend"`
	Path       string        `mapstructure:"path"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	TTL        time.Duration `mapstructure:"ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, sessions are sealed
	// before they reach the backend.
	EncryptionKey string `mapstructure:"encryption_key"`
	// PreviousKeys still decrypt sessions sealed before a key rotation.
	PreviousKeys []string `mapstructure:"previous_keys"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		API: APIConfig{
			BaseURL:   "https://api.jolpi.ca/ergast/f1/current/",
			Timeout:   15 * time.Second,
			RateLimit: 4,
			Burst:     1,
			UserAgent: "paddock",
		},
		Store: StoreConfig{
			Backend:    BackendMemory,
			Path:       ".paddock/sessions",
			SQLitePath: ".paddock/sessions.db",
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "paddock:session:",
				LockTTL: defaultLockTTL,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (optional, a missing file is not an error) and applies
// environment overrides on top of Default.
func Load(path string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}
	applyEnv(raw, os.Environ())

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.Store.Backend == BackendRedis {
		// Fetches run while the session lock is held; the lock must outlive them.
		lockTTL := c.Store.Redis.LockTTL
		if lockTTL <= 0 {
			lockTTL = defaultLockTTL
		}
		if c.API.Timeout <= 0 || c.API.Timeout >= lockTTL {
			return fmt.Errorf("api.timeout (%s) must be set and shorter than store.redis.lock_ttl (%s)", c.API.Timeout, lockTTL)
		}
	}
	return nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnv maps PADDOCK_STORE_REDIS_ADDR=x to raw["store"]["redis"]["addr"]=x.
// Keys are matched against the config layout so underscores inside a field
// name (base_url, lock_ttl) survive.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path, ok := envPaths[strings.TrimPrefix(key, EnvPrefix)]
		if !ok {
			continue
		}
		setPath(raw, path, value)
	}
}

var envPaths = buildEnvPaths()

func buildEnvPaths() map[string][]string {
	layout := map[string][]string{
		"server":      {"addr", "shutdown_timeout", "secure_cookies"},
		"api":         {"base_url", "timeout", "rate_limit", "burst", "user_agent"},
		"store":       {"backend", "path", "sqlite_path", "ttl", "encryption_key"},
		"store.redis": {"addr", "password", "db", "prefix", "lock_ttl"},
		"log":         {"level", "json"},
	}
	paths := make(map[string][]string)
	for section, fields := range layout {
		parent := strings.Split(section, ".")
		for _, f := range fields {
			p := append(append([]string{}, parent...), f)
			paths[strings.ToUpper(strings.Join(p, "_"))] = p
		}
	}
	return paths
}

func setPath(m map[string]any, path []string, value string) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}
