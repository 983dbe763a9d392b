package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/conduit-lang/schemascan/internal/engine"
)

// configNames are the file names searched for, in order
var configNames = []string{"schemascan.yaml", "schemascan.yml"}

// Config represents the scanner configuration
type Config struct {
	Naming          string         `mapstructure:"naming"`
	StrictTags      bool           `mapstructure:"strict_tags"`
	StrictOverloads bool           `mapstructure:"strict_overloads"`
	Wrappers        WrappersConfig `mapstructure:"wrappers"`
	Log             LogConfig      `mapstructure:"log"`
	Cache           CacheConfig    `mapstructure:"cache"`
	Output          OutputConfig   `mapstructure:"output"`
}

// WrappersConfig extends the built-in wrapper registry
type WrappersConfig struct {
	Extra []WrapperConfig `mapstructure:"extra"`
}

// WrapperConfig registers one additional wrapper shape
type WrapperConfig struct {
	Name  string `mapstructure:"name"`
	Kind  string `mapstructure:"kind"`
	Arity int    `mapstructure:"arity"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// CacheConfig represents model cache configuration
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig represents the Redis cache backend connection
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Load loads the configuration. An explicit path must exist; otherwise
// schemascan.yaml is searched for from the working directory upwards and
// defaults apply when none is found. SCHEMASCAN_* environment variables
// override file values (SCHEMASCAN_CACHE_BACKEND for cache.backend).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("naming", string(engine.NamingIdentity))
	v.SetDefault("strict_tags", false)
	v.SetDefault("strict_overloads", false)
	v.SetDefault("wrappers.extra", []map[string]interface{}{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.prefix", "schemascan:")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("output.format", "json")

	v.SetEnvPrefix("SCHEMASCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if found, err := FindConfigFile("."); err == nil {
			path = found
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// FindConfigFile walks up from start looking for schemascan.yaml or
// schemascan.yml
func FindConfigFile(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found", configNames[0])
		}
		dir = parent
	}
}

// EngineOptions maps the configuration onto engine options
func (c *Config) EngineOptions(logger *zap.Logger) (engine.Options, error) {
	opts := engine.DefaultOptions()
	if logger != nil {
		opts.Logger = logger
	}

	naming, err := engine.ParseNamingStrategy(c.Naming)
	if err != nil {
		return opts, err
	}
	opts.Naming = naming
	opts.StrictTags = c.StrictTags
	opts.StrictOverloads = c.StrictOverloads

	for _, w := range c.Wrappers.Extra {
		kind, err := engine.ParseWrapperKind(w.Kind)
		if err != nil {
			return opts, fmt.Errorf("wrappers.extra %s: %w", w.Name, err)
		}
		opts.Wrappers.Register(engine.WrapperShape{Name: w.Name, Arity: w.Arity, Kind: kind})
	}

	return opts, nil
}

// Fingerprint identifies the settings that change scan output. Models
// cached under one fingerprint are not valid under another.
func (c *Config) Fingerprint() string {
	data, _ := json.Marshal(struct {
		Naming          string
		StrictTags      bool
		StrictOverloads bool
		Wrappers        []WrapperConfig
	}{c.Naming, c.StrictTags, c.StrictOverloads, c.Wrappers.Extra})
	return string(data)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := engine.ParseNamingStrategy(cfg.Naming); err != nil {
		return fmt.Errorf("naming: %w", err)
	}

	for i, w := range cfg.Wrappers.Extra {
		if w.Name == "" {
			return fmt.Errorf("wrappers.extra[%d]: name is required", i)
		}
		if w.Arity < 0 {
			return fmt.Errorf("wrappers.extra[%d]: arity must not be negative, got: %d", i, w.Arity)
		}
		if _, err := engine.ParseWrapperKind(w.Kind); err != nil {
			return fmt.Errorf("wrappers.extra[%d]: %w", i, err)
		}
	}

	switch cfg.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be one of none, memory, redis, got: %s", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when cache.backend is redis")
	}

	switch cfg.Output.Format {
	case "json", "jsonschema", "table":
	default:
		return fmt.Errorf("output.format must be one of json, jsonschema, table, got: %s", cfg.Output.Format)
	}
	return nil
}
