// Package config loads engine settings from defaults, an optional
// YAML file, and ASSESS_-prefixed environment variables, in that
// order of precedence (later layers win).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Source kinds.
const (
	SourceHTTP = "http"
	SourceLLM  = "llm"
	SourceMock = "mock"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the full engine configuration.
type Config struct {
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	DB struct {
		// Path is the sqlite file; empty selects the XDG default.
		Path string `koanf:"path"`
	} `koanf:"db"`

	Source struct {
		// Kind selects the question source: http, llm, or mock.
		Kind    string        `koanf:"kind"`
		URL     string        `koanf:"url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"source"`

	Cache struct {
		// Backend selects the fast tier: memory or redis.
		Backend    string        `koanf:"backend"`
		Redis      string        `koanf:"redis"`
		TTL        time.Duration `koanf:"ttl"`
		DurableTTL time.Duration `koanf:"durablettl"`
	} `koanf:"cache"`

	Acquire struct {
		Count    int           `koanf:"count"`
		Attempts int           `koanf:"attempts"`
		Backoff  time.Duration `koanf:"backoff"`
	} `koanf:"acquire"`

	Assessment struct {
		Freshness time.Duration `koanf:"freshness"`
		Autosave  time.Duration `koanf:"autosave"`
	} `koanf:"assessment"`

	Report struct {
		URL string `koanf:"url"`
	} `koanf:"report"`
}

// Default returns the standard configuration.
func Default() Config {
	var c Config
	c.Log.Level = "info"
	c.Source.Kind = SourceLLM
	c.Source.Timeout = 30 * time.Second
	c.Cache.Backend = CacheMemory
	c.Cache.TTL = 5 * time.Minute
	c.Cache.DurableTTL = 24 * time.Hour
	c.Acquire.Count = 10
	c.Acquire.Attempts = 2
	c.Acquire.Backoff = time.Second
	c.Assessment.Freshness = 3 * time.Hour
	c.Assessment.Autosave = 30 * time.Second
	return c
}

// Load builds the configuration. path may be empty, in which case the
// ASSESS_CONFIG environment variable is consulted; a missing file is
// only an error when explicitly requested.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	explicit := path != ""
	if path == "" {
		path = os.Getenv("ASSESS_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !os.IsNotExist(err) {
				return cfg, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.Provider("ASSESS_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "ASSESS_")), "_", ".")
	}), nil)
	if err != nil {
		return cfg, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	switch c.Source.Kind {
	case SourceHTTP, SourceLLM, SourceMock:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Source.Kind == SourceHTTP && c.Source.URL == "" {
		return fmt.Errorf("source kind http requires source.url")
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis == "" {
		return fmt.Errorf("cache backend redis requires cache.redis address")
	}

	if c.Acquire.Count <= 0 {
		return fmt.Errorf("acquire.count must be positive, got %d", c.Acquire.Count)
	}
	if c.Acquire.Attempts <= 0 {
		return fmt.Errorf("acquire.attempts must be positive, got %d", c.Acquire.Attempts)
	}
	return nil
}
