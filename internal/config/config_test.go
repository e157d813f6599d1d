package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Kind != SourceLLM {
		t.Errorf("source kind = %q, want %q", cfg.Source.Kind, SourceLLM)
	}
	if cfg.Acquire.Count != 10 {
		t.Errorf("acquire count = %d, want 10", cfg.Acquire.Count)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("cache ttl = %v, want 5m", cfg.Cache.TTL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assess.yaml")
	data := []byte(`
log:
  level: debug
source:
  kind: http
  url: https://questions.example.com
acquire:
  count: 12
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Source.URL != "https://questions.example.com" {
		t.Errorf("source url = %q", cfg.Source.URL)
	}
	if cfg.Acquire.Count != 12 {
		t.Errorf("acquire count = %d, want 12", cfg.Acquire.Count)
	}
	// Untouched keys keep their defaults.
	if cfg.Acquire.Attempts != 2 {
		t.Errorf("acquire attempts = %d, want default 2", cfg.Acquire.Attempts)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assess.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASSESS_LOG_LEVEL", "warn")
	t.Setenv("ASSESS_SOURCE_KIND", "mock")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn (env wins)", cfg.Log.Level)
	}
	if cfg.Source.Kind != SourceMock {
		t.Errorf("source kind = %q, want mock", cfg.Source.Kind)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{name: "bad source kind", mutate: func(c *Config) { c.Source.Kind = "ftp" }, wantErr: true},
		{name: "http without url", mutate: func(c *Config) { c.Source.Kind = SourceHTTP }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Cache.Backend = CacheRedis }, wantErr: true},
		{name: "zero count", mutate: func(c *Config) { c.Acquire.Count = 0 }, wantErr: true},
		{name: "redis with addr", mutate: func(c *Config) {
			c.Cache.Backend = CacheRedis
			c.Cache.Redis = "localhost:6379"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
