/*
Package config manages the TOML configuration of the leven command.

A missing file yields the built-in defaults; keys absent from a file keep
their defaults. Unknown keys are rejected so typos do not go unnoticed.
*/
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	leven "github.com/canisaugustinus/latin-leven"
	"github.com/canisaugustinus/latin-leven/codec"
	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/server"
)

// Config holds the entire config structure
type Config struct {
	Costs      cost.Config      `toml:"costs"`
	Suggest    SuggestConfig    `toml:"suggest"`
	Search     SearchConfig     `toml:"search"`
	Server     ServerConfig     `toml:"server"`
	Dictionary DictionaryConfig `toml:"dictionary"`
	Log        LogConfig        `toml:"log"`
}

// SuggestConfig is the cost profile behind the "suggest" operation.
type SuggestConfig struct {
	Costs cost.Config `toml:"costs"`
	K     int         `toml:"k"`
}

// SearchConfig has index and search options.
type SearchConfig struct {
	Workers               int     `toml:"workers"` // 0 = GOMAXPROCS
	Parallel              bool    `toml:"parallel"`
	ResultCacheBytes      int64   `toml:"result_cache_bytes"`
	MemoryLimitBytes      int64   `toml:"memory_limit_bytes"`
	MaxConcurrentSearches int64   `toml:"max_concurrent_searches"`
	SearchesPerSecond     float64 `toml:"searches_per_second"`
	SearchBurst           int     `toml:"search_burst"`
	FailFast              bool    `toml:"fail_fast"`
}

// ServerConfig has IPC options.
type ServerConfig struct {
	Codec       string `toml:"codec"`
	DefaultK    int    `toml:"default_k"`
	MaxK        int    `toml:"max_k"`
	MaxQueryLen int    `toml:"max_query_len"`
}

// DictionaryConfig holds word list options.
type DictionaryConfig struct {
	Path     string `toml:"path"`
	MaxWords int    `toml:"max_words"` // 0 = no limit
}

// LogConfig holds logging options.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// Default returns a Config with default values.
func Default() *Config {
	sc := server.DefaultConfig()
	return &Config{
		Costs: cost.DefaultConfig(),
		Suggest: SuggestConfig{
			Costs: cost.SuggestConfig(),
			K:     sc.SuggestK,
		},
		Search: SearchConfig{
			Parallel: true,
		},
		Server: ServerConfig{
			Codec:       codec.Default.Name(),
			DefaultK:    sc.DefaultK,
			MaxK:        sc.MaxK,
			MaxQueryLen: sc.MaxQueryLen,
		},
		Dictionary: DictionaryConfig{
			Path: "latin_words.txt",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: %s: unknown keys: %s", filepath.Base(path), strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as TOML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		return fmt.Errorf("config: encoding: %w", err)
	}
	return f.Close()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := c.Costs.Validate(); err != nil {
		return fmt.Errorf("config: costs: %w", err)
	}
	if err := c.Suggest.Costs.Validate(); err != nil {
		return fmt.Errorf("config: suggest.costs: %w", err)
	}

	s := c.Search
	switch {
	case s.Workers < 0:
		return fmt.Errorf("config: search.workers must be >= 0, got %d", s.Workers)
	case s.ResultCacheBytes < 0, s.MemoryLimitBytes < 0, s.MaxConcurrentSearches < 0, s.SearchBurst < 0:
		return errors.New("config: search limits must be >= 0")
	case s.SearchesPerSecond < 0:
		return fmt.Errorf("config: search.searches_per_second must be >= 0, got %g", s.SearchesPerSecond)
	}

	if _, ok := codec.ByName(c.Server.Codec); !ok {
		return fmt.Errorf("config: server.codec %q is not one of %s", c.Server.Codec, strings.Join(codec.Names(), ", "))
	}
	if c.Server.DefaultK < 1 || c.Server.MaxK < c.Server.DefaultK {
		return fmt.Errorf("config: need 1 <= server.default_k <= server.max_k, got %d and %d", c.Server.DefaultK, c.Server.MaxK)
	}
	if c.Suggest.K < 1 || c.Suggest.K > c.Server.MaxK {
		return fmt.Errorf("config: need 1 <= suggest.k <= server.max_k, got %d and %d", c.Suggest.K, c.Server.MaxK)
	}
	if c.Server.MaxQueryLen < 1 {
		return fmt.Errorf("config: server.max_query_len must be >= 1, got %d", c.Server.MaxQueryLen)
	}

	if c.Dictionary.MaxWords < 0 {
		return fmt.Errorf("config: dictionary.max_words must be >= 0, got %d", c.Dictionary.MaxWords)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return slog.Level(lvl), nil
}

// Codec returns the configured server codec.
func (c *Config) Codec() codec.Codec {
	cd, ok := codec.ByName(c.Server.Codec)
	if !ok {
		return codec.Default
	}
	return cd
}

// IndexOptions translates the search section into index options.
func (c *Config) IndexOptions() []leven.Option {
	s := c.Search
	opts := []leven.Option{leven.WithWorkers(s.Workers)}
	if s.ResultCacheBytes > 0 {
		opts = append(opts, leven.WithResultCache(s.ResultCacheBytes))
	}
	if s.MemoryLimitBytes > 0 {
		opts = append(opts, leven.WithMemoryLimit(s.MemoryLimitBytes))
	}
	if s.MaxConcurrentSearches > 0 {
		opts = append(opts, leven.WithMaxConcurrentSearches(s.MaxConcurrentSearches))
	}
	if s.SearchesPerSecond > 0 {
		opts = append(opts, leven.WithSearchRateLimit(s.SearchesPerSecond, s.SearchBurst))
	}
	if s.FailFast {
		opts = append(opts, leven.WithFailFast())
	}
	return opts
}

// ServerLimits returns the request limits for package server.
func (c *Config) ServerLimits() server.Config {
	return server.Config{
		DefaultK:    c.Server.DefaultK,
		MaxK:        c.Server.MaxK,
		SuggestK:    c.Suggest.K,
		MaxQueryLen: c.Server.MaxQueryLen,
		Parallel:    c.Search.Parallel,
	}
}
