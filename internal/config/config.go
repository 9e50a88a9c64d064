package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
	"github.com/baditaflorin/go_duplicate_questions/internal/warmup"
)

// Server holds HTTP-layer configuration.
type Server struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxRequestSize int           `yaml:"max_request_size"`
	Concurrency    int           `yaml:"concurrency"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Log configures the structured logger.
type Log struct {
	File string `yaml:"file"`
	JSON bool   `yaml:"json"`
}

// Config is the full service configuration.
type Config struct {
	Server          Server              `yaml:"server"`
	Log             Log                 `yaml:"log"`
	DBPath          string              `yaml:"db_path"`
	ReindexInterval time.Duration       `yaml:"reindex_interval"`
	Engine          domain.Options      `yaml:"engine"`
	FastTokenizer   bool                `yaml:"fast_tokenizer"`
	WarmUp          bool                `yaml:"warm_up"`
	Warmup          warmup.WarmupConfig `yaml:"warmup"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxRequestSize: 1024 * 1024,
			Concurrency:    0,
			RequestTimeout: 5 * time.Second,
		},
		Log: Log{
			JSON: true,
		},
		DBPath:          "questions.db",
		ReindexInterval: 5 * time.Minute,
		Engine:          domain.DefaultOptions(),
		WarmUp:          true,
		Warmup:          warmup.DefaultWarmupConfig(),
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// an optional .env file in the working directory, and DUPES_* environment variables,
// in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unusable settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("max request size must be positive")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.ReindexInterval < 0 {
		return fmt.Errorf("reindex interval cannot be negative")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.Server.Port = getInt("DUPES_PORT", c.Server.Port)
	c.Server.ReadTimeout = getDuration("DUPES_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDuration("DUPES_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.MaxRequestSize = getInt("DUPES_MAX_REQUEST_SIZE", c.Server.MaxRequestSize)
	c.DBPath = getEnv("DUPES_DB_PATH", c.DBPath)
	c.ReindexInterval = getDuration("DUPES_REINDEX_INTERVAL", c.ReindexInterval)
	c.Log.File = getEnv("DUPES_LOG_FILE", c.Log.File)
	c.Log.JSON = getBool("DUPES_LOG_JSON", c.Log.JSON)
	c.Engine.MinLength = getInt("DUPES_MIN_LENGTH", c.Engine.MinLength)
	c.Engine.StopWordMinLength = getInt("DUPES_STOPWORD_MIN_LENGTH", c.Engine.StopWordMinLength)
	c.Engine.SimilarityThreshold = getInt("DUPES_THRESHOLD", c.Engine.SimilarityThreshold)
	c.Engine.MaxResults = getInt("DUPES_MAX_RESULTS", c.Engine.MaxResults)
	c.Engine.FilterCorpusTokens = getBool("DUPES_FILTER_CORPUS_TOKENS", c.Engine.FilterCorpusTokens)
	c.FastTokenizer = getBool("DUPES_FAST_TOKENIZER", c.FastTokenizer)
	c.WarmUp = getBool("DUPES_WARM_UP", c.WarmUp)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
