// Package config loads parlgraph configuration: defaults, then an optional
// YAML file, then environment variables (optionally from a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Neo4j   Neo4jConfig   `yaml:"neo4j"`
	NATS    NATSConfig    `yaml:"nats"`
	Qdrant  QdrantConfig  `yaml:"qdrant"`
	Ollama  OllamaConfig  `yaml:"ollama"`
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// Neo4jConfig configures the graph store connection.
type Neo4jConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// FullTextIndex names the statement full-text index.
	FullTextIndex string `yaml:"fulltext_index"`
}

// NATSConfig configures the request/reply responder. Empty URL disables it.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	QueueGroup    string `yaml:"queue_group"`
}

// QdrantConfig configures semantic statement search. Empty URL disables it.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
}

// OllamaConfig configures query embeddings for semantic search.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Port       string  `yaml:"port"`
	CORSOrigin string  `yaml:"cors_origin"`
	RateLimit  float64 `yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst  int     `yaml:"rate_burst"`
}

// EngineConfig configures metric computation.
type EngineConfig struct {
	QuestionPeriodMarker string        `yaml:"question_period_marker"`
	Workers              int           `yaml:"workers"`
	QueryTimeout         time.Duration `yaml:"query_timeout"`
}

// BreakerConfig configures the graph store circuit breaker.
type BreakerConfig struct {
	FailThreshold int           `yaml:"fail_threshold"`
	Timeout       time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with local-development defaults.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URL:           "neo4j://localhost:7687",
			User:          "neo4j",
			Password:      "password",
			FullTextIndex: "statement_content",
		},
		NATS: NATSConfig{
			SubjectPrefix: "parlgraph",
			QueueGroup:    "parlgraph",
		},
		Qdrant: QdrantConfig{
			Collection: "statements",
		},
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "nomic-embed-text",
		},
		HTTP: HTTPConfig{
			Port:       "8080",
			CORSOrigin: "*",
			RateLimit:  50,
			RateBurst:  100,
		},
		Engine: EngineConfig{
			QuestionPeriodMarker: "Oral Questions",
			Workers:              8,
			QueryTimeout:         15 * time.Second,
		},
		Breaker: BreakerConfig{
			FailThreshold: 5,
			Timeout:       30 * time.Second,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Neo4j.URL == "" {
		return fmt.Errorf("neo4j.url is required")
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("http.port is required")
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive")
	}
	if c.Engine.QueryTimeout <= 0 {
		return fmt.Errorf("engine.query_timeout must be positive")
	}
	if c.Engine.QuestionPeriodMarker == "" {
		return fmt.Errorf("engine.question_period_marker is required")
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative")
	}
	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("nats.subject_prefix is required when nats.url is set")
	}
	if c.Qdrant.URL != "" && (c.Qdrant.Collection == "" || c.Ollama.URL == "") {
		return fmt.Errorf("qdrant.collection and ollama.url are required when qdrant.url is set")
	}
	return nil
}

// SemanticEnabled reports whether semantic statement search is configured.
func (c *Config) SemanticEnabled() bool { return c.Qdrant.URL != "" }

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, the YAML file at path
// (if non-empty), then environment overrides. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Neo4j.URL = envOr("NEO4J_URL", c.Neo4j.URL)
	c.Neo4j.User = envOr("NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Password = envOr("NEO4J_PASS", c.Neo4j.Password)
	c.Neo4j.Database = envOr("NEO4J_DATABASE", c.Neo4j.Database)
	c.NATS.URL = envOr("NATS_URL", c.NATS.URL)
	c.Qdrant.URL = envOr("QDRANT_URL", c.Qdrant.URL)
	c.Qdrant.Collection = envOr("QDRANT_COLLECTION", c.Qdrant.Collection)
	c.Ollama.URL = envOr("OLLAMA_URL", c.Ollama.URL)
	c.Ollama.Model = envOr("OLLAMA_MODEL", c.Ollama.Model)
	c.HTTP.Port = envOr("PORT", c.HTTP.Port)
	c.HTTP.CORSOrigin = envOr("CORS_ORIGIN", c.HTTP.CORSOrigin)
	c.Engine.QuestionPeriodMarker = envOr("QUESTION_PERIOD_MARKER", c.Engine.QuestionPeriodMarker)

	if v := os.Getenv("ENGINE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENGINE_WORKERS: %w", err)
		}
		c.Engine.Workers = n
	}
	if v := os.Getenv("QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QUERY_TIMEOUT: %w", err)
		}
		c.Engine.QueryTimeout = d
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
