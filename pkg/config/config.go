// Package config contains ScholarForge's environment-driven configuration.
// Every value has a built-in default so a bare process starts in mock mode
// with the in-memory store.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Env toggles consulted by the core. Both are boolean string presence.
const (
	// EnvMemoryStore forces the in-memory State Store backend ("1"/"0").
	EnvMemoryStore = "SCHOLARFORGE_MEMORY_STORE"
	// EnvLLMMock forces the deterministic mock LLM provider ("1"/"0").
	EnvLLMMock = "SCHOLARFORGE_LLM_MOCK"
)

// Config is the full process configuration.
type Config struct {
	HTTPPort  string
	Store     StoreConfig
	LLM       LLMConfig
	Sources   SourcesConfig
	Scheduler SchedulerConfig
}

// StoreConfig selects and configures the State Store backend.
type StoreConfig struct {
	// Backend is "memory" or "redis".
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LLMConfig configures the LLM gateway.
type LLMConfig struct {
	// Provider is "mock", "anthropic", or "openai".
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64

	// MaxConcurrent bounds in-flight provider calls; extra calls queue.
	MaxConcurrent int
	// MaxAttempts bounds the retry loop (first try included).
	MaxAttempts int
	// RetryBase is the initial backoff; doubled per attempt.
	RetryBase time.Duration
}

// SourcesConfig configures the literature source connectors.
type SourcesConfig struct {
	// Enabled lists connector names ("semantic_scholar", "openalex",
	// "crossref"). Empty disables external search; the literature agent
	// still succeeds with zero papers.
	Enabled        []string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
	MaxAttempts    int
	SearchLimit    int
}

// SchedulerConfig configures task graph execution.
type SchedulerConfig struct {
	// MaxParallelTasks is the default parallelism; requests may override
	// it via preferences.
	MaxParallelTasks int
	// TaskTimeout bounds a single agent execution.
	TaskTimeout time.Duration
	// RetryBase is the initial retry backoff; doubled per attempt.
	RetryBase time.Duration
	// OutputTTL is the State Store TTL for task outputs: the job's
	// expected duration plus a safety margin.
	OutputTTL time.Duration
	// JobDeadline is the optional overall job deadline (0 = none).
	JobDeadline time.Duration
	// GracefulShutdownTimeout bounds the drain during shutdown.
	GracefulShutdownTimeout time.Duration
}

// Default returns the built-in configuration: mock LLM, memory store,
// all connectors enabled.
func Default() *Config {
	return &Config{
		HTTPPort: "8080",
		Store: StoreConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
		LLM: LLMConfig{
			Provider:      "mock",
			Model:         "claude-sonnet-4-5",
			MaxTokens:     4096,
			Temperature:   0.7,
			MaxConcurrent: 4,
			MaxAttempts:   3,
			RetryBase:     1 * time.Second,
		},
		Sources: SourcesConfig{
			Enabled:        []string{"semantic_scholar", "openalex", "crossref"},
			RequestTimeout: 20 * time.Second,
			CacheTTL:       24 * time.Hour,
			MaxAttempts:    3,
			SearchLimit:    20,
		},
		Scheduler: SchedulerConfig{
			MaxParallelTasks:        3,
			TaskTimeout:             300 * time.Second,
			RetryBase:               1 * time.Second,
			OutputTTL:               1 * time.Hour,
			JobDeadline:             0,
			GracefulShutdownTimeout: 30 * time.Second,
		},
	}
}

// Load builds the configuration from the environment on top of defaults.
func Load() (*Config, error) {
	cfg := Default()

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)

	// Store backend: explicit REDIS_ADDR selects redis unless the memory
	// toggle forces the in-process backend.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Store.Backend = "redis"
		cfg.Store.RedisAddr = addr
	}
	cfg.Store.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Store.RedisPassword)
	if v, err := getEnvInt("REDIS_DB", cfg.Store.RedisDB); err != nil {
		return nil, err
	} else {
		cfg.Store.RedisDB = v
	}
	if boolToggle(EnvMemoryStore) {
		cfg.Store.Backend = "memory"
	}

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = firstEnv("LLM_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY")
	if v, err := getEnvInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens); err != nil {
		return nil, err
	} else {
		cfg.LLM.MaxTokens = v
	}
	if v, err := getEnvFloat("LLM_TEMPERATURE", cfg.LLM.Temperature); err != nil {
		return nil, err
	} else {
		cfg.LLM.Temperature = v
	}
	if v, err := getEnvInt("LLM_MAX_CONCURRENT", cfg.LLM.MaxConcurrent); err != nil {
		return nil, err
	} else {
		cfg.LLM.MaxConcurrent = v
	}
	if v, err := getEnvInt("LLM_MAX_ATTEMPTS", cfg.LLM.MaxAttempts); err != nil {
		return nil, err
	} else {
		cfg.LLM.MaxAttempts = v
	}
	if boolToggle(EnvLLMMock) || cfg.LLM.APIKey == "" {
		cfg.LLM.Provider = "mock"
	}

	if v := os.Getenv("SOURCES_ENABLED"); v != "" {
		cfg.Sources.Enabled = splitCSV(v)
	}
	if v, err := getEnvDuration("SOURCE_TIMEOUT", cfg.Sources.RequestTimeout); err != nil {
		return nil, err
	} else {
		cfg.Sources.RequestTimeout = v
	}
	if v, err := getEnvDuration("SOURCE_CACHE_TTL", cfg.Sources.CacheTTL); err != nil {
		return nil, err
	} else {
		cfg.Sources.CacheTTL = v
	}
	if v, err := getEnvInt("SOURCE_SEARCH_LIMIT", cfg.Sources.SearchLimit); err != nil {
		return nil, err
	} else {
		cfg.Sources.SearchLimit = v
	}

	if v, err := getEnvInt("MAX_PARALLEL_TASKS", cfg.Scheduler.MaxParallelTasks); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.MaxParallelTasks = v
	}
	if v, err := getEnvDuration("TASK_TIMEOUT", cfg.Scheduler.TaskTimeout); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.TaskTimeout = v
	}
	if v, err := getEnvDuration("TASK_RETRY_BASE", cfg.Scheduler.RetryBase); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.RetryBase = v
	}
	if v, err := getEnvDuration("TASK_OUTPUT_TTL", cfg.Scheduler.OutputTTL); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.OutputTTL = v
	}
	if v, err := getEnvDuration("JOB_DEADLINE", cfg.Scheduler.JobDeadline); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.JobDeadline = v
	}
	if v, err := getEnvDuration("GRACEFUL_SHUTDOWN_TIMEOUT", cfg.Scheduler.GracefulShutdownTimeout); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.GracefulShutdownTimeout = v
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Store.Backend != "memory" && c.Store.Backend != "redis" {
		return fmt.Errorf("store backend must be memory or redis, got %q", c.Store.Backend)
	}
	switch c.LLM.Provider {
	case "mock", "anthropic", "openai":
	default:
		return fmt.Errorf("llm provider must be mock, anthropic, or openai, got %q", c.LLM.Provider)
	}
	if c.LLM.Provider != "mock" && c.LLM.APIKey == "" {
		return fmt.Errorf("llm provider %q requires an API key", c.LLM.Provider)
	}
	if c.LLM.MaxConcurrent < 1 {
		return fmt.Errorf("llm max concurrent must be >= 1, got %d", c.LLM.MaxConcurrent)
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm max attempts must be >= 1, got %d", c.LLM.MaxAttempts)
	}
	if c.Scheduler.MaxParallelTasks < 1 {
		return fmt.Errorf("max parallel tasks must be >= 1, got %d", c.Scheduler.MaxParallelTasks)
	}
	if c.Scheduler.TaskTimeout <= 0 {
		return fmt.Errorf("task timeout must be positive, got %v", c.Scheduler.TaskTimeout)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func boolToggle(key string) bool {
	return os.Getenv(key) == "1"
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
