package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Scheduler.MaxParallelTasks)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("MAX_PARALLEL_TASKS", "5")
	t.Setenv("TASK_TIMEOUT", "90s")
	t.Setenv("SOURCES_ENABLED", "openalex, crossref")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Scheduler.MaxParallelTasks)
	assert.Equal(t, 90*time.Second, cfg.Scheduler.TaskTimeout)
	assert.Equal(t, []string{"openalex", "crossref"}, cfg.Sources.Enabled)
}

func TestLoadForcesMockWithoutAPIKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
}

func TestLoadMemoryToggleOverridesRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv(EnvMemoryStore, "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoadMockToggleOverridesProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv(EnvLLMMock, "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "lots")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "etcd"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scheduler.MaxParallelTasks = 0
	assert.Error(t, cfg.Validate())
}
