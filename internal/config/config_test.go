package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Store.RedisTTL)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.7, cfg.LLM.Generation.Temperature, 1e-9)
	assert.InDelta(t, 1.0, cfg.LLM.Generation.TopP, 1e-9)
	assert.Equal(t, 1024, cfg.LLM.Generation.MaxTokens)
	assert.Equal(t, 10, cfg.Chat.HistoryWindow)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.MinIO.Enabled)
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
  allowed_origins: ["https://lance.dev"]
store:
  driver: sqlite
  redis_ttl: 24h
database:
  dsn: "file::memory:"
chat:
  history_window: 4
profile:
  name: Ana
  quick_questions:
    - question: "Hi?"
      answer: "Hello!"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://lance.dev"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Store.RedisTTL)
	assert.Equal(t, 4, cfg.Chat.HistoryWindow)
	assert.Equal(t, "Ana", cfg.Profile.Name)
	require.Len(t, cfg.Profile.QuickQuestions, 1)
	assert.Equal(t, "Hello!", cfg.Profile.QuickQuestions[0].Answer)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("CHAT_HISTORY_WINDOW", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 3, cfg.Chat.HistoryWindow)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Store: StoreConfig{Driver: "memory"}, Chat: ChatConfig{HistoryWindow: 10}}
	require.NoError(t, base.Validate())

	unknown := base
	unknown.Store.Driver = "mongo"
	assert.Error(t, unknown.Validate())

	noDSN := base
	noDSN.Store.Driver = "postgres"
	assert.Error(t, noDSN.Validate())

	withDSN := noDSN
	withDSN.Database.DSN = "host=localhost"
	assert.NoError(t, withDSN.Validate())

	negative := base
	negative.Chat.HistoryWindow = -1
	assert.Error(t, negative.Validate())
}
