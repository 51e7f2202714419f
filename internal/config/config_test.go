package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir and clears provider env vars.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "AI_PROVIDER",
		"AUTOINSIGHT_AI_PROVIDER", "AUTOINSIGHT_ANTHROPIC_API_KEY", "AUTOINSIGHT_OPENAI_API_KEY",
		"AUTOINSIGHT_MAX_TOKENS", "AUTOINSIGHT_REPORT_DIR"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", c.AIProvider)
	assert.Equal(t, "claude-sonnet-4-20250514", c.AnthropicModel)
	assert.Equal(t, "gpt-4-turbo-preview", c.OpenAIModel)
	assert.Equal(t, 4000, c.MaxTokens)
	assert.InDelta(t, 0.7, c.Temperature, 1e-9)
	assert.Equal(t, 120, c.HTTPTimeoutSec)
	assert.Equal(t, "reports", c.ReportDir)
	assert.Empty(t, c.AnthropicAPIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	t.Setenv("AUTOINSIGHT_AI_PROVIDER", " OpenAI ")
	t.Setenv("AUTOINSIGHT_MAX_TOKENS", "1500")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-env", c.AnthropicAPIKey)
	assert.Equal(t, "openai", c.AIProvider)
	assert.Equal(t, 1500, c.MaxTokens)
}

func TestSaveThenLoad(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	c, err := Load(path)
	require.NoError(t, err, "missing explicit file is not an error")
	require.NoError(t, c.Set("ai_provider", "openai"))
	require.NoError(t, c.Set("openai_model", "gpt-4o"))
	require.NoError(t, c.Set("temperature", "0.25"))
	require.NoError(t, Save(c, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", got.AIProvider)
	assert.Equal(t, "gpt-4o", got.OpenAIModel)
	assert.InDelta(t, 0.25, got.Temperature, 1e-9)
}

func TestLoadMalformedFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai_provider: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSetRejectsUnknownKeysAndBadNumbers(t *testing.T) {
	var c Global
	assert.Error(t, c.Set("retry_max_attempts", "3"))
	assert.Error(t, c.Set("max_tokens", "lots"))
	for _, k := range Keys {
		assert.NoError(t, c.Set(k, "1"), k)
	}
}

func TestRedacted(t *testing.T) {
	c := Global{AnthropicAPIKey: "sk-ant-1234567890", OpenAIAPIKey: "short"}
	r := c.Redacted()
	assert.Equal(t, "sk-a...7890", r.AnthropicAPIKey)
	assert.Equal(t, "****", r.OpenAIAPIKey)
	assert.Equal(t, "sk-ant-1234567890", c.AnthropicAPIKey)
}
