package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "chromium", cfg.Browser)
	assert.False(t, cfg.Headed)
	assert.Equal(t, "saucedemo", cfg.DefaultSite)
	assert.Equal(t, 5*time.Minute, cfg.SelectorTTL)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heyq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
browser: firefox
headed: true
default_site: flipkart
selector_ttl: 30s
llm:
  enabled: true
  provider: openai
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.True(t, cfg.Headed)
	assert.Equal(t, "flipkart", cfg.DefaultSite)
	assert.Equal(t, 30*time.Second, cfg.SelectorTTL)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HEYQ_DEFAULT_SITE", "amazon")
	t.Setenv("HEYQ_HEADED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "amazon", cfg.DefaultSite)
	assert.True(t, cfg.Headed)
}

func TestLoadMissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
