package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronaldozero7/HeyQ/internal/pages"
)

func writeSecrets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndLookup(t *testing.T) {
	path := writeSecrets(t, `
sites:
  saucedemo:
    username: standard_user
    password: secret_sauce
  flipkart:
    username: qa@example.com
    password: hunter2
`)
	store, err := Load(path)
	require.NoError(t, err)

	creds, ok := store.For(pages.SiteSauceDemo)
	require.True(t, ok)
	assert.Equal(t, "standard_user", creds.Username)
	assert.Equal(t, "secret_sauce", creds.Password)

	_, ok = store.For(pages.SiteAmazon)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEmptyStore(t *testing.T) {
	store := Empty()
	_, ok := store.For(pages.SiteSauceDemo)
	assert.False(t, ok)
	assert.Empty(t, store.AllValues())
}

func TestAllValues(t *testing.T) {
	path := writeSecrets(t, `
sites:
  saucedemo:
    username: standard_user
    password: secret_sauce
`)
	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"secret_sauce"}, store.AllValues())
}
