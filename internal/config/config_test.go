package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.scryfall.com", cfg.CatalogBaseURL)
	assert.Equal(t, 1, cfg.TokenCount)
	assert.True(t, cfg.LandVariety)

	_, err = os.Stat(GetConfigFilePath())
	assert.NoError(t, err, "config file written on first load")
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "deckpress", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("workers = 8\ntoken_count = 2\n"), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 2, cfg.TokenCount)
	assert.Equal(t, "https://api.scryfall.com", cfg.CatalogBaseURL, "absent keys keep defaults")
}

func TestLoadConfigRejectsInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "deckpress", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("workers = [broken"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
}
