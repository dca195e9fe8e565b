package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/leadscout/internal/config"
)

func TestConfigTemplateMatchesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(configTemplate), 0o644))

	loaded, err := config.LoadFile(dir)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, config.Default(dir), *loaded)
}

func TestLoadConfig_Flags(t *testing.T) {
	dir := t.TempDir()
	configDir, providerFlag, modelFlag, dbPath = dir, "gemini", "gemini-2.5-flash", filepath.Join(dir, "other.db")
	t.Cleanup(func() { configDir, providerFlag, modelFlag, dbPath = "", "", "", "" })

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Provider)
	assert.Equal(t, "gemini-2.5-flash", c.DiscoveryModel)
	assert.Equal(t, "gemini-2.5-flash", c.ValidationModel)
	assert.Equal(t, filepath.Join(dir, "other.db"), c.StoragePath)

	providerFlag = "openai"
	_, err = loadConfig()
	assert.Error(t, err)
}
