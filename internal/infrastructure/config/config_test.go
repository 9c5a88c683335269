package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := writeFile(t, dir, "config.yaml", `
database:
  type: sqlite
  path: /var/lib/fc/calc.db
calculator:
  dataset: data/space-age.json
  default_fuel: wood
server:
  enabled: true
  rate_limit:
    requests: 5
`)
	t.Setenv("FC_LOGGING_LEVEL", "debug")
	t.Setenv("FC_CALCULATOR_DEFAULT_FUEL", "solid-fuel")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/fc/calc.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "solid-fuel", cfg.Calculator.DefaultFuel)
	assert.Equal(t, "data/space-age.json", cfg.Calculator.Dataset)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 5.0, cfg.Server.RateLimit.Requests)
	assert.Equal(t, 40, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "/tmp/factorio-calc.sock", cfg.Daemon.SocketPath)
	assert.Equal(t, 10*time.Second, cfg.Daemon.ShutdownTimeout)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unknown database", "database:\n  type: mysql\n", "Type"},
		{"unknown log level", "logging:\n  level: loud\n", "Level"},
		{"unknown dataset format", "calculator:\n  dataset_format: xml\n", "DatasetFormat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("HOME", dir)
			path := writeFile(t, dir, "config.yaml", tt.content)

			_, err := config.LoadConfig(path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadConfigOrDefault_FallsBackOnError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := writeFile(t, dir, "config.yaml", "database: [broken")

	cfg := config.LoadConfigOrDefault(path)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "coal", cfg.Calculator.DefaultFuel)
	assert.Equal(t, filepath.Join(dir, ".factorio-calc", "calculator.db"), cfg.Database.Path)
}

func TestUserConfigHandler_Preferences(t *testing.T) {
	// Arrange
	handler, err := config.NewUserConfigHandlerAt(filepath.Join(t.TempDir(), "prefs", "config.json"))
	require.NoError(t, err)

	// Act
	empty, err := handler.Load()
	require.NoError(t, err)
	require.NoError(t, handler.SetDefaultFuel("wood"))
	require.NoError(t, handler.SetExcluded("wooden-chest", true))
	require.NoError(t, handler.SetExcluded("pipe", true))
	require.NoError(t, handler.SetExcluded("wooden-chest", false))
	require.NoError(t, handler.SetDefaultConfiguration("smelting", "steel-furnace&wood|"))
	saved, err := handler.Load()
	require.NoError(t, err)
	require.NoError(t, handler.Clear())
	cleared, err := handler.Load()
	require.NoError(t, err)

	// Assert
	assert.Equal(t, &config.UserConfig{}, empty)
	assert.Equal(t, "wood", saved.DefaultFuel)
	assert.Equal(t, []string{"pipe"}, saved.ExcludedRecipes)
	assert.Equal(t, map[string]string{"smelting": "steel-furnace&wood|"}, saved.Defaults)
	assert.Equal(t, &config.UserConfig{}, cleared)
}
