package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

func writeModulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadModulesConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadModulesConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	s := cfg.Settings(models.ModuleTitleEngine)
	assert.Equal(t, "gpt-4o-mini", s.Model)
	assert.Equal(t, 0.7, s.Temperature)
	assert.Equal(t, 90*time.Second, s.Timeout)
	assert.Equal(t, 30*time.Second, cfg.MetadataTimeout)
}

func TestLoadModulesConfig_Overrides(t *testing.T) {
	path := writeModulesFile(t, `
analysis:
  default_model: gpt-4o
  default_timeout: 45s
  metadata_timeout: 10s
  modules:
    copyright_scan:
      temperature: 0.2
      timeout: 20s
    trend_intelligence:
      model: gpt-4o-mini
`)
	cfg, err := LoadModulesConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.MetadataTimeout)

	scan := cfg.Settings(models.ModuleCopyrightScan)
	assert.Equal(t, "gpt-4o", scan.Model, "unset model falls back to default")
	assert.Equal(t, 0.2, scan.Temperature)
	assert.Equal(t, 20*time.Second, scan.Timeout)

	trends := cfg.Settings(models.ModuleTrendIntelligence)
	assert.Equal(t, "gpt-4o-mini", trends.Model)
	assert.Equal(t, 45*time.Second, trends.Timeout, "unset timeout falls back to default")
}

func TestLoadModulesConfig_UnknownModule(t *testing.T) {
	path := writeModulesFile(t, `
analysis:
  modules:
    astrology:
      model: gpt-4o
`)
	_, err := LoadModulesConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "astrology")
}

func TestLoadModulesConfig_BadTimeout(t *testing.T) {
	path := writeModulesFile(t, `
analysis:
  default_timeout: soon
`)
	_, err := LoadModulesConfig(path)
	assert.Error(t, err)
}
