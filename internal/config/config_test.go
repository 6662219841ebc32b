package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict_ownership: false\nskip_phases: [\"ownership\"]\nentry_point: main\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.StrictOwnershipEnabled())
	assert.True(t, cfg.SkipsPhase("ownership"))
	assert.Equal(t, "main", cfg.EntryPoint)
}

func TestZeroValueDefaultsToStrictOwnership(t *testing.T) {
	var cfg AnalyzerConfig
	assert.True(t, cfg.StrictOwnershipEnabled())
	assert.False(t, cfg.SkipsPhase("ownership"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}
