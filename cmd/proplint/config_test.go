package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfigMissingFile(t *testing.T) {
	cfg, err := loadProjectConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".proplint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ignore:
  - children
custom_validators:
  - Validators
skip_undeclared: true
pragma: Preact
include:
  - "src/**/*.jsx"
`), 0o644))

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{"children"}, cfg.Ignore)
	assert.True(t, cfg.SkipUndeclared)

	lc := cfg.lintConfig()
	assert.Equal(t, "Preact", lc.Pragma)
	assert.Equal(t, "createKind", lc.KindFactoryPattern)
	assert.Equal(t, []string{"Validators"}, lc.CustomValidators)

	so := cfg.scanOptions()
	assert.Equal(t, []string{"src/**/*.jsx"}, so.Include)
	assert.NotEmpty(t, so.Exclude)
}

func TestNilProjectConfigDefaults(t *testing.T) {
	var pc *ProjectConfig
	lc := pc.lintConfig()
	assert.Equal(t, "React", lc.Pragma)
	assert.False(t, lc.SkipUndeclared)
	so := pc.scanOptions()
	assert.Contains(t, so.Include, "**/*.tsx")
}

func TestLoadProjectConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".proplint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ignore: [unclosed"), 0o644))
	_, err := loadProjectConfig(path)
	assert.Error(t, err)
}
