package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/cfgm"
)

var helper = cfgm.ConfigTestHelper[Config]{
	ExamplePath: "config/config.example.yaml",
}

func TestWriteExample(t *testing.T) { helper.WriteExampleFile(t, DefaultConfig()) }

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvConfigYAML, "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("jinjafs-test")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)

	assert.Equal(t, "CONFIG_", cfg.Env.Prefix)
	assert.Equal(t, "INSTALL_PREFIX", cfg.Env.InstallVar)
	assert.Equal(t, ".jinja", cfg.Template.Suffix)
	assert.Equal(t, "# {# jinja-parse #}", cfg.Template.Marker)
	assert.Equal(t, ".json.jinja", cfg.Template.OvsdbSuffix)
	assert.Equal(t, "CONFIG", cfg.Template.Global)
}

func TestLoad_HomeConfigFile(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	require.NoError(t, os.WriteFile(filepath.Join(home, ".jinjafs-test.yaml"), []byte("template:\n  suffix: .j2\n"), 0o600))

	cfg, err := Load("jinjafs-test")
	require.NoError(t, err)
	assert.Equal(t, ".j2", cfg.Template.Suffix)
}

func TestLoad_ExplicitFileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "jinjafs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"env": {"prefix": "BR2_"}}`), 0o600))

	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvConfigYAML, "template:\n  global: KCONFIG\n")
	t.Setenv("JINJAFS_ENV_INSTALL_VAR", "TARGET_DIR")

	cfg, err := Load("jinjafs-test")
	require.NoError(t, err)

	assert.Equal(t, "BR2_", cfg.Env.Prefix)
	assert.Equal(t, "KCONFIG", cfg.Template.Global)
	assert.Equal(t, "TARGET_DIR", cfg.Env.InstallVar)

	opts := cfg.RootfsOptions()
	assert.Equal(t, ".jinja", opts.Suffix)
	assert.Len(t, cfg.CollectOptions(), 3)
	assert.Len(t, cfg.EngineOptions(), 1)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv(EnvConfigFile, "/nonexistent/jinjafs.yaml")

	_, err := Load("jinjafs-test")
	assert.Error(t, err)
}
