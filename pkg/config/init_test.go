package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInitConfig_Success(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configPath, err := InitConfig(false)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfigPath(), configPath)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)

	for _, section := range []string{
		"# dirserve configuration file",
		"logging:",
		"telemetry:",
		"server:",
		"transfer_unit:",
		"api:",
		"metrics:",
	} {
		assert.Contains(t, string(content), section)
	}

	var cfg Config
	require.NoError(t, yaml.Unmarshal(content, &cfg), "generated config must be valid YAML")

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig().Server.TransferUnit, loaded.Server.TransferUnit)
}

func TestInitConfig_AlreadyExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := InitConfig(false)
	require.NoError(t, err)

	_, err = InitConfig(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = InitConfig(true)
	assert.NoError(t, err, "force overwrites")
}

func TestInitConfigToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "dirserve.yaml")

	require.NoError(t, InitConfigToPath(path, false))
	assert.FileExists(t, path)

	err := InitConfigToPath(path, false)
	assert.Error(t, err)
}
