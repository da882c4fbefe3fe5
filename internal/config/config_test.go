package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerLogLevel, cfg.Server.LogLevel)
	assert.Equal(t, DefaultOpenAIModel, cfg.OpenAI.Model)
	assert.Equal(t, DefaultMySQLHost, cfg.MySQL.Host)
	assert.Equal(t, DefaultMySQLPort, cfg.MySQL.Port)
	assert.Equal(t, DefaultAgentMaxIterations, cfg.Agent.MaxIterations)
	assert.Equal(t, DefaultAgentWorkerPoolSize, cfg.Agent.WorkerPoolSize)
	assert.NotEmpty(t, cfg.Agent.SystemPrompt)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MSCONSOLE_SERVER_PORT", "9100")
	t.Setenv("MSCONSOLE_MYSQL_HOST", "db.internal")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  port: 9200\nmysql:\n  database: msdb\n"), 0o600))

	cmd := &cobra.Command{}
	cmd.Flags().String("config", path, "")

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "msdb", cfg.MySQL.Database)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultOpenAIModel, cfg.OpenAI.Model)
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("SERVER_PORT", "8888")
	t.Setenv("MYSQL_HOST", "legacy-host")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_USERNAME", "reader")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DATABASE", "clinical")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, "legacy-host", cfg.MySQL.Host)
	assert.Equal(t, 3307, cfg.MySQL.Port)
	assert.Equal(t, "reader", cfg.MySQL.Username)
	assert.Equal(t, "secret", cfg.MySQL.Password)
	assert.Equal(t, "clinical", cfg.MySQL.Database)
}

func TestLegacyEnvNeverOverridesExplicitConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SERVER_PORT", "8888")
	t.Setenv("MSCONSOLE_SERVER_PORT", "9300")

	cfg, err := Load(nil)
	require.NoError(t, err)

	// The namespaced variable moved the port off its default, so the legacy
	// variable is ignored.
	assert.Equal(t, 9300, cfg.Server.Port)
}

func TestDurationOrDefault(t *testing.T) {
	d, err := DurationOrDefault("", "30s")
	require.NoError(t, err)
	assert.Equal(t, "30s", d.String())

	d, err = DurationOrDefault("1m", "30s")
	require.NoError(t, err)
	assert.Equal(t, "1m0s", d.String())

	_, err = DurationOrDefault("bogus", "30s")
	assert.Error(t, err)
}
