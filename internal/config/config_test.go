package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB", "STATE", "USER", "ROLE", "DELETE_DELAY_MS", "LOG_USE_CASES", "CONFIG"} {
		t.Setenv(EnvPrefix+"_"+k, "")
		os.Unsetenv(EnvPrefix + "_" + k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	cfg, err := load(home, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".csrdash", "csrdash.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, ".csrdash", "state.yaml"), cfg.StatePath)
	assert.Equal(t, "local", cfg.UserID)
	assert.Equal(t, 10*time.Second, cfg.DeleteDelay())
	role, err := cfg.UserRole()
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".csrdash"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".csrdash", "config.yaml"), []byte(
		"db: /data/from-file.db\nrole: accountant\ndelete_delay_ms: 2500\n"), 0o644))

	t.Setenv("CSRDASH_ROLE", "project_manager")

	cfg, err := load(home, "")
	require.NoError(t, err)
	assert.Equal(t, "/data/from-file.db", cfg.DBPath)
	assert.Equal(t, 2500*time.Millisecond, cfg.DeleteDelay())
	assert.Equal(t, "project_manager", cfg.Role, "environment beats the config file")
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	dotEnv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotEnv, []byte("CSRDASH_USER=dotenv-user\nCSRDASH_LOG_USE_CASES=true\nCSRDASH_DB=/tmp/dotenv.db\n"), 0o644))
	t.Setenv("CSRDASH_DB", "/tmp/env.db")

	cfg, err := load(home, dotEnv)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-user", cfg.UserID)
	assert.True(t, cfg.LogUseCases)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user: u-42\n"), 0o644))
	t.Setenv("CSRDASH_CONFIG", path)

	cfg, err := load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "u-42", cfg.UserID)
}

func TestValidate_Rejects(t *testing.T) {
	base := DefaultConfig("/home/x")

	bad := base
	bad.Role = "owner"
	assert.Error(t, bad.Validate())

	bad = base
	bad.DeleteDelayMs = -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.UserID = " "
	assert.Error(t, bad.Validate())
}
