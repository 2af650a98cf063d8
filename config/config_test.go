package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(envPath, []byte("LUCKYDRAW_TEST_SECRET=from-dotenv\n"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte(`
env = "prod"

[auth]
token_secret = "${LUCKYDRAW_TEST_SECRET}"

[redis]
lock_ttl = "2s"

[draw]
points_cost = 20

[draw.multipliers]
gold = "2.5"
`), 0o600))

	cfg, err := Load(path, envPath)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "from-dotenv", cfg.Auth.TokenSecret)
	require.Equal(t, 2*time.Second, cfg.Redis.LockTTL)
	require.Equal(t, int64(20), cfg.Draw.PointsCost)
	require.Equal(t, "2.5", cfg.Draw.Multipliers["gold"])

	// Defaults survive for keys the file does not set.
	require.Equal(t, 3, cfg.Draw.BaseFreeSpins)
	require.Equal(t, "8080", cfg.ApiServer.Port)
	require.False(t, cfg.Redis.Enabled())
}

func TestLoad_MissingEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_level = "warn"`), 0o600))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDatabaseConfigs_ConnectionString(t *testing.T) {
	d := DatabaseConfigs{Driver: "mysql", Host: "db", Port: "3306", Database: "luckydraw", User: "u", Password: "p"}
	require.Equal(t, "u:p@tcp(db:3306)/luckydraw?charset=utf8mb4&parseTime=True&loc=UTC", d.ConnectionString())

	d = DatabaseConfigs{Driver: "sqlite", Database: "file.db"}
	require.Equal(t, "file.db", d.ConnectionString())
}
