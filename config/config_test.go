package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "sql", cfg.Store.Driver)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 0.1, cfg.Business.TaxRate)
	assert.Equal(t, 0.6, cfg.Business.CostRatio)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "system", cfg.Business.DefaultActor)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: sqlite\n  dsn: file.db\n")
	t.Setenv("POS_DATABASE_DRIVER", "postgres")
	t.Setenv("POS_DATABASE_DSN", "host=db user=pos")
	t.Setenv("POS_NATS_URL", "nats://localhost:4222")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=pos", cfg.Database.DSN)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 1\n")
	t.Setenv("POS_PORT", "abc")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBusinessConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, BusinessConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", BusinessConfig{Timezone: "UTC"}.Location().String())
}
