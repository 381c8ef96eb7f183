package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "StockOpname.db", cfg.DB.DSN)
	assert.Equal(t, 1, cfg.DB.MaxOpenConns)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Export.ShareLinkTTL)
	assert.True(t, cfg.App.IsDev())
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/stock?sslmode=disable")
	t.Setenv("EXPORT_DIR", "/var/lib/stock/exports")
	t.Setenv("SHARE_LINK_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "/var/lib/stock/exports", cfg.Export.Dir)
	assert.Equal(t, 15*time.Minute, cfg.Export.ShareLinkTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
