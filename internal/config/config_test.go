package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	LoadDefault()

	assert.Equal(t, 8080, Http().Port)
	assert.Equal(t, "userdir", Postgres().Database)
	assert.Equal(t, "info", Logger().Level)
	assert.Empty(t, Directory().SeedGroups)
}

func TestLoadFromFile(t *testing.T) {
	content := `
common:
  http:
    port: 9090
  postgres:
    host: db.internal
    database: directory
  directory:
    seed_groups:
      - id: admins
        name: Administrators
`
	path := filepath.Join(t.TempDir(), "userdir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, LoadFromFile(path))

	assert.Equal(t, 9090, Http().Port)
	assert.Equal(t, "db.internal", Postgres().Host)
	assert.Equal(t, "directory", Postgres().Database)
	// unset values fall back to defaults
	assert.Equal(t, "postgres", Postgres().User)

	seeds := Directory().SeedGroups
	require.Len(t, seeds, 1)
	assert.Equal(t, "admins", seeds[0].ID)
	assert.Equal(t, "Administrators", seeds[0].Name)
}

func TestEnvOverrides(t *testing.T) {
	LoadDefault()
	t.Setenv("USERDIR_DB_HOST", "override.host")
	t.Setenv("USERDIR_DB_PORT", "5433")
	t.Setenv("USERDIR_HTTP_PORT", "8181")
	t.Setenv("USERDIR_LOG_LEVEL", "debug")

	ApplyEnvOverrides()

	assert.Equal(t, "override.host", Postgres().Host)
	assert.Equal(t, 5433, Postgres().Port)
	assert.Equal(t, 8181, Http().Port)
	assert.Equal(t, "debug", Logger().Level)
}

func TestPostgresDSN(t *testing.T) {
	LoadDefault()
	t.Setenv("USERDIR_DB_USER", "user name")
	t.Setenv("USERDIR_DB_PASSWORD", "p@ss")
	ApplyEnvOverrides()

	dsn := Postgres().DSN()
	assert.Contains(t, dsn, "user+name")
	assert.Contains(t, dsn, "p%40ss")
	assert.Contains(t, dsn, "sslmode=disable")
}
