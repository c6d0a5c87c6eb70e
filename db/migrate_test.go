package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := Open(path, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, nil))

	// documents table exists
	var name string
	err = conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='documents'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "documents", name)
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := Open(path, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, nil))
	require.NoError(t, Migrate(conn, nil))

	var count int
	err = conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
