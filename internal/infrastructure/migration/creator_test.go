package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Leases Table")
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(mf.UpPath), "add_leases_table.up.sql")
	assert.Contains(t, filepath.Base(mf.DownPath), "add_leases_table.down.sql")
	assert.Len(t, mf.Version, 14)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Add Leases Table")

	_, err = os.Stat(mf.DownPath)
	require.NoError(t, err)
}

func TestCreateMigration_NestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db", "migrations")

	_, err := CreateMigration(dir, "init")
	require.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("returns sorted base names", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20260102000000_second.up.sql",
			"20260102000000_second.down.sql",
			"20260101000000_first.up.sql",
			"20260101000000_first.down.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20260101000000_first",
			"20260102000000_second",
		}, migrations)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Leases Table", "add_leases_table"},
		{"add--payments", "add_payments"},
		{"trailing ", "trailing"},
		{"MixedCase123", "mixedcase123"},
		{"dots.are.dropped", "dotsaredropped"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), tt.in)
	}
}
