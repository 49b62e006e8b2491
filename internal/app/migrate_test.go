package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/icl-ladder/internal/config"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
)

func TestResolveMigrationsDir(t *testing.T) {
	dir := t.TempDir()

	got, err := ResolveMigrationsDir("", filepath.Join(dir, "missing"), dir)
	require.NoError(t, err)
	require.Equal(t, dir, got)

	_, err = ResolveMigrationsDir("", filepath.Join(dir, "missing"))
	require.ErrorContains(t, err, "missing")
}

func TestNewMigrator_RequiresDBURL(t *testing.T) {
	_, err := NewMigrator(config.Config{}, t.TempDir(), logging.NewNop())
	require.ErrorContains(t, err, "DB_URL")
}
