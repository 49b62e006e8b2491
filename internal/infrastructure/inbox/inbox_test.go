package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newInbox(t *testing.T) (*Inbox, Dirs) {
	t.Helper()
	root := t.TempDir()
	dirs := Dirs{
		Input:      filepath.Join(root, "input"),
		Processed:  filepath.Join(root, "processed"),
		Season:     filepath.Join(root, "season", "current_season"),
		SeasonFile: "Triathlon Season.xlsx",
	}
	b := New(dirs)
	b.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, b.Ensure())
	return b, dirs
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseRoundFileName(t *testing.T) {
	file, ok := ParseRoundFileName("Sydney Premier League Round 3 Cronulla Sprint.xlsx")
	require.True(t, ok)
	require.Equal(t, "Sydney Premier League", file.League)
	require.Equal(t, 3, file.Round)
	require.Equal(t, "Cronulla Sprint", file.Event)

	for _, name := range []string{
		"~$Sydney Premier League Round 3 Cronulla.xlsx",
		"Triathlon Season.xlsx",
		"Sydney Premier League Round 3 Cronulla.csv",
	} {
		if _, ok := ParseRoundFileName(name); ok {
			t.Fatalf("expected %q to be ignored", name)
		}
	}
}

func TestInbox_DiscoverAndMarkProcessed(t *testing.T) {
	b, dirs := newInbox(t)
	touch(t, filepath.Join(dirs.Input, "Sydney Premier League Round 2 Penrith.xlsx"), "r2")
	touch(t, filepath.Join(dirs.Input, "Sydney Premier League Round 10 Final.xlsx"), "r10")
	touch(t, filepath.Join(dirs.Input, "Country League Round 1 Orange.xlsx"), "c1")
	touch(t, filepath.Join(dirs.Input, "~$Country League Round 1 Orange.xlsx"), "lock")
	touch(t, filepath.Join(dirs.Input, "notes.txt"), "")

	files, err := b.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, "Country League", files[0].League)
	require.Equal(t, 2, files[1].Round)
	require.Equal(t, 10, files[2].Round)

	target, err := b.MarkProcessed(context.Background(), files[1])
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dirs.Processed, files[1].Name), target)
	_, err = os.Stat(files[1].Path)
	require.True(t, errors.Is(err, os.ErrNotExist))

	// a second file of the same name keeps the first
	touch(t, files[1].Path, "r2 again")
	second, err := b.MarkProcessed(context.Background(), files[1])
	require.NoError(t, err)
	require.Equal(t, "Sydney Premier League Round 2 Penrith_20260301_093000.xlsx", filepath.Base(second))
}

func TestInbox_PromoteSeasonConfig(t *testing.T) {
	b, dirs := newInbox(t)
	ctx := context.Background()

	_, err := b.PromoteSeasonConfig(ctx, nil)
	require.Error(t, err)

	touch(t, filepath.Join(dirs.Input, dirs.SeasonFile), "v1")
	current, err := b.PromoteSeasonConfig(ctx, func(string) error { return nil })
	require.NoError(t, err)
	require.Equal(t, b.SeasonConfigPath(), current)
	content, err := os.ReadFile(current)
	require.NoError(t, err)
	require.Equal(t, "v1", string(content))

	touch(t, filepath.Join(dirs.Input, dirs.SeasonFile), "v2")
	_, err = b.PromoteSeasonConfig(ctx, nil)
	require.NoError(t, err)
	backup, err := os.ReadFile(filepath.Join(dirs.Season, "Triathlon_Season_backup_20260301_093000.xlsx"))
	require.NoError(t, err)
	require.Equal(t, "v1", string(backup))

	errInvalid := errors.New("missing column")
	touch(t, filepath.Join(dirs.Input, dirs.SeasonFile), "broken")
	_, err = b.PromoteSeasonConfig(ctx, func(string) error { return errInvalid })
	require.ErrorIs(t, err, errInvalid)
	content, err = os.ReadFile(current)
	require.NoError(t, err)
	require.Equal(t, "v2", string(content))
}
