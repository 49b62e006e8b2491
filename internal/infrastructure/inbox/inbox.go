package inbox

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var roundFilePattern = regexp.MustCompile(`^(.*?) Round (\d+) (.*?)\.xlsx$`)

// RoundFile is a discovered "<League> Round <N> <Event>.xlsx" file.
type RoundFile struct {
	Path   string
	Name   string
	League string
	Round  int
	Event  string
}

// ParseRoundFileName reports whether name is a round results workbook.
// Office lock files ("~$...") are never round files.
func ParseRoundFileName(name string) (RoundFile, bool) {
	if strings.HasPrefix(name, "~$") {
		return RoundFile{}, false
	}
	match := roundFilePattern.FindStringSubmatch(name)
	if match == nil {
		return RoundFile{}, false
	}
	round, err := strconv.Atoi(match[2])
	if err != nil {
		return RoundFile{}, false
	}
	return RoundFile{
		Name:   name,
		League: strings.TrimSpace(match[1]),
		Round:  round,
		Event:  strings.TrimSpace(match[3]),
	}, true
}

type Dirs struct {
	Input     string
	Processed string
	Season    string
	// SeasonFile is the configuration workbook name in Input and Season.
	SeasonFile string
}

// Inbox is the directory layout a batch run reads from and files into.
type Inbox struct {
	dirs Dirs
	now  func() time.Time
}

func New(dirs Dirs) *Inbox {
	return &Inbox{dirs: dirs, now: time.Now}
}

func (b *Inbox) Ensure() error {
	for _, dir := range []string{b.dirs.Input, b.dirs.Processed, b.dirs.Season} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return crerr.Wrapf(err, "create directory %s", dir)
		}
	}
	return nil
}

// Discover lists round files waiting in the input directory, ordered by league,
// round number and file name.
func (b *Inbox) Discover(ctx context.Context) ([]RoundFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(b.dirs.Input)
	if err != nil {
		return nil, crerr.Wrapf(err, "list input directory %s", b.dirs.Input)
	}

	files := make([]RoundFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file, ok := ParseRoundFileName(entry.Name())
		if !ok {
			continue
		}
		file.Path = filepath.Join(b.dirs.Input, entry.Name())
		files = append(files, file)
	}

	sort.SliceStable(files, func(i, j int) bool {
		li, lj := strings.ToLower(files[i].League), strings.ToLower(files[j].League)
		if li != lj {
			return li < lj
		}
		if files[i].Round != files[j].Round {
			return files[i].Round < files[j].Round
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// MarkProcessed moves a folded round file out of the input directory. An existing
// file of the same name in the processed directory is kept and the new one gets a
// timestamp suffix.
func (b *Inbox) MarkProcessed(_ context.Context, file RoundFile) (string, error) {
	target := filepath.Join(b.dirs.Processed, file.Name)
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(file.Name)
		stem := strings.TrimSuffix(file.Name, ext)
		target = filepath.Join(b.dirs.Processed, stem+"_"+b.now().Format("20060102_150405")+ext)
	}

	if err := move(file.Path, target); err != nil {
		return "", err
	}
	return target, nil
}

// SeasonConfigPath is where the active season configuration lives.
func (b *Inbox) SeasonConfigPath() string {
	return filepath.Join(b.dirs.Season, b.dirs.SeasonFile)
}

// PromoteSeasonConfig installs a season configuration dropped into the input
// directory as the active one, after validate accepts it. A differing active
// configuration is backed up first. It returns the active configuration path.
func (b *Inbox) PromoteSeasonConfig(ctx context.Context, validate func(path string) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	current := b.SeasonConfigPath()
	incoming := filepath.Join(b.dirs.Input, b.dirs.SeasonFile)
	if _, err := os.Stat(incoming); err != nil {
		if os.IsNotExist(err) {
			return b.activeSeasonConfig(current)
		}
		return "", crerr.Wrapf(err, "stat %s", incoming)
	}

	if validate != nil {
		if err := validate(incoming); err != nil {
			return "", crerr.Wrapf(err, "validate incoming season configuration %s", incoming)
		}
	}

	if _, err := os.Stat(current); err == nil {
		same, err := sameContent(incoming, current)
		if err != nil {
			return "", err
		}
		if same {
			return current, nil
		}

		ext := filepath.Ext(b.dirs.SeasonFile)
		stem := strings.ReplaceAll(strings.TrimSuffix(b.dirs.SeasonFile, ext), " ", "_")
		backup := filepath.Join(b.dirs.Season, stem+"_backup_"+b.now().Format("20060102_150405")+ext)
		if err := copyFile(current, backup); err != nil {
			return "", err
		}
	}

	if err := move(incoming, current); err != nil {
		return "", err
	}
	return current, nil
}

func (b *Inbox) activeSeasonConfig(current string) (string, error) {
	if _, err := os.Stat(current); err != nil {
		return "", crerr.Wrapf(err, "no season configuration at %s", current)
	}
	return current, nil
}

func sameContent(a, b string) (bool, error) {
	left, err := os.ReadFile(a)
	if err != nil {
		return false, crerr.Wrapf(err, "read %s", a)
	}
	right, err := os.ReadFile(b)
	if err != nil {
		return false, crerr.Wrapf(err, "read %s", b)
	}
	return bytes.Equal(left, right), nil
}

func move(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	// rename fails across devices
	if err := copyFile(from, to); err != nil {
		return err
	}
	if err := os.Remove(from); err != nil {
		return crerr.Wrapf(err, "remove %s after copy", from)
	}
	return nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return crerr.Wrapf(err, "open %s", from)
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return crerr.Wrapf(err, "create %s", to)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return crerr.Wrapf(err, "copy %s to %s", from, to)
	}
	if err := dst.Close(); err != nil {
		return crerr.Wrapf(err, "close %s", to)
	}
	return nil
}
