package jsonfile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
)

var ErrCorruptLedger = errors.New("corrupt ledger file")

const fileExt = ".json"

// LedgerRepository keeps one JSON document per league in dir. Writes go to a
// temporary file that replaces the document only once fully written.
type LedgerRepository struct {
	dir string
	mu  sync.Mutex
}

func NewLedgerRepository(dir string) (*LedgerRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create ledger dir %s", dir)
	}
	return &LedgerRepository{dir: dir}, nil
}

func (r *LedgerRepository) Load(ctx context.Context, league string) (ledger.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Ledger{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.load(league)
	if err != nil {
		return ledger.Ledger{}, err
	}
	if l.League == "" {
		l.League = league
	}
	return l, nil
}

func (r *LedgerRepository) Append(ctx context.Context, entry ledger.RoundEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(entry.League)
	if err != nil {
		return err
	}
	next, err := current.Append(entry)
	if err != nil {
		return err
	}
	return r.write(next)
}

func (r *LedgerRepository) ListLeagues(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, crerr.Wrapf(err, "list ledger dir %s", r.dir)
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		doc, err := r.readDocument(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, doc.League)
	}
	sort.Strings(out)
	return out, nil
}

// Path is the document location for league.
func (r *LedgerRepository) Path(league string) string {
	return filepath.Join(r.dir, fileSlug(league)+fileExt)
}

func (r *LedgerRepository) load(league string) (ledger.Ledger, error) {
	path := r.Path(league)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ledger.Ledger{}, nil
		}
		return ledger.Ledger{}, crerr.Wrapf(err, "stat ledger %s", path)
	}

	doc, err := r.readDocument(path)
	if err != nil {
		return ledger.Ledger{}, err
	}
	if ledger.Key(doc.League) != ledger.Key(league) {
		return ledger.Ledger{}, crerr.Wrapf(ledger.ErrLeagueMismatch, "%s holds league %q, not %q", path, doc.League, league)
	}
	return doc.toDomain(), nil
}

func (r *LedgerRepository) readDocument(path string) (ledgerDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ledgerDocument{}, crerr.Wrapf(err, "read ledger %s", path)
	}

	var doc ledgerDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return ledgerDocument{}, crerr.Wrapf(ErrCorruptLedger, "%s: %v", path, err)
	}
	if err := validateDocument(doc); err != nil {
		return ledgerDocument{}, crerr.Wrapf(err, "%s", path)
	}
	return doc, nil
}

func validateDocument(doc ledgerDocument) error {
	if strings.TrimSpace(doc.League) == "" {
		return crerr.Wrap(ErrCorruptLedger, "league is empty")
	}
	if doc.Version > documentVersion {
		return crerr.Wrapf(ErrCorruptLedger, "unsupported version %d", doc.Version)
	}
	seen := make(map[int]struct{}, len(doc.Rounds))
	for _, round := range doc.Rounds {
		if round.Round <= 0 {
			return crerr.Wrapf(ErrCorruptLedger, "round number %d is not positive", round.Round)
		}
		if _, dup := seen[round.Round]; dup {
			return crerr.Wrapf(ErrCorruptLedger, "round %d recorded twice", round.Round)
		}
		seen[round.Round] = struct{}{}
	}
	return nil
}

func (r *LedgerRepository) write(l ledger.Ledger) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(toDocument(l)); err != nil {
		return crerr.Wrapf(err, "encode ledger %s", l.League)
	}

	path := r.Path(l.League)
	tmp, err := os.CreateTemp(r.dir, ".ledger-*.tmp")
	if err != nil {
		return crerr.Wrapf(err, "create temp ledger for %s", l.League)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(buf.B); err != nil {
		tmp.Close()
		return crerr.Wrapf(err, "write temp ledger %s", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return crerr.Wrapf(err, "sync temp ledger %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close temp ledger %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return crerr.Wrapf(err, "replace ledger %s", path)
	}
	return nil
}

// fileSlug turns a league name into a file name: normalized, with every run of
// characters outside [a-z0-9] replaced by a single dash, then suffixed with a short
// hash of the league key so leagues that slug alike still get their own file.
func fileSlug(league string) string {
	key := ledger.Key(league)
	var b strings.Builder
	dash := false
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "league"
	}

	sum := sha256.Sum256([]byte(key))
	return slug + "-" + hex.EncodeToString(sum[:4])
}
