package cache

import (
	"context"

	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	basecache "github.com/riskibarqy/icl-ladder/internal/platform/cache"
)

const leagueListKey = "ledger:leagues"

// LedgerRepository serves ledger reads from an in-process cache and drops the
// cached league on every append.
type LedgerRepository struct {
	next    ledger.Repository
	ledgers *basecache.Store[ledger.Ledger]
	leagues *basecache.Store[[]string]
}

func NewLedgerRepository(next ledger.Repository, ledgers *basecache.Store[ledger.Ledger], leagues *basecache.Store[[]string]) *LedgerRepository {
	return &LedgerRepository{next: next, ledgers: ledgers, leagues: leagues}
}

func (r *LedgerRepository) Load(ctx context.Context, league string) (ledger.Ledger, error) {
	l, err := r.ledgers.GetOrLoad(ctx, ledgerKey(league), func(ctx context.Context) (ledger.Ledger, error) {
		loaded, err := r.next.Load(ctx, league)
		if err != nil {
			return ledger.Ledger{}, err
		}
		return loaded.Clone(), nil
	})
	if err != nil {
		return ledger.Ledger{}, err
	}

	return l.Clone(), nil
}

func (r *LedgerRepository) Append(ctx context.Context, entry ledger.RoundEntry) error {
	err := r.next.Append(ctx, entry)
	// a failed append may still have raced with another writer
	r.ledgers.Delete(ctx, ledgerKey(entry.League))
	r.leagues.Delete(ctx, leagueListKey)
	return err
}

func (r *LedgerRepository) ListLeagues(ctx context.Context) ([]string, error) {
	items, err := r.leagues.GetOrLoad(ctx, leagueListKey, func(ctx context.Context) ([]string, error) {
		items, err := r.next.ListLeagues(ctx)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]string(nil), items...), nil
}

func ledgerKey(league string) string {
	return "ledger:league:" + ledger.Key(league)
}
