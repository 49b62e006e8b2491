package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
)

type LedgerRepository struct {
	mu     sync.RWMutex
	items  map[string]ledger.Ledger
	orders []string
}

func NewLedgerRepository(seed []ledger.Ledger) *LedgerRepository {
	items := make(map[string]ledger.Ledger, len(seed))
	orders := make([]string, 0, len(seed))

	for _, l := range seed {
		key := ledger.Key(l.League)
		if _, exists := items[key]; !exists {
			orders = append(orders, key)
		}
		items[key] = l.Clone()
	}

	return &LedgerRepository{
		items:  items,
		orders: orders,
	}
}

func (r *LedgerRepository) Load(_ context.Context, league string) (ledger.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[ledger.Key(league)]
	if !ok {
		return ledger.Ledger{League: league}, nil
	}

	return l.Clone(), nil
}

func (r *LedgerRepository) Append(_ context.Context, entry ledger.RoundEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ledger.Key(entry.League)
	current, exists := r.items[key]
	next, err := current.Append(entry)
	if err != nil {
		return err
	}

	if !exists {
		r.orders = append(r.orders, key)
	}
	r.items[key] = next.Clone()
	return nil
}

func (r *LedgerRepository) ListLeagues(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.orders))
	for _, key := range r.orders {
		out = append(out, r.items[key].League)
	}
	sort.Strings(out)

	return out, nil
}
