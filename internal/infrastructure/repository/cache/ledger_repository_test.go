package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	ledgermock "github.com/riskibarqy/icl-ladder/internal/mocks/domain/ledger"
	basecache "github.com/riskibarqy/icl-ladder/internal/platform/cache"
)

func newCachedLedger(t *testing.T) (*LedgerRepository, *ledgermock.Repository) {
	t.Helper()
	next := ledgermock.NewRepository(t)
	repo := NewLedgerRepository(next, basecache.NewStore[ledger.Ledger](0), basecache.NewStore[[]string](0))
	return repo, next
}

func TestLedgerRepository_LoadIsCached(t *testing.T) {
	ctx := context.Background()
	repo, next := newCachedLedger(t)

	stored := ledger.Ledger{League: "Sydney Premier League", Rounds: []ledger.RoundEntry{{League: "Sydney Premier League", Round: 1}}}
	next.On("Load", mock.Anything, "Sydney Premier League").Return(stored, nil).Once()

	first, err := repo.Load(ctx, "Sydney Premier League")
	require.NoError(t, err)
	require.Len(t, first.Rounds, 1)

	// different spelling of the same league hits the cache
	second, err := repo.Load(ctx, "sydney  premier league")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestLedgerRepository_AppendInvalidates(t *testing.T) {
	ctx := context.Background()
	repo, next := newCachedLedger(t)

	entry := ledger.RoundEntry{League: "Sydney Premier League", Round: 2}
	next.On("Load", mock.Anything, "Sydney Premier League").Return(ledger.Ledger{League: "Sydney Premier League"}, nil).Twice()
	next.On("ListLeagues", mock.Anything).Return([]string{"Sydney Premier League"}, nil).Twice()
	next.On("Append", mock.Anything, entry).Return(nil).Once()

	_, err := repo.Load(ctx, "Sydney Premier League")
	require.NoError(t, err)
	_, err = repo.ListLeagues(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Append(ctx, entry))

	_, err = repo.Load(ctx, "Sydney Premier League")
	require.NoError(t, err)
	leagues, err := repo.ListLeagues(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Sydney Premier League"}, leagues)
}

func TestLedgerRepository_LoadErrorNotCached(t *testing.T) {
	ctx := context.Background()
	repo, next := newCachedLedger(t)

	boom := errors.New("disk unavailable")
	next.On("Load", mock.Anything, "Country League").Return(ledger.Ledger{}, boom).Once()
	next.On("Load", mock.Anything, "Country League").Return(ledger.Ledger{League: "Country League"}, nil).Once()

	_, err := repo.Load(ctx, "Country League")
	require.ErrorIs(t, err, boom)

	l, err := repo.Load(ctx, "Country League")
	require.NoError(t, err)
	require.Equal(t, "Country League", l.League)
}
