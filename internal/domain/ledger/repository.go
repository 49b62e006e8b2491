package ledger

import "context"

// Repository persists season ledgers keyed by league name.
//
// Load returns an empty ledger for a league with no history. Append must reject a
// round the league already records with ErrRoundAlreadyRecorded and must leave the
// stored ledger untouched when it fails.
type Repository interface {
	Load(ctx context.Context, league string) (Ledger, error)
	Append(ctx context.Context, entry RoundEntry) error
	ListLeagues(ctx context.Context) ([]string, error)
}
