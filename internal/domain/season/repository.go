package season

import "context"

// Repository loads the season configuration that is current for a run.
type Repository interface {
	Load(ctx context.Context) (Config, error)
}
