package spreadsheet

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
)

// SeasonSource reads the season configuration workbook. The configuration is
// the first sheet; it is re-read on every Load.
type SeasonSource struct {
	path string
}

func NewSeasonSource(path string) *SeasonSource {
	return &SeasonSource{path: path}
}

func (s *SeasonSource) Load(ctx context.Context) (season.Config, error) {
	if err := ctx.Err(); err != nil {
		return season.Config{}, err
	}

	workbook, err := ReadFile(s.path)
	if err != nil {
		return season.Config{}, err
	}
	return SeasonFromWorkbook(workbook)
}

func SeasonFromWorkbook(workbook Workbook) (season.Config, error) {
	if len(workbook.Sheets) == 0 {
		return season.Config{}, crerr.Wrapf(season.ErrInvalidConfig, "%s has no sheets", workbook.Name)
	}

	records, err := schema.Normalize(workbook.Sheets[0], schema.TargetSeason)
	if err != nil {
		return season.Config{}, err
	}

	cfg, err := season.FromRecords(records)
	if err != nil {
		return season.Config{}, crerr.Wrapf(err, "season configuration %s", workbook.Name)
	}
	return cfg, nil
}
