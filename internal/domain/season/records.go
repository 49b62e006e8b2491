package season

import (
	"fmt"

	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
)

// FromRecords builds the season configuration from normalized season table records.
func FromRecords(records []schema.Record) (Config, error) {
	rounds := make([]RoundConfig, 0, len(records))
	for _, record := range records {
		league, ok := record.Lookup(schema.FieldLeagueName)
		if !ok {
			return Config{}, fmt.Errorf("%w: row %d: league name is empty", ErrInvalidConfig, record.Row)
		}

		roundNo, err := schema.ParseNumber(record.Get(schema.FieldRound))
		if err != nil {
			return Config{}, fmt.Errorf("%w: row %d: round %q: %v", ErrInvalidConfig, record.Row, record.Get(schema.FieldRound), err)
		}

		rounds = append(rounds, RoundConfig{
			League:                 league,
			Round:                  roundNo,
			Event:                  record.Get(schema.FieldEvent),
			DoublePoints:           schema.ParseFlag(record.Get(schema.FieldDoublePoints)),
			PerformanceRaceTypes:   ParseRaceTypes(schema.SplitList(record.Get(schema.FieldPerformanceTypes))),
			ParticipationRaceTypes: ParseRaceTypes(schema.SplitList(record.Get(schema.FieldParticipationTypes))),
			Clubs:                  schema.SplitList(record.Get(schema.FieldClubs)),
		})
	}

	return NewConfig(rounds)
}
