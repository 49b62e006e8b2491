package scoring

import (
	"strings"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
)

// RaceFromRecords resolves normalized race sheet records against the round's clubs.
// Rows without a club are not ICL entries and are dropped, but their places still
// count against the club rows. An unrecognized club fails the sheet.
func RaceFromRecords(sheet string, eligibility season.Eligibility, records []schema.Record, resolver *identity.ClubResolver) (Race, error) {
	race := Race{
		Sheet:       sheet,
		Label:       season.RaceLabel(sheet),
		Eligibility: eligibility,
		Rows:        make([]ResultRow, 0, len(records)),
	}

	for _, record := range records {
		rawClub, ok := record.Lookup(schema.FieldClubName)
		if !ok {
			continue
		}
		club, err := resolver.Resolve(rawClub)
		if err != nil {
			return Race{}, &SheetError{Sheet: sheet, Row: record.Row, Err: err}
		}

		row := ResultRow{
			Row:       record.Row,
			FirstName: record.Get(schema.FieldFirstName),
			Surname:   record.Get(schema.FieldSurname),
			TANumber:  strings.Join(strings.Fields(record.Get(schema.FieldTANumber)), ""),
			Category:  strings.Join(strings.Fields(record.Get(schema.FieldCategory)), " "),
			Club:      club,
		}
		row.Athlete = identity.AthleteKeyOf(row.TANumber, row.FirstName, row.Surname)

		if place, err := schema.ParseNumber(record.Get(schema.FieldCategoryPlace)); err == nil && place > 0 {
			row.Place = place
			row.Placed = true
		}
		if raw, ok := record.Lookup(schema.FieldPerformancePoints); ok {
			if points, err := schema.ParseNumber(raw); err == nil && points >= 0 {
				row.Override = &points
			}
		}

		race.Rows = append(race.Rows, row)
	}

	return race, nil
}
