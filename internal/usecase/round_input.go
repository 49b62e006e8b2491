package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
)

// BuildRoundInput turns the sheets of one round file into scorer input. Sheets
// whose race type the round does not accept are skipped and reported as warnings;
// any other sheet problem fails the whole file.
func BuildRoundInput(round season.RoundConfig, sheets []schema.Table) (scoring.RoundInput, []string, error) {
	iclSheet := -1
	for i, sheet := range sheets {
		if season.IsICLSheet(sheet.Name) {
			iclSheet = i
			break
		}
	}
	if iclSheet < 0 {
		return scoring.RoundInput{}, nil, ErrNoICLSheet
	}

	iclRecords, err := schema.Normalize(sheets[iclSheet], schema.TargetICL)
	if err != nil {
		return scoring.RoundInput{}, nil, err
	}
	icl, err := scoring.ICLFromRecords(iclRecords)
	if err != nil {
		return scoring.RoundInput{}, nil, &scoring.SheetError{Sheet: sheets[iclSheet].Name, Err: err}
	}

	resolver := round.ClubResolver()
	if resolver.Len() == 0 {
		resolver = identity.NewClubResolver(icl.ClubNames())
	}

	input := scoring.RoundInput{
		Round: round,
		Clubs: resolver.Clubs(),
		ICL:   icl,
	}

	var warnings []string
	for i, sheet := range sheets {
		if i == iclSheet || !season.IsRaceSheet(sheet.Name) {
			continue
		}

		eligibility, err := round.Classify(sheet.Name)
		if err != nil {
			var unknown *season.UnknownRaceTypeError
			if errors.As(err, &unknown) {
				warnings = append(warnings, err.Error())
				continue
			}
			return scoring.RoundInput{}, nil, err
		}

		records, err := schema.Normalize(sheet, schema.TargetRaceResult)
		if err != nil {
			return scoring.RoundInput{}, nil, err
		}
		race, err := scoring.RaceFromRecords(sheet.Name, eligibility, records, resolver)
		if err != nil {
			return scoring.RoundInput{}, nil, err
		}
		input.Races = append(input.Races, race)
	}

	if len(input.Races) == 0 {
		return scoring.RoundInput{}, warnings, fmt.Errorf("%w: league=%s round=%d", ErrNoRaceSheets, round.League, round.Round)
	}
	return input, warnings, nil
}
