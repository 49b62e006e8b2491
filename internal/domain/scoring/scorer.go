package scoring

import (
	"sort"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
)

type athleteClubKey struct {
	athlete  identity.AthleteKey
	club     string
	category string
}

// Score computes performance points per athlete and participation, totals and caps
// per club for one round. It fails on the first duplicate finish place or on a
// scored club that has no ICL entry.
func Score(input RoundInput, rules Rules) (RoundResult, error) {
	policy := rules.Participation
	if policy == nil {
		policy = HighestTier
	}
	double := input.Round.DoublePoints
	multiplier := rules.multiplier(double)

	clubs := append([]identity.Club(nil), input.Clubs...)
	if len(clubs) == 0 {
		for _, entry := range input.ICL.Entries() {
			clubs = append(clubs, entry.Club)
		}
	}
	clubIndex := make(map[string]int, len(clubs))
	for i, club := range clubs {
		clubIndex[club.Key] = i
	}

	finishers := make(map[string]map[identity.AthleteKey]struct{})
	performance := make(map[string]int)
	athleteIndex := make(map[athleteClubKey]int)
	athletes := make([]AthleteScore, 0)
	races := make([]RaceBreakdown, 0, len(input.Races))

	for _, race := range input.Races {
		var points []int
		if race.Eligibility.Performance {
			var err error
			points, err = rankRace(race, rules)
			if err != nil {
				return RoundResult{}, err
			}
		}

		raceFinishers := make(map[string]map[identity.AthleteKey]struct{})
		racePoints := make(map[string]int)
		for i, row := range race.Rows {
			if _, ok := input.ICL.Lookup(row.Club.Key); !ok {
				return RoundResult{}, &MissingICLDataError{Club: row.Club.Name, Sheet: race.Sheet}
			}
			if _, ok := clubIndex[row.Club.Key]; !ok {
				clubIndex[row.Club.Key] = len(clubs)
				clubs = append(clubs, row.Club)
			}

			if race.Eligibility.Participation {
				addFinisher(finishers, row.Club.Key, row.Athlete)
			}
			addFinisher(raceFinishers, row.Club.Key, row.Athlete)

			if points == nil {
				continue
			}
			earned := points[i] * multiplier
			racePoints[row.Club.Key] += earned
			performance[row.Club.Key] += earned

			key := athleteClubKey{athlete: row.Athlete, club: row.Club.Key, category: identity.NormalizeName(row.Category)}
			idx, ok := athleteIndex[key]
			if !ok {
				idx = len(athletes)
				athleteIndex[key] = idx
				athletes = append(athletes, AthleteScore{
					Athlete:   row.Athlete,
					FirstName: row.FirstName,
					Surname:   row.Surname,
					TANumber:  row.TANumber,
					Category:  row.Category,
					Club:      row.Club,
				})
			}
			athletes[idx].Points += earned
		}

		breakdown := RaceBreakdown{Sheet: race.Sheet, Label: race.Label}
		for _, club := range clubs {
			count := len(raceFinishers[club.Key])
			if count == 0 {
				continue
			}
			breakdown.Clubs = append(breakdown.Clubs, RaceClubPoints{
				Club:              club,
				Finishers:         count,
				PerformancePoints: racePoints[club.Key],
			})
		}
		races = append(races, breakdown)
	}

	roundCap := rules.roundCap(double)
	scores := make([]ClubScore, 0, len(clubs))
	for _, club := range clubs {
		entry, ok := input.ICL.Lookup(club.Key)
		if !ok {
			// member club without ICL data and without results this round
			continue
		}

		count := len(finishers[club.Key])
		participation := 0
		if count > 0 {
			participation = policy(count, rules.tiers(entry.Thresholds)) * multiplier
		}
		total := performance[club.Key] + participation

		scores = append(scores, ClubScore{
			Club:                club,
			Finishers:           count,
			PerformancePoints:   performance[club.Key],
			ParticipationPoints: participation,
			TotalPoints:         total,
			AdjustedTotalPoints: min(total, roundCap),
			ICLEligibleNumber:   entry.EligibleNumber,
		})
	}

	return RoundResult{
		League:       input.Round.League,
		Round:        input.Round.Round,
		Event:        input.Round.Event,
		DoublePoints: double,
		Cap:          roundCap,
		Clubs:        scores,
		Athletes:     athletes,
		Races:        races,
	}, nil
}

func addFinisher(set map[string]map[identity.AthleteKey]struct{}, club string, athlete identity.AthleteKey) {
	members, ok := set[club]
	if !ok {
		members = make(map[identity.AthleteKey]struct{})
		set[club] = members
	}
	members[athlete] = struct{}{}
}

// rankRace returns the unmultiplied performance points of every row of race,
// indexed like race.Rows. Points follow the category finish place itself, so rows
// dropped from the race or missing places never move anyone up.
func rankRace(race Race, rules Rules) ([]int, error) {
	points := make([]int, len(race.Rows))
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, row := range race.Rows {
		if row.Override != nil {
			points[i] = *row.Override
		}
		if !row.Placed {
			continue
		}
		key := identity.NormalizeName(row.Category)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range order {
		members := groups[key]
		sort.SliceStable(members, func(a, b int) bool {
			return race.Rows[members[a]].Place < race.Rows[members[b]].Place
		})

		for pos, idx := range members {
			row := race.Rows[idx]
			if pos > 0 && race.Rows[members[pos-1]].Place == row.Place {
				return nil, duplicatePlaceError(race, members, row.Place)
			}
			if row.Override == nil {
				points[idx] = rules.rankPoints(row.Place)
			}
		}
	}

	return points, nil
}

func duplicatePlaceError(race Race, members []int, place int) error {
	err := &DuplicateFinishPlaceError{Sheet: race.Sheet, Place: place}
	for _, idx := range members {
		row := race.Rows[idx]
		if row.Place != place {
			continue
		}
		err.Category = row.Category
		name := row.FullName()
		if row.TANumber != "" {
			name += " (" + row.TANumber + ")"
		}
		err.Athletes = append(err.Athletes, name)
	}
	return err
}
