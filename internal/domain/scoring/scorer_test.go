package scoring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
	"github.com/stretchr/testify/require"
)

var (
	bondi      = identity.Club{Key: "bondi tri", Name: "Bondi Tri"}
	manly      = identity.Club{Key: "manly tri", Name: "Manly Tri"}
	scoredRace = season.Eligibility{Performance: true, Participation: true}
)

func finisher(club identity.Club, category string, place int, ta string) ResultRow {
	return ResultRow{
		Athlete:   identity.AthleteKeyOf(ta, "", ""),
		FirstName: "Athlete",
		Surname:   ta,
		TANumber:  ta,
		Category:  category,
		Place:     place,
		Placed:    place > 0,
		Club:      club,
	}
}

func iclTable(t *testing.T, entries ...ICLEntry) ICLTable {
	t.Helper()
	table, err := NewICLTable(entries)
	require.NoError(t, err)
	return table
}

func defaultICL(t *testing.T) ICLTable {
	return iclTable(t,
		ICLEntry{Club: bondi, EligibleNumber: 100, Thresholds: DeriveThresholds(100)},
		ICLEntry{Club: manly, EligibleNumber: 40, Thresholds: DeriveThresholds(40)},
	)
}

func roundInput(t *testing.T, double bool, races ...Race) RoundInput {
	return RoundInput{
		Round: season.RoundConfig{League: "Sydney Premier League", Round: 1, DoublePoints: double},
		Clubs: []identity.Club{bondi, manly},
		ICL:   defaultICL(t),
		Races: races,
	}
}

func TestScore_CategoryPointSums(t *testing.T) {
	for n := 1; n <= 14; n++ {
		t.Run(fmt.Sprintf("%d finishers", n), func(t *testing.T) {
			rows := make([]ResultRow, 0, n)
			for place := 1; place <= n; place++ {
				rows = append(rows, finisher(bondi, "Female 25-29", place, fmt.Sprintf("TA%03d", place)))
			}
			result, err := Score(roundInput(t, false, Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: rows}), DefaultRules())
			require.NoError(t, err)

			want := 0
			for rank := 1; rank <= min(n, 10); rank++ {
				want += 11 - rank
			}
			sum := 0
			for _, athlete := range result.Athletes {
				sum += athlete.Points
			}
			if sum != want {
				t.Fatalf("unexpected category sum: got=%d want=%d", sum, want)
			}
		})
	}
}

func TestScore_MalePlacesOneToThree(t *testing.T) {
	race := Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: []ResultRow{
		finisher(manly, "Male 30-34", 3, "C"),
		finisher(bondi, "Male 30-34", 1, "A"),
		finisher(bondi, "Male 30-34", 2, "B"),
	}}

	result, err := Score(roundInput(t, false, race), DefaultRules())
	require.NoError(t, err)

	got := map[string]int{}
	for _, athlete := range result.Athletes {
		got[athlete.TANumber] = athlete.Points
	}
	require.Equal(t, map[string]int{"A": 10, "B": 9, "C": 8}, got)

	clubs := map[string]ClubScore{}
	for _, club := range result.Clubs {
		clubs[club.Club.Key] = club
	}
	if clubs[bondi.Key].PerformancePoints != 19 {
		t.Fatalf("unexpected bondi performance: %d", clubs[bondi.Key].PerformancePoints)
	}
	if clubs[manly.Key].PerformancePoints != 8 {
		t.Fatalf("unexpected manly performance: %d", clubs[manly.Key].PerformancePoints)
	}
}

func TestScore_RankSkipsMissingPlaces(t *testing.T) {
	race := Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: []ResultRow{
		finisher(bondi, "Male Open", 4, "A"),
		finisher(bondi, "Male Open", 0, "B"),
		finisher(bondi, "Male Open", 7, "C"),
	}}

	result, err := Score(roundInput(t, false, race), DefaultRules())
	require.NoError(t, err)
	require.Equal(t, 7, result.Athletes[0].Points)
	require.Equal(t, 0, result.Athletes[1].Points)
	require.Equal(t, 4, result.Athletes[2].Points)
	require.Equal(t, 3, result.Clubs[0].Finishers)
}

func TestScore_AthleteInTwoCategories(t *testing.T) {
	race := Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: []ResultRow{
		finisher(bondi, "Male Open", 2, "A"),
		finisher(bondi, "Male 30-34", 1, "A"),
	}}

	result, err := Score(roundInput(t, false, race), DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Athletes, 2)

	got := map[string]int{}
	for _, athlete := range result.Athletes {
		got[athlete.Category] = athlete.Points
	}
	require.Equal(t, map[string]int{"Male Open": 9, "Male 30-34": 10}, got)
	require.Equal(t, 1, result.Clubs[0].Finishers)
	require.Equal(t, 19, result.Clubs[0].PerformancePoints)
}

func TestScore_OverrideReplacesRankPoints(t *testing.T) {
	override := 25
	first := finisher(bondi, "Relay", 1, "A")
	first.Override = &override
	race := Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: []ResultRow{
		first,
		finisher(bondi, "Relay", 2, "B"),
	}}

	result, err := Score(roundInput(t, false, race), DefaultRules())
	require.NoError(t, err)
	require.Equal(t, 25, result.Athletes[0].Points)
	require.Equal(t, 9, result.Athletes[1].Points)
}

func TestScore_ParticipationScenario(t *testing.T) {
	rows := make([]ResultRow, 0, 22)
	for i := 0; i < 22; i++ {
		rows = append(rows, finisher(bondi, fmt.Sprintf("Cat %d", i), 0, fmt.Sprintf("TA%02d", i)))
	}
	// the same athletes again in a second race must not count twice
	repeat := append([]ResultRow(nil), rows[:5]...)

	result, err := Score(roundInput(t, false,
		Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: rows},
		Race{Sheet: "Enticer", Eligibility: season.Eligibility{Participation: true}, Rows: repeat},
	), DefaultRules())
	require.NoError(t, err)

	club := result.Clubs[0]
	if club.Finishers != 22 {
		t.Fatalf("unexpected distinct finishers: %d", club.Finishers)
	}
	if club.ParticipationPoints != 45 {
		t.Fatalf("unexpected participation points: got=%d want=45", club.ParticipationPoints)
	}
	if result.Clubs[1].ParticipationPoints != 0 {
		t.Fatalf("club without finishers should earn no participation: %d", result.Clubs[1].ParticipationPoints)
	}
}

func TestParticipationPolicies(t *testing.T) {
	rules := DefaultRules()
	tiers := rules.tiers(DeriveThresholds(100))

	tests := []struct {
		finishers  int
		highest    int
		cumulative int
	}{
		{finishers: 4, highest: 0, cumulative: 0},
		{finishers: 5, highest: 15, cumulative: 15},
		{finishers: 12, highest: 30, cumulative: 45},
		{finishers: 22, highest: 45, cumulative: 90},
	}
	for _, tc := range tests {
		if got := HighestTier(tc.finishers, tiers); got != tc.highest {
			t.Fatalf("highest tier for %d: got=%d want=%d", tc.finishers, got, tc.highest)
		}
		if got := CumulativeTiers(tc.finishers, tiers); got != tc.cumulative {
			t.Fatalf("cumulative tiers for %d: got=%d want=%d", tc.finishers, got, tc.cumulative)
		}
	}

	policy, err := PolicyByName("Cumulative")
	require.NoError(t, err)
	require.Equal(t, 90, policy(22, tiers))

	_, err = PolicyByName("average")
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func bigRound() []Race {
	rows := make([]ResultRow, 0, 40)
	for i := 0; i < 20; i++ {
		rows = append(rows, finisher(bondi, fmt.Sprintf("Cat %d", i), 1, fmt.Sprintf("B%02d", i)))
		rows = append(rows, finisher(manly, fmt.Sprintf("Cat %d", i), 2, fmt.Sprintf("M%02d", i)))
	}
	return []Race{{Sheet: "Standard", Eligibility: scoredRace, Rows: rows}}
}

func TestScore_CapAndDoublePoints(t *testing.T) {
	normal, err := Score(roundInput(t, false, bigRound()...), DefaultRules())
	require.NoError(t, err)
	double, err := Score(roundInput(t, true, bigRound()...), DefaultRules())
	require.NoError(t, err)

	for i, club := range normal.Clubs {
		if club.AdjustedTotalPoints > 150 || club.AdjustedTotalPoints != min(club.TotalPoints, 150) {
			t.Fatalf("normal cap violated for %s: %+v", club.Club.Name, club)
		}

		doubled := double.Clubs[i]
		if doubled.AdjustedTotalPoints > 300 || doubled.AdjustedTotalPoints != min(doubled.TotalPoints, 300) {
			t.Fatalf("double cap violated for %s: %+v", doubled.Club.Name, doubled)
		}
		if doubled.TotalPoints != 2*(club.PerformancePoints+club.ParticipationPoints) {
			t.Fatalf("double total for %s: got=%d want=%d", club.Club.Name, doubled.TotalPoints, 2*club.TotalPoints)
		}
	}

	// bondi: 20 wins * 10 + 45 participation (20 >= 20% of 100)
	require.Equal(t, 245, normal.Clubs[0].TotalPoints)
	require.Equal(t, 150, normal.Clubs[0].AdjustedTotalPoints)
	require.Equal(t, 490, double.Clubs[0].TotalPoints)
	require.Equal(t, 300, double.Clubs[0].AdjustedTotalPoints)
	require.Equal(t, 300, double.Cap)
}

func TestScore_DuplicateFinishPlace(t *testing.T) {
	race := Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: []ResultRow{
		finisher(bondi, "Female Open", 1, "A"),
		finisher(manly, "Female Open", 1, "B"),
		finisher(manly, "Female 40-44", 1, "C"),
	}}

	_, err := Score(roundInput(t, false, race), DefaultRules())
	require.ErrorIs(t, err, ErrDuplicateFinishPlace)

	var dup *DuplicateFinishPlaceError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "Female Open", dup.Category)
	require.Equal(t, 1, dup.Place)
	require.Len(t, dup.Athletes, 2)
}

func TestScore_DuplicatePlaceInParticipationOnlyRaceIsIgnored(t *testing.T) {
	race := Race{Sheet: "Enticer", Eligibility: season.Eligibility{Participation: true}, Rows: []ResultRow{
		finisher(bondi, "Female Open", 1, "A"),
		finisher(manly, "Female Open", 1, "B"),
	}}

	result, err := Score(roundInput(t, false, race), DefaultRules())
	require.NoError(t, err)
	require.Empty(t, result.Athletes)
	require.Equal(t, 0, result.Clubs[0].PerformancePoints)
}

func TestScore_MissingICLData(t *testing.T) {
	coogee := identity.Club{Key: "coogee tri", Name: "Coogee Tri"}
	input := roundInput(t, false, Race{Sheet: "Sprint", Eligibility: scoredRace, Rows: []ResultRow{
		finisher(coogee, "Male Open", 1, "A"),
	}})
	input.Clubs = append(input.Clubs, coogee)

	_, err := Score(input, DefaultRules())
	if !errors.Is(err, ErrMissingICLData) {
		t.Fatalf("expected ErrMissingICLData, got %v", err)
	}
	var missing *MissingICLDataError
	if !errors.As(err, &missing) || missing.Club != "Coogee Tri" || missing.Sheet != "Sprint" {
		t.Fatalf("unexpected error context: %v", err)
	}
}

func TestScore_RaceBreakdown(t *testing.T) {
	result, err := Score(roundInput(t, true,
		Race{Sheet: "Sprint", Label: "sprint", Eligibility: scoredRace, Rows: []ResultRow{
			finisher(manly, "Male Open", 1, "A"),
			finisher(bondi, "Male Open", 2, "B"),
			finisher(bondi, "Male Open", 3, "C"),
		}},
	), DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Races, 1)

	breakdown := result.Races[0]
	require.Equal(t, []RaceClubPoints{
		{Club: bondi, Finishers: 2, PerformancePoints: 34},
		{Club: manly, Finishers: 1, PerformancePoints: 20},
	}, breakdown.Clubs)
}
