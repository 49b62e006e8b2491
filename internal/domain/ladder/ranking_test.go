package ladder

import (
	"testing"
	"time"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
	"github.com/stretchr/testify/require"
)

var (
	bondi  = identity.Club{Key: "bondi tri", Name: "Bondi Tri"}
	coogee = identity.Club{Key: "coogee tri", Name: "Coogee Tri"}
	manly  = identity.Club{Key: "manly tri", Name: "Manly Tri"}
)

func clubNames(items []Standing) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Club.Name)
	}
	return out
}

func TestRoundLadder_TieBreaks(t *testing.T) {
	result := scoring.RoundResult{Clubs: []scoring.ClubScore{
		{Club: manly, TotalPoints: 160, AdjustedTotalPoints: 150},
		{Club: coogee, TotalPoints: 150, AdjustedTotalPoints: 150},
		{Club: bondi, TotalPoints: 150, AdjustedTotalPoints: 150},
		{Club: identity.Club{Key: "orange tri", Name: "Orange Tri"}, TotalPoints: 151, AdjustedTotalPoints: 151},
	}}

	got := RoundLadder(result)
	require.Equal(t, []string{"Orange Tri", "Manly Tri", "Bondi Tri", "Coogee Tri"}, clubNames(got))
	for i, item := range got {
		if item.Rank != i+1 {
			t.Fatalf("unexpected rank at %d: %d", i, item.Rank)
		}
	}
}

func TestRoundMVP_TieBreaks(t *testing.T) {
	result := scoring.RoundResult{Athletes: []scoring.AthleteScore{
		{Athlete: "ta:3", FirstName: "Zoe", Surname: "Smith", TANumber: "3", Club: bondi, Points: 10},
		{Athlete: "ta:2", FirstName: "Amy", Surname: "Smith", TANumber: "2", Club: manly, Points: 10},
		{Athlete: "ta:1", FirstName: "Amy", Surname: "Smith", TANumber: "1", Club: coogee, Points: 10},
		{Athlete: "ta:4", FirstName: "Bob", Surname: "Jones", TANumber: "4", Club: bondi, Points: 19},
	}}

	got := RoundMVP(result)
	order := make([]identity.AthleteKey, 0, len(got))
	for _, entry := range got {
		order = append(order, entry.Athlete)
	}
	require.Equal(t, []identity.AthleteKey{"ta:4", "ta:1", "ta:2", "ta:3"}, order)
	require.Equal(t, "Bob Jones", got[0].FullName)
}

func TestClubMVPs_GroupsByCategory(t *testing.T) {
	result := scoring.RoundResult{
		Clubs: []scoring.ClubScore{
			{Club: bondi, AdjustedTotalPoints: 20},
			{Club: manly, AdjustedTotalPoints: 40},
		},
		Athletes: []scoring.AthleteScore{
			{Athlete: "ta:1", FirstName: "A", TANumber: "1", Category: "Male 30-34", Club: bondi, Points: 8},
			{Athlete: "ta:2", FirstName: "B", TANumber: "2", Category: "Female Open", Club: bondi, Points: 7},
			{Athlete: "ta:3", FirstName: "C", TANumber: "3", Category: "Male 30-34", Club: bondi, Points: 10},
			{Athlete: "ta:4", FirstName: "D", TANumber: "4", Category: "Male Open", Club: manly, Points: 40},
		},
	}

	got := ClubMVPs(result)
	require.Len(t, got, 2)
	require.Equal(t, manly, got[0].Club)

	bondiMVP := got[1].Entries
	require.Len(t, bondiMVP, 3)
	require.Equal(t, "Female Open", bondiMVP[0].Category)
	require.Equal(t, 1, bondiMVP[0].Rank)
	require.Equal(t, identity.AthleteKey("ta:3"), bondiMVP[1].Athlete)
	require.Equal(t, 1, bondiMVP[1].Rank)
	require.Equal(t, identity.AthleteKey("ta:1"), bondiMVP[2].Athlete)
	require.Equal(t, 2, bondiMVP[2].Rank)
}

func TestSeasonLadder_CumulativeSum(t *testing.T) {
	adjusted := [][2]int{{150, 40}, {120, 130}, {300, 10}}
	var l ledger.Ledger
	var err error
	want := map[string]int{}

	for i, pair := range adjusted {
		l, err = l.Append(ledger.RoundEntry{
			League: "Sydney Premier League",
			Round:  i + 1,
			Clubs: []scoring.ClubScore{
				{Club: bondi, TotalPoints: pair[0], AdjustedTotalPoints: pair[0]},
				{Club: manly, TotalPoints: pair[1], AdjustedTotalPoints: pair[1]},
			},
		})
		require.NoError(t, err)
		want[bondi.Name] += pair[0]
		want[manly.Name] += pair[1]

		for _, standing := range SeasonLadder(l) {
			if standing.AdjustedTotalPoints != want[standing.Club.Name] {
				t.Fatalf("round %d %s: got=%d want=%d", i+1, standing.Club.Name, standing.AdjustedTotalPoints, want[standing.Club.Name])
			}
		}
	}

	require.Equal(t, []string{"Bondi Tri", "Manly Tri"}, clubNames(SeasonLadder(l)))
}

func TestBuildReport(t *testing.T) {
	result := scoring.RoundResult{
		League: "Sydney Premier League",
		Round:  1,
		Clubs:  []scoring.ClubScore{{Club: bondi, TotalPoints: 30, AdjustedTotalPoints: 30}},
		Athletes: []scoring.AthleteScore{
			{Athlete: "ta:1", FirstName: "Jane", Surname: "Citizen", TANumber: "1", Club: bondi, Points: 10},
		},
		Races: []scoring.RaceBreakdown{{Sheet: "Sprint", Label: "sprint"}},
	}
	l, err := ledger.Ledger{}.Append(ledger.EntryFromResult(result, "round1.xlsx", time.Now()))
	require.NoError(t, err)

	report := BuildReport(result, l, "round1.xlsx", []string{"sheet skipped"})
	require.Len(t, report.RoundLadder, 1)
	require.Len(t, report.SeasonLadder, 1)
	require.Len(t, report.RoundMVP, 1)
	require.Len(t, report.SeasonMVP, 1)
	require.Len(t, report.ClubMVPs, 1)
	require.Len(t, report.Races, 1)
	require.Equal(t, []string{"sheet skipped"}, report.Warnings)
}
