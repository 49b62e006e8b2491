package ladder

import (
	"sort"
	"strings"

	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
)

func rankStandings(items []Standing) []Standing {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.AdjustedTotalPoints != b.AdjustedTotalPoints {
			return a.AdjustedTotalPoints > b.AdjustedTotalPoints
		}
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return strings.ToLower(a.Club.Name) < strings.ToLower(b.Club.Name)
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

func lessMVP(a, b MVPEntry) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	an, bn := strings.ToLower(a.FullName), strings.ToLower(b.FullName)
	if an != bn {
		return an < bn
	}
	if a.TANumber != b.TANumber {
		return a.TANumber < b.TANumber
	}
	return a.Club.Name < b.Club.Name
}

func rankMVP(items []MVPEntry) []MVPEntry {
	sort.SliceStable(items, func(i, j int) bool {
		return lessMVP(items[i], items[j])
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

// RoundLadder ranks clubs by adjusted total, then raw total, then club name.
func RoundLadder(result scoring.RoundResult) []Standing {
	items := make([]Standing, 0, len(result.Clubs))
	for _, score := range result.Clubs {
		items = append(items, Standing{
			Club:                score.Club,
			ParticipationPoints: score.ParticipationPoints,
			PerformancePoints:   score.PerformancePoints,
			TotalPoints:         score.TotalPoints,
			AdjustedTotalPoints: score.AdjustedTotalPoints,
			ICLEligibleNumber:   score.ICLEligibleNumber,
		})
	}
	return rankStandings(items)
}

// SeasonLadder ranks the cumulative club totals of a ledger with the round ladder rules.
func SeasonLadder(l ledger.Ledger) []Standing {
	totals := l.ClubTotals()
	items := make([]Standing, 0, len(totals))
	for _, total := range totals {
		items = append(items, Standing{
			Club:                total.Club,
			ParticipationPoints: total.ParticipationPoints,
			PerformancePoints:   total.PerformancePoints,
			TotalPoints:         total.TotalPoints,
			AdjustedTotalPoints: total.AdjustedTotalPoints,
			ICLEligibleNumber:   total.ICLEligibleNumber,
		})
	}
	return rankStandings(items)
}

// RoundMVP ranks athletes by round performance points, then name, then TA number.
func RoundMVP(result scoring.RoundResult) []MVPEntry {
	items := make([]MVPEntry, 0, len(result.Athletes))
	for _, athlete := range result.Athletes {
		items = append(items, MVPEntry{
			Athlete:  athlete.Athlete,
			FullName: athlete.FullName(),
			TANumber: athlete.TANumber,
			Club:     athlete.Club,
			Category: athlete.Category,
			Points:   athlete.Points,
		})
	}
	return rankMVP(items)
}

func SeasonMVP(l ledger.Ledger) []MVPEntry {
	totals := l.AthleteTotals()
	items := make([]MVPEntry, 0, len(totals))
	for _, total := range totals {
		items = append(items, MVPEntry{
			Athlete:  total.Athlete,
			FullName: total.FullName(),
			TANumber: total.TANumber,
			Club:     total.Club,
			Category: total.Category,
			Points:   total.Points,
		})
	}
	return rankMVP(items)
}

// ClubMVPs groups the round MVP by club, in round ladder order. Inside a club the
// entries are ordered by category and ranked within each category.
func ClubMVPs(result scoring.RoundResult) []ClubMVP {
	entries := RoundMVP(result)
	byClub := make(map[string][]MVPEntry)
	for _, entry := range entries {
		byClub[entry.Club.Key] = append(byClub[entry.Club.Key], entry)
	}

	out := make([]ClubMVP, 0, len(byClub))
	for _, standing := range RoundLadder(result) {
		items, ok := byClub[standing.Club.Key]
		if !ok {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			ci, cj := strings.ToLower(items[i].Category), strings.ToLower(items[j].Category)
			if ci != cj {
				return ci < cj
			}
			return lessMVP(items[i], items[j])
		})
		rank := 0
		for i := range items {
			if i == 0 || !strings.EqualFold(items[i].Category, items[i-1].Category) {
				rank = 0
			}
			rank++
			items[i].Rank = rank
		}
		out = append(out, ClubMVP{Club: standing.Club, Entries: items})
	}
	return out
}

// BuildReport assembles the round and season views. l must already include the round.
func BuildReport(result scoring.RoundResult, l ledger.Ledger, sourceFile string, warnings []string) Report {
	return Report{
		League:       result.League,
		Round:        result.Round,
		Event:        result.Event,
		DoublePoints: result.DoublePoints,
		SourceFile:   sourceFile,
		RoundLadder:  RoundLadder(result),
		SeasonLadder: SeasonLadder(l),
		RoundMVP:     RoundMVP(result),
		SeasonMVP:    SeasonMVP(l),
		ClubMVPs:     ClubMVPs(result),
		Races:        result.Races,
		Warnings:     warnings,
	}
}
