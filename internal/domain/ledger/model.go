package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
)

var (
	ErrRoundAlreadyRecorded = errors.New("round already recorded in season ledger")
	ErrLeagueMismatch       = errors.New("round belongs to another league")
)

// RoundEntry is one processed round as stored in the season ledger.
type RoundEntry struct {
	League       string
	Round        int
	Event        string
	DoublePoints bool
	SourceFile   string
	ProcessedAt  time.Time
	Clubs        []scoring.ClubScore
	Athletes     []scoring.AthleteScore
}

// EntryFromResult snapshots a scored round for the ledger.
func EntryFromResult(result scoring.RoundResult, sourceFile string, processedAt time.Time) RoundEntry {
	return RoundEntry{
		League:       result.League,
		Round:        result.Round,
		Event:        result.Event,
		DoublePoints: result.DoublePoints,
		SourceFile:   sourceFile,
		ProcessedAt:  processedAt.UTC(),
		Clubs:        append([]scoring.ClubScore(nil), result.Clubs...),
		Athletes:     append([]scoring.AthleteScore(nil), result.Athletes...),
	}
}

// Ledger is the season history of one league. Rounds are kept in append order.
type Ledger struct {
	League string
	Rounds []RoundEntry
}

// Key is the normalized league name ledgers are stored under.
func Key(league string) string {
	return identity.NormalizeName(league)
}

func (l Ledger) HasRound(round int) bool {
	for _, entry := range l.Rounds {
		if entry.Round == round {
			return true
		}
	}
	return false
}

// Append returns a copy of the ledger with entry added. Recorded rounds are never replaced.
func (l Ledger) Append(entry RoundEntry) (Ledger, error) {
	if l.League != "" && Key(l.League) != Key(entry.League) {
		return l, fmt.Errorf("%w: ledger=%s round league=%s", ErrLeagueMismatch, l.League, entry.League)
	}
	if l.HasRound(entry.Round) {
		return l, fmt.Errorf("%w: league=%s round=%d", ErrRoundAlreadyRecorded, entry.League, entry.Round)
	}

	next := Ledger{League: l.League, Rounds: make([]RoundEntry, 0, len(l.Rounds)+1)}
	if next.League == "" {
		next.League = strings.Join(strings.Fields(entry.League), " ")
	}
	next.Rounds = append(next.Rounds, l.Rounds...)
	next.Rounds = append(next.Rounds, entry)
	return next, nil
}

// Clone deep-copies the ledger so callers can't alias stored score slices.
func (l Ledger) Clone() Ledger {
	out := Ledger{League: l.League, Rounds: make([]RoundEntry, 0, len(l.Rounds))}
	for _, entry := range l.Rounds {
		entry.Clubs = append([]scoring.ClubScore(nil), entry.Clubs...)
		entry.Athletes = append([]scoring.AthleteScore(nil), entry.Athletes...)
		out.Rounds = append(out.Rounds, entry)
	}
	return out
}

// RoundNumbers lists recorded rounds ascending.
func (l Ledger) RoundNumbers() []int {
	out := make([]int, 0, len(l.Rounds))
	for _, entry := range l.Rounds {
		out = append(out, entry.Round)
	}
	sort.Ints(out)
	return out
}

// ClubTotal is a club's cumulative season figures.
type ClubTotal struct {
	Club                identity.Club
	Rounds              int
	ParticipationPoints int
	PerformancePoints   int
	TotalPoints         int
	AdjustedTotalPoints int
	// ICLEligibleNumber comes from the highest-numbered round the club was scored in.
	ICLEligibleNumber int
}

// ClubTotals sums every recorded round per club. Season totals are not capped.
func (l Ledger) ClubTotals() []ClubTotal {
	index := make(map[string]int)
	latest := make(map[string]int)
	out := make([]ClubTotal, 0)
	for _, entry := range l.Rounds {
		for _, score := range entry.Clubs {
			idx, ok := index[score.Club.Key]
			if !ok {
				idx = len(out)
				index[score.Club.Key] = idx
				out = append(out, ClubTotal{Club: score.Club})
			}

			total := &out[idx]
			total.Rounds++
			total.ParticipationPoints += score.ParticipationPoints
			total.PerformancePoints += score.PerformancePoints
			total.TotalPoints += score.TotalPoints
			total.AdjustedTotalPoints += score.AdjustedTotalPoints
			if round, seen := latest[score.Club.Key]; !seen || entry.Round >= round {
				latest[score.Club.Key] = entry.Round
				total.ICLEligibleNumber = score.ICLEligibleNumber
				total.Club.Name = score.Club.Name
			}
		}
	}
	return out
}

// AthleteTotal is an athlete's cumulative performance points for one club. Category
// is the first category recorded for the athlete.
type AthleteTotal struct {
	Athlete   identity.AthleteKey
	FirstName string
	Surname   string
	TANumber  string
	Category  string
	Club      identity.Club
	Rounds    int
	Points    int
}

func (a AthleteTotal) FullName() string {
	return identity.FullName(a.FirstName, a.Surname)
}

// AthleteTotals sums performance points per (athlete, club) over every recorded round.
func (l Ledger) AthleteTotals() []AthleteTotal {
	type key struct {
		athlete identity.AthleteKey
		club    string
	}
	index := make(map[key]int)
	out := make([]AthleteTotal, 0)
	for _, entry := range l.Rounds {
		for _, score := range entry.Athletes {
			k := key{athlete: score.Athlete, club: score.Club.Key}
			idx, ok := index[k]
			if !ok {
				idx = len(out)
				index[k] = idx
				out = append(out, AthleteTotal{
					Athlete:   score.Athlete,
					FirstName: score.FirstName,
					Surname:   score.Surname,
					TANumber:  score.TANumber,
					Category:  score.Category,
					Club:      score.Club,
				})
			}
			out[idx].Rounds++
			out[idx].Points += score.Points
		}
	}
	return out
}
