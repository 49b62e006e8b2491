package jsonfile

import (
	"time"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
)

const documentVersion = 1

type ledgerDocument struct {
	Version int              `json:"version"`
	League  string           `json:"league"`
	Rounds  []roundEntryJSON `json:"rounds"`
}

type roundEntryJSON struct {
	Round        int                `json:"round"`
	Event        string             `json:"event,omitempty"`
	DoublePoints bool               `json:"double_points"`
	SourceFile   string             `json:"source_file,omitempty"`
	ProcessedAt  time.Time          `json:"processed_at"`
	Clubs        []clubScoreJSON    `json:"clubs"`
	Athletes     []athleteScoreJSON `json:"athletes"`
}

type clubScoreJSON struct {
	ClubKey             string `json:"club_key"`
	ClubName            string `json:"club_name"`
	Finishers           int    `json:"finishers"`
	PerformancePoints   int    `json:"performance_points"`
	ParticipationPoints int    `json:"participation_points"`
	TotalPoints         int    `json:"total_points"`
	AdjustedTotalPoints int    `json:"adjusted_total_points"`
	ICLEligibleNumber   int    `json:"icl_eligible_number"`
}

type athleteScoreJSON struct {
	Athlete   string `json:"athlete"`
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	TANumber  string `json:"ta_number,omitempty"`
	Category  string `json:"category"`
	ClubKey   string `json:"club_key"`
	ClubName  string `json:"club_name"`
	Points    int    `json:"points"`
}

func toDocument(l ledger.Ledger) ledgerDocument {
	doc := ledgerDocument{
		Version: documentVersion,
		League:  l.League,
		Rounds:  make([]roundEntryJSON, 0, len(l.Rounds)),
	}
	for _, entry := range l.Rounds {
		round := roundEntryJSON{
			Round:        entry.Round,
			Event:        entry.Event,
			DoublePoints: entry.DoublePoints,
			SourceFile:   entry.SourceFile,
			ProcessedAt:  entry.ProcessedAt.UTC(),
			Clubs:        make([]clubScoreJSON, 0, len(entry.Clubs)),
			Athletes:     make([]athleteScoreJSON, 0, len(entry.Athletes)),
		}
		for _, club := range entry.Clubs {
			round.Clubs = append(round.Clubs, clubScoreJSON{
				ClubKey:             club.Club.Key,
				ClubName:            club.Club.Name,
				Finishers:           club.Finishers,
				PerformancePoints:   club.PerformancePoints,
				ParticipationPoints: club.ParticipationPoints,
				TotalPoints:         club.TotalPoints,
				AdjustedTotalPoints: club.AdjustedTotalPoints,
				ICLEligibleNumber:   club.ICLEligibleNumber,
			})
		}
		for _, athlete := range entry.Athletes {
			round.Athletes = append(round.Athletes, athleteScoreJSON{
				Athlete:   string(athlete.Athlete),
				FirstName: athlete.FirstName,
				Surname:   athlete.Surname,
				TANumber:  athlete.TANumber,
				Category:  athlete.Category,
				ClubKey:   athlete.Club.Key,
				ClubName:  athlete.Club.Name,
				Points:    athlete.Points,
			})
		}
		doc.Rounds = append(doc.Rounds, round)
	}
	return doc
}

func (d ledgerDocument) toDomain() ledger.Ledger {
	out := ledger.Ledger{League: d.League, Rounds: make([]ledger.RoundEntry, 0, len(d.Rounds))}
	for _, round := range d.Rounds {
		entry := ledger.RoundEntry{
			League:       d.League,
			Round:        round.Round,
			Event:        round.Event,
			DoublePoints: round.DoublePoints,
			SourceFile:   round.SourceFile,
			ProcessedAt:  round.ProcessedAt,
			Clubs:        make([]scoring.ClubScore, 0, len(round.Clubs)),
			Athletes:     make([]scoring.AthleteScore, 0, len(round.Athletes)),
		}
		for _, club := range round.Clubs {
			entry.Clubs = append(entry.Clubs, scoring.ClubScore{
				Club:                identity.Club{Key: club.ClubKey, Name: club.ClubName},
				Finishers:           club.Finishers,
				PerformancePoints:   club.PerformancePoints,
				ParticipationPoints: club.ParticipationPoints,
				TotalPoints:         club.TotalPoints,
				AdjustedTotalPoints: club.AdjustedTotalPoints,
				ICLEligibleNumber:   club.ICLEligibleNumber,
			})
		}
		for _, athlete := range round.Athletes {
			entry.Athletes = append(entry.Athletes, scoring.AthleteScore{
				Athlete:   identity.AthleteKey(athlete.Athlete),
				FirstName: athlete.FirstName,
				Surname:   athlete.Surname,
				TANumber:  athlete.TANumber,
				Category:  athlete.Category,
				Club:      identity.Club{Key: athlete.ClubKey, Name: athlete.ClubName},
				Points:    athlete.Points,
			})
		}
		out.Rounds = append(out.Rounds, entry)
	}
	return out
}
