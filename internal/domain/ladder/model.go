package ladder

import (
	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
)

// Standing is one ladder row.
type Standing struct {
	Rank                int
	Club                identity.Club
	ParticipationPoints int
	PerformancePoints   int
	TotalPoints         int
	AdjustedTotalPoints int
	ICLEligibleNumber   int
}

// MVPEntry is one individual ranking row.
type MVPEntry struct {
	Rank     int
	Athlete  identity.AthleteKey
	FullName string
	TANumber string
	Club     identity.Club
	Category string
	Points   int
}

// ClubMVP ranks one club's athletes inside their categories.
type ClubMVP struct {
	Club    identity.Club
	Entries []MVPEntry
}

// Report is everything produced for one processed round file.
type Report struct {
	League       string
	Round        int
	Event        string
	DoublePoints bool
	SourceFile   string
	RoundLadder  []Standing
	SeasonLadder []Standing
	RoundMVP     []MVPEntry
	SeasonMVP    []MVPEntry
	ClubMVPs     []ClubMVP
	Races        []scoring.RaceBreakdown
	// Warnings carries sheet-level problems that did not fail the file.
	Warnings []string
}
