package httpapi

import (
	"time"

	"github.com/riskibarqy/icl-ladder/internal/domain/ladder"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
	"github.com/riskibarqy/icl-ladder/internal/usecase"
)

type leagueDTO struct {
	Name string `json:"name"`
}

type standingDTO struct {
	Rank                int    `json:"rank"`
	Club                string `json:"club"`
	ParticipationPoints int    `json:"participation_points"`
	PerformancePoints   int    `json:"performance_points"`
	TotalPoints         int    `json:"total_points"`
	AdjustedTotalPoints int    `json:"adjusted_total_points"`
	ICLEligibleNumber   int    `json:"icl_eligible_number,omitempty"`
}

type mvpEntryDTO struct {
	Rank     int    `json:"rank"`
	FullName string `json:"full_name"`
	TANumber string `json:"ta_number,omitempty"`
	Club     string `json:"club"`
	Category string `json:"category,omitempty"`
	Points   int    `json:"points"`
}

type clubMVPDTO struct {
	Club    string        `json:"club"`
	Entries []mvpEntryDTO `json:"entries"`
}

type raceClubPointsDTO struct {
	Club              string `json:"club"`
	Finishers         int    `json:"finishers"`
	PerformancePoints int    `json:"performance_points"`
}

type raceBreakdownDTO struct {
	Sheet string              `json:"sheet"`
	Race  string              `json:"race"`
	Clubs []raceClubPointsDTO `json:"clubs"`
}

type roundSummaryDTO struct {
	Round        int    `json:"round"`
	Event        string `json:"event,omitempty"`
	DoublePoints bool   `json:"double_points"`
	SourceFile   string `json:"source_file,omitempty"`
	ProcessedAt  string `json:"processed_at,omitempty"`
	Clubs        int    `json:"clubs"`
	Athletes     int    `json:"athletes"`
}

type roundReportDTO struct {
	League       string             `json:"league"`
	Round        int                `json:"round"`
	Event        string             `json:"event,omitempty"`
	DoublePoints bool               `json:"double_points"`
	SourceFile   string             `json:"source_file"`
	ReportPath   string             `json:"report_path,omitempty"`
	RoundLadder  []standingDTO      `json:"round_ladder"`
	SeasonLadder []standingDTO      `json:"season_ladder"`
	RoundMVP     []mvpEntryDTO      `json:"round_mvp"`
	SeasonMVP    []mvpEntryDTO      `json:"season_mvp"`
	ClubMVPs     []clubMVPDTO       `json:"club_mvps"`
	Races        []raceBreakdownDTO `json:"races"`
	Warnings     []string           `json:"warnings,omitempty"`
}

func standingsToDTO(items []ladder.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, standingDTO{
			Rank:                item.Rank,
			Club:                item.Club.Name,
			ParticipationPoints: item.ParticipationPoints,
			PerformancePoints:   item.PerformancePoints,
			TotalPoints:         item.TotalPoints,
			AdjustedTotalPoints: item.AdjustedTotalPoints,
			ICLEligibleNumber:   item.ICLEligibleNumber,
		})
	}
	return out
}

func mvpToDTO(items []ladder.MVPEntry) []mvpEntryDTO {
	out := make([]mvpEntryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, mvpEntryDTO{
			Rank:     item.Rank,
			FullName: item.FullName,
			TANumber: item.TANumber,
			Club:     item.Club.Name,
			Category: item.Category,
			Points:   item.Points,
		})
	}
	return out
}

func racesToDTO(items []scoring.RaceBreakdown) []raceBreakdownDTO {
	out := make([]raceBreakdownDTO, 0, len(items))
	for _, item := range items {
		clubs := make([]raceClubPointsDTO, 0, len(item.Clubs))
		for _, club := range item.Clubs {
			clubs = append(clubs, raceClubPointsDTO{
				Club:              club.Club.Name,
				Finishers:         club.Finishers,
				PerformancePoints: club.PerformancePoints,
			})
		}
		out = append(out, raceBreakdownDTO{Sheet: item.Sheet, Race: item.Label, Clubs: clubs})
	}
	return out
}

func roundSummaryToDTO(item usecase.RoundSummary) roundSummaryDTO {
	out := roundSummaryDTO{
		Round:        item.Round,
		Event:        item.Event,
		DoublePoints: item.DoublePoints,
		SourceFile:   item.SourceFile,
		Clubs:        item.Clubs,
		Athletes:     item.Athletes,
	}
	if !item.ProcessedAt.IsZero() {
		out.ProcessedAt = item.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func reportToDTO(report ladder.Report, reportPath string) roundReportDTO {
	clubMVPs := make([]clubMVPDTO, 0, len(report.ClubMVPs))
	for _, item := range report.ClubMVPs {
		clubMVPs = append(clubMVPs, clubMVPDTO{Club: item.Club.Name, Entries: mvpToDTO(item.Entries)})
	}

	return roundReportDTO{
		League:       report.League,
		Round:        report.Round,
		Event:        report.Event,
		DoublePoints: report.DoublePoints,
		SourceFile:   report.SourceFile,
		ReportPath:   reportPath,
		RoundLadder:  standingsToDTO(report.RoundLadder),
		SeasonLadder: standingsToDTO(report.SeasonLadder),
		RoundMVP:     mvpToDTO(report.RoundMVP),
		SeasonMVP:    mvpToDTO(report.SeasonMVP),
		ClubMVPs:     clubMVPs,
		Races:        racesToDTO(report.Races),
		Warnings:     report.Warnings,
	}
}
