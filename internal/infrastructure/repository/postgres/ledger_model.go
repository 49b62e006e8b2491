package postgres

import "time"

type ledgerRoundTableModel struct {
	ID           int64     `db:"id"`
	LeagueKey    string    `db:"league_key"`
	LeagueName   string    `db:"league_name"`
	RoundNo      int       `db:"round_no"`
	Event        string    `db:"event"`
	DoublePoints bool      `db:"double_points"`
	SourceFile   string    `db:"source_file"`
	ProcessedAt  time.Time `db:"processed_at"`
}

type ledgerRoundInsertModel struct {
	LeagueKey    string    `db:"league_key"`
	LeagueName   string    `db:"league_name"`
	RoundNo      int       `db:"round_no"`
	Event        string    `db:"event"`
	DoublePoints bool      `db:"double_points"`
	SourceFile   string    `db:"source_file"`
	ProcessedAt  time.Time `db:"processed_at"`
}

type clubScoreModel struct {
	ID                  int64  `db:"id,readonly"`
	RoundID             int64  `db:"round_id"`
	ClubKey             string `db:"club_key"`
	ClubName            string `db:"club_name"`
	Finishers           int    `db:"finishers"`
	PerformancePoints   int    `db:"performance_points"`
	ParticipationPoints int    `db:"participation_points"`
	TotalPoints         int    `db:"total_points"`
	AdjustedTotalPoints int    `db:"adjusted_total_points"`
	ICLEligibleNumber   int    `db:"icl_eligible_number"`
}

type athleteScoreModel struct {
	ID         int64  `db:"id,readonly"`
	RoundID    int64  `db:"round_id"`
	AthleteKey string `db:"athlete_key"`
	FirstName  string `db:"first_name"`
	Surname    string `db:"surname"`
	TANumber   string `db:"ta_number"`
	Category   string `db:"category"`
	ClubKey    string `db:"club_key"`
	ClubName   string `db:"club_name"`
	Points     int    `db:"points"`
}
