package postgres

import (
	"testing"
	"time"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
)

var bondi = identity.Club{Key: "bondi tri", Name: "Bondi Tri"}

func TestInsertRoundQuery(t *testing.T) {
	entry := ledger.RoundEntry{
		League:       " Sydney  Premier League ",
		Round:        3,
		Event:        " Cronulla ",
		DoublePoints: true,
		SourceFile:   "Sydney Premier League Round 3 Cronulla.xlsx",
		ProcessedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("AEDT", 11*3600)),
	}

	query, args, err := insertRoundQuery("Sydney Premier League", entry)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	want := "INSERT INTO ledger_rounds (league_key, league_name, round_no, event, double_points, source_file, processed_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id"
	if query != want {
		t.Fatalf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 7 {
		t.Fatalf("expected 7 args, got %d", len(args))
	}
	if args[0] != "sydney premier league" || args[1] != "Sydney Premier League" || args[3] != "Cronulla" {
		t.Fatalf("unexpected args: %v", args)
	}
	if ts, ok := args[6].(time.Time); !ok || ts.Location() != time.UTC {
		t.Fatalf("expected processed_at in UTC, got %v", args[6])
	}
}

func TestInsertScoresQueries(t *testing.T) {
	clubs := []scoring.ClubScore{
		{Club: bondi, Finishers: 22, PerformancePoints: 27, ParticipationPoints: 45, TotalPoints: 72, AdjustedTotalPoints: 72, ICLEligibleNumber: 100},
		{Club: identity.Club{Key: "manly tri", Name: "Manly Tri"}, Finishers: 1},
	}
	query, args, err := insertClubScoresQuery(7, clubs)
	if err != nil {
		t.Fatalf("build club query: %v", err)
	}
	want := "INSERT INTO ledger_club_scores (round_id, club_key, club_name, finishers, performance_points, participation_points, total_points, adjusted_total_points, icl_eligible_number) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9), ($10, $11, $12, $13, $14, $15, $16, $17, $18)"
	if query != want {
		t.Fatalf("unexpected club query:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 18 || args[0] != int64(7) || args[9] != int64(7) {
		t.Fatalf("unexpected club args: %v", args)
	}

	athletes := []scoring.AthleteScore{{Athlete: "ta:TA1", FirstName: "Jane", Surname: "Citizen", TANumber: "TA1", Category: "Female Open", Club: bondi, Points: 10}}
	query, args, err = insertAthleteScoresQuery(7, athletes)
	if err != nil {
		t.Fatalf("build athlete query: %v", err)
	}
	want = "INSERT INTO ledger_athlete_scores (round_id, athlete_key, first_name, surname, ta_number, category, club_key, club_name, points) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"
	if query != want {
		t.Fatalf("unexpected athlete query:\n got: %s\nwant: %s", query, want)
	}
	if args[1] != "ta:TA1" {
		t.Fatalf("expected athlete key as plain string, got %#v", args[1])
	}
}

func TestListLeaguesQuery(t *testing.T) {
	query, args, err := listLeaguesQuery()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if query != "SELECT DISTINCT ON (league_key) league_name FROM ledger_rounds ORDER BY league_key, id" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestAssembleLedger(t *testing.T) {
	rounds := []ledgerRoundTableModel{
		{ID: 11, LeagueKey: "sydney premier league", LeagueName: "Sydney Premier League", RoundNo: 1, ProcessedAt: time.Now()},
		{ID: 12, LeagueKey: "sydney premier league", LeagueName: "Sydney Premier League", RoundNo: 2, DoublePoints: true, ProcessedAt: time.Now()},
	}
	clubs := []clubScoreModel{
		{RoundID: 11, ClubKey: bondi.Key, ClubName: bondi.Name, TotalPoints: 50, AdjustedTotalPoints: 50},
		{RoundID: 12, ClubKey: bondi.Key, ClubName: bondi.Name, TotalPoints: 320, AdjustedTotalPoints: 300},
		{RoundID: 99, ClubKey: "orphan"},
	}
	athletes := []athleteScoreModel{
		{RoundID: 12, AthleteKey: "ta:TA1", ClubKey: bondi.Key, ClubName: bondi.Name, Points: 20},
	}

	l := assembleLedger(rounds, clubs, athletes)
	if l.League != "Sydney Premier League" || len(l.Rounds) != 2 {
		t.Fatalf("unexpected ledger: %+v", l)
	}
	if len(l.Rounds[0].Clubs) != 1 || len(l.Rounds[1].Clubs) != 1 {
		t.Fatalf("expected one club score per round, got %d and %d", len(l.Rounds[0].Clubs), len(l.Rounds[1].Clubs))
	}
	if l.Rounds[1].Athletes[0].Athlete != "ta:TA1" || l.Rounds[1].Athletes[0].Club != bondi {
		t.Fatalf("unexpected athlete score: %+v", l.Rounds[1].Athletes[0])
	}

	totals := l.ClubTotals()
	if len(totals) != 1 || totals[0].AdjustedTotalPoints != 350 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}
