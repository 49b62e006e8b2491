package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/ladder"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
)

func buildWorkbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for _, name := range order {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestRead(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Current ICL Eligible Number": {
			{"Club", "ICL Eligible Number"},
			{"Bondi Tri", 100},
		},
		"Sprint": {
			{"FORENAME", "Surname", "TA Number", "CATGY", "FINISH_CAT_PLACE", "Triathlon Club"},
			{"Jane", "Citizen", "TA1", "Female Open", 1, "Bondi Tri"},
		},
	}, "Current ICL Eligible Number", "Sprint")

	workbook, err := Read("Sydney Premier League Round 1 Cronulla.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, workbook.Sheets, 2)

	icl, ok := workbook.Sheet(season.IsICLSheet)
	require.True(t, ok)
	require.Equal(t, []string{"Club", "ICL Eligible Number"}, icl.Header)
	require.Equal(t, [][]string{{"Bondi Tri", "100"}}, icl.Rows)

	sprint, ok := workbook.Sheet(season.IsRaceSheet)
	require.True(t, ok)
	require.Equal(t, "Sprint", sprint.Name)
	require.Equal(t, "FINISH_CAT_PLACE", sprint.Header[4])
}

func TestSeasonSource_Load(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Season": {
			{"League Name", "Round", "Events or Rounds", "Double Points", "Per P & Part P", "Part P", "Clubs"},
			{"Sydney Premier League", 1, "Cronulla", "No", "Sprint, Standard", "Enticer", "Bondi Tri, Manly Tri"},
			{"Sydney Premier League", 2, "Penrith", "Yes", "Sprint", "", "Bondi Tri, Manly Tri"},
		},
	}, "Season")

	path := filepath.Join(t.TempDir(), "Triathlon Season.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	cfg, err := NewSeasonSource(path).Load(context.Background())
	require.NoError(t, err)

	round, err := cfg.FindRound("sydney premier league", 2)
	require.NoError(t, err)
	require.True(t, round.DoublePoints)
	require.Equal(t, []string{"Bondi Tri", "Manly Tri"}, round.Clubs)

	_, err = NewSeasonSource(filepath.Join(t.TempDir(), "missing.xlsx")).Load(context.Background())
	require.Error(t, err)
}

func TestSeasonFromWorkbook_InvalidRow(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Season": {
			{"League Name", "Round", "Double Points", "Per P & Part P", "Clubs"},
			{"Sydney Premier League", 1, "No", "", "Bondi Tri"},
		},
	}, "Season")

	workbook, err := Read("Triathlon Season.xlsx", buf)
	require.NoError(t, err)

	_, err = SeasonFromWorkbook(workbook)
	if !errors.Is(err, season.ErrNoEligibleRaces) {
		t.Fatalf("expected ErrNoEligibleRaces, got %v", err)
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]struct{}{}

	require.Equal(t, "Round Ladder", SheetName("Round Ladder", used))
	require.Equal(t, "Round Ladder (2)", SheetName("round ladder", used))

	long := SheetName("Eastern Suburbs Triathlon Club Incorporated MVP", used)
	require.LessOrEqual(t, len([]rune(long)), 31)
	again := SheetName("Eastern Suburbs Triathlon Club Incorporated MVP", used)
	require.LessOrEqual(t, len([]rune(again)), 31)
	require.NotEqual(t, long, again)
	require.True(t, strings.HasSuffix(again, " (2)"))

	require.Equal(t, "R1 Sprint Points", SheetName("R1: Sprint/ Points", used))
	require.Equal(t, "Sheet", SheetName("[]", used))
}

func TestReportWriter_Write(t *testing.T) {
	bondi := identity.Club{Key: "bondi tri", Name: "Bondi Tri"}
	report := ladder.Report{
		League: "Sydney Premier League",
		Round:  3,
		RoundLadder: []ladder.Standing{
			{Rank: 1, Club: bondi, ParticipationPoints: 45, PerformancePoints: 27, TotalPoints: 72, AdjustedTotalPoints: 72, ICLEligibleNumber: 100},
		},
		SeasonLadder: []ladder.Standing{
			{Rank: 1, Club: bondi, TotalPoints: 172, AdjustedTotalPoints: 150, ICLEligibleNumber: 100},
		},
		RoundMVP:  []ladder.MVPEntry{{Rank: 1, FullName: "Jane Citizen", TANumber: "TA1", Club: bondi, Category: "Female Open", Points: 10}},
		SeasonMVP: []ladder.MVPEntry{{Rank: 1, FullName: "Jane Citizen", TANumber: "TA1", Club: bondi, Points: 30}},
		ClubMVPs: []ladder.ClubMVP{{Club: bondi, Entries: []ladder.MVPEntry{
			{Rank: 1, FullName: "Jane Citizen", TANumber: "TA1", Category: "Female Open", Points: 10},
		}}},
		Races: []scoring.RaceBreakdown{{Sheet: "Sprint", Clubs: []scoring.RaceClubPoints{{Club: bondi, Finishers: 3, PerformancePoints: 27}}}},
	}

	writer := NewReportWriter(filepath.Join(t.TempDir(), "output"))
	writer.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	path, err := writer.Write(context.Background(), report)
	require.NoError(t, err)
	require.Equal(t, "Sydney Premier League_R3_20260301.xlsx", filepath.Base(path))

	workbook, err := ReadFile(path)
	require.NoError(t, err)

	names := make([]string, 0, len(workbook.Sheets))
	for _, sheet := range workbook.Sheets {
		names = append(names, sheet.Name)
	}
	require.Equal(t, []string{"Round Ladder", "Season Ladder", "Round MVP", "Season MVP", "Bondi Tri MVP", "Sprint Points"}, names)

	roundLadder := workbook.Sheets[0]
	require.Equal(t, "Adjusted Total Points", roundLadder.Header[5])
	require.Equal(t, []string{"1", "Bondi Tri", "45", "27", "72", "72", "100"}, roundLadder.Rows[0])

	require.NoError(t, writer.Discard(context.Background(), path))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, writer.Discard(context.Background(), path))
}
