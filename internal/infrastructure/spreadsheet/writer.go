package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/icl-ladder/internal/domain/ladder"
)

const maxSheetNameLen = 31

var (
	ladderHeader    = []any{"Rank", "Club", "Participation Points", "Performance Points", "Total Points", "Adjusted Total Points", "ICL Eligible Number"}
	roundMVPHeader  = []any{"Rank", "Full Name", "TA Number", "Club Name", "Category", "Round Performance Points"}
	seasonMVPHeader = []any{"Rank", "Full Name", "TA Number", "Club Name", "Season Performance Points"}
	clubMVPHeader   = []any{"Category", "Rank", "Full Name", "TA Number", "Performance Points"}
	racePointHeader = []any{"Club", "Finishers", "Performance Points"}
)

// ReportWriter saves round reports as workbooks in dir.
type ReportWriter struct {
	dir string
	now func() time.Time
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir, now: time.Now}
}

// FileName follows "<League>_R<round>_<yyyymmdd>.xlsx".
func (w *ReportWriter) FileName(report ladder.Report) string {
	league := strings.Join(strings.Fields(sanitize(report.League)), " ")
	return fmt.Sprintf("%s_R%d_%s.xlsx", league, report.Round, w.now().Format("20060102"))
}

func (w *ReportWriter) Write(ctx context.Context, report ladder.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := Render(report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", crerr.Wrapf(err, "create output dir %s", w.dir)
	}
	path := filepath.Join(w.dir, w.FileName(report))
	if err := f.SaveAs(path); err != nil {
		return "", crerr.Wrapf(err, "save report %s", path)
	}
	return path, nil
}

// Discard removes a report written by Write. A missing file is not an error.
func (w *ReportWriter) Discard(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return crerr.Wrapf(err, "remove report %s", path)
	}
	return nil
}

// Render lays the report out as a workbook.
func Render(report ladder.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	r := &renderer{file: f, used: make(map[string]struct{})}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, crerr.Wrap(err, "create header style")
	}
	r.headerStyle = headerStyle

	r.sheet("Round Ladder", ladderHeader, ladderRows(report.RoundLadder))
	r.sheet("Season Ladder", ladderHeader, ladderRows(report.SeasonLadder))

	roundMVP := make([][]any, 0, len(report.RoundMVP))
	for _, entry := range report.RoundMVP {
		roundMVP = append(roundMVP, []any{entry.Rank, entry.FullName, entry.TANumber, entry.Club.Name, entry.Category, entry.Points})
	}
	r.sheet("Round MVP", roundMVPHeader, roundMVP)

	seasonMVP := make([][]any, 0, len(report.SeasonMVP))
	for _, entry := range report.SeasonMVP {
		seasonMVP = append(seasonMVP, []any{entry.Rank, entry.FullName, entry.TANumber, entry.Club.Name, entry.Points})
	}
	r.sheet("Season MVP", seasonMVPHeader, seasonMVP)

	for _, club := range report.ClubMVPs {
		rows := make([][]any, 0, len(club.Entries))
		for _, entry := range club.Entries {
			rows = append(rows, []any{entry.Category, entry.Rank, entry.FullName, entry.TANumber, entry.Points})
		}
		r.sheet(club.Club.Name+" MVP", clubMVPHeader, rows)
	}

	for _, race := range report.Races {
		rows := make([][]any, 0, len(race.Clubs))
		for _, club := range race.Clubs {
			rows = append(rows, []any{club.Club.Name, club.Finishers, club.PerformancePoints})
		}
		r.sheet(race.Sheet+" Points", racePointHeader, rows)
	}

	if r.err != nil {
		f.Close()
		return nil, r.err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, crerr.Wrap(err, "remove default sheet")
	}
	f.SetActiveSheet(0)
	return f, nil
}

func ladderRows(items []ladder.Standing) [][]any {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{
			item.Rank,
			item.Club.Name,
			item.ParticipationPoints,
			item.PerformancePoints,
			item.TotalPoints,
			item.AdjustedTotalPoints,
			item.ICLEligibleNumber,
		})
	}
	return rows
}

type renderer struct {
	file        *excelize.File
	used        map[string]struct{}
	headerStyle int
	err         error
}

func (r *renderer) sheet(title string, header []any, rows [][]any) {
	if r.err != nil {
		return
	}

	name := SheetName(title, r.used)
	if _, err := r.file.NewSheet(name); err != nil {
		r.err = crerr.Wrapf(err, "create sheet %q", name)
		return
	}

	if err := r.file.SetSheetRow(name, "A1", &header); err != nil {
		r.err = crerr.Wrapf(err, "write header of %q", name)
		return
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := r.file.SetCellStyle(name, "A1", lastHeader, r.headerStyle); err != nil {
		r.err = crerr.Wrapf(err, "style header of %q", name)
		return
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := r.file.SetSheetRow(name, cell, &row); err != nil {
			r.err = crerr.Wrapf(err, "write row %d of %q", i+2, name)
			return
		}
	}
}

// SheetName makes title a valid, unused worksheet name: forbidden characters
// removed, at most 31 characters, and a numeric suffix when taken.
func SheetName(title string, used map[string]struct{}) string {
	base := strings.Join(strings.Fields(sanitize(title)), " ")
	if base == "" {
		base = "Sheet"
	}
	base = truncate(base, maxSheetNameLen)

	name := base
	for n := 2; ; n++ {
		key := strings.ToLower(name)
		if _, taken := used[key]; !taken && key != "sheet1" {
			used[key] = struct{}{}
			return name
		}
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetNameLen-len(suffix)) + suffix
	}
}

func sanitize(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		default:
			return r
		}
	}, value)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit]))
}
