package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
	idgen "github.com/riskibarqy/icl-ladder/internal/platform/id"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
)

const (
	BatchStatusProcessed = "processed"
	BatchStatusSkipped   = "skipped"
	BatchStatusFailed    = "failed"
)

// RoundFile is a round workbook waiting to be folded.
type RoundFile struct {
	Name   string
	Path   string
	League string
	Round  int
}

// RoundFileStore is where round files come from and where they go once folded.
type RoundFileStore interface {
	Discover(ctx context.Context) ([]RoundFile, error)
	Open(ctx context.Context, file RoundFile) ([]schema.Table, error)
	MarkProcessed(ctx context.Context, file RoundFile) error
}

type BatchFileResult struct {
	File       string   `yaml:"file"`
	League     string   `yaml:"league"`
	Round      int      `yaml:"round"`
	Status     string   `yaml:"status"`
	ReportPath string   `yaml:"report_path,omitempty"`
	Error      string   `yaml:"error,omitempty"`
	Warnings   []string `yaml:"warnings,omitempty"`
}

type BatchSummary struct {
	RunID      string            `yaml:"run_id"`
	StartedAt  time.Time         `yaml:"started_at"`
	FinishedAt time.Time         `yaml:"finished_at"`
	Processed  int               `yaml:"processed"`
	Skipped    int               `yaml:"skipped"`
	Failed     int               `yaml:"failed"`
	Files      []BatchFileResult `yaml:"files"`
}

// BatchService folds every waiting round file, one after another, in (league,
// round, file name) order. Workbook decoding is prefetched by a worker pool; a
// failing file never stops the batch.
type BatchService struct {
	files       RoundFileStore
	rounds      *RoundService
	ids         idgen.Generator
	loadWorkers int
	logger      *logging.Logger
	now         func() time.Time
}

func NewBatchService(files RoundFileStore, rounds *RoundService, ids idgen.Generator, loadWorkers int, logger *logging.Logger) *BatchService {
	if loadWorkers <= 0 {
		loadWorkers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BatchService{
		files:       files,
		rounds:      rounds,
		ids:         ids,
		loadWorkers: loadWorkers,
		logger:      logger,
		now:         time.Now,
	}
}

type loadedRoundFile struct {
	sheets []schema.Table
	err    error
}

func (s *BatchService) Run(ctx context.Context) (BatchSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BatchService.Run")
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		return BatchSummary{}, fmt.Errorf("generate run id: %w", err)
	}
	summary := BatchSummary{RunID: runID, StartedAt: s.now().UTC()}
	logger := s.logger.With("run_id", runID)

	files, err := s.files.Discover(ctx)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("discover round files: %w", err)
	}
	sortRoundFiles(files)
	logger.InfoContext(ctx, "batch started", "files", len(files), "load_workers", s.loadWorkers)

	loaded, err := s.prefetch(ctx, files)
	if err != nil {
		return BatchSummary{}, err
	}

	summary.Files = make([]BatchFileResult, 0, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		row := BatchFileResult{File: file.Name, League: file.League, Round: file.Round}
		if loaded[i].err != nil {
			row.Status = BatchStatusFailed
			row.Error = loaded[i].err.Error()
		} else {
			row = s.foldFile(ctx, logger, file, loaded[i].sheets, row)
		}
		loaded[i] = loadedRoundFile{}

		switch row.Status {
		case BatchStatusProcessed:
			summary.Processed++
		case BatchStatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
			logger.ErrorContext(ctx, "round file failed", "file", file.Name, "error", row.Error)
		}
		summary.Files = append(summary.Files, row)
	}

	summary.FinishedAt = s.now().UTC()
	logger.InfoContext(ctx, "batch finished",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *BatchService) foldFile(ctx context.Context, logger *logging.Logger, file RoundFile, sheets []schema.Table, row BatchFileResult) BatchFileResult {
	result, err := s.rounds.ProcessRound(ctx, ProcessRoundInput{
		FileName: file.Name,
		League:   file.League,
		Round:    file.Round,
		Sheets:   sheets,
	})
	if err != nil {
		row.Error = err.Error()
		switch {
		case errors.Is(err, season.ErrNoMatchingRound), errors.Is(err, ledger.ErrRoundAlreadyRecorded):
			row.Status = BatchStatusSkipped
			logger.WarnContext(ctx, "round file skipped", "file", file.Name, "reason", err)
		default:
			row.Status = BatchStatusFailed
		}
		return row
	}

	row.Status = BatchStatusProcessed
	row.ReportPath = result.ReportPath
	row.Warnings = result.Report.Warnings
	if err := s.files.MarkProcessed(ctx, file); err != nil {
		// the ledger already holds the round; a rerun will skip it as recorded
		logger.WarnContext(ctx, "move processed round file", "file", file.Name, "error", err)
		row.Warnings = append(row.Warnings, "move processed file: "+err.Error())
	}
	return row
}

func (s *BatchService) prefetch(ctx context.Context, files []RoundFile) ([]loadedRoundFile, error) {
	loaded := make([]loadedRoundFile, len(files))
	if len(files) == 0 {
		return loaded, nil
	}

	workerCount := s.loadWorkers
	if workerCount > len(files) {
		workerCount = len(files)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, file := range files {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			sheets, err := s.files.Open(ctx, file)
			loaded[i] = loadedRoundFile{sheets: sheets, err: err}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit workbook load to worker pool: %w", err)
		}
	}
	workers.Wait()

	return loaded, nil
}

func sortRoundFiles(files []RoundFile) {
	sort.SliceStable(files, func(i, j int) bool {
		li, lj := strings.ToLower(files[i].League), strings.ToLower(files[j].League)
		if li != lj {
			return li < lj
		}
		if files[i].Round != files[j].Round {
			return files[i].Round < files[j].Round
		}
		return files[i].Name < files[j].Name
	})
}
