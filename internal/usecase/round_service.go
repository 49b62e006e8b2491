package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/icl-ladder/internal/domain/ladder"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
	"github.com/riskibarqy/icl-ladder/internal/platform/resilience"
)

// ReportWriter persists a round report and returns where it went. Discard undoes a
// Write whose round never reached the ledger.
type ReportWriter interface {
	Write(ctx context.Context, report ladder.Report) (string, error)
	Discard(ctx context.Context, path string) error
}

type ProcessRoundInput struct {
	// FileName is the source workbook name recorded in the ledger.
	FileName string
	League   string
	Round    int
	Sheets   []schema.Table
}

type ProcessRoundResult struct {
	Report     ladder.Report
	ReportPath string
}

// RoundService folds one round file into its league's season ledger.
type RoundService struct {
	seasonRepo season.Repository
	ledgerRepo ledger.Repository
	reports    ReportWriter
	rules      scoring.Rules
	locks      *resilience.KeyedMutex
	logger     *logging.Logger
	now        func() time.Time
}

// NewRoundService wires the service. reports may be nil, in which case reports are
// built and returned but not written anywhere.
func NewRoundService(
	seasonRepo season.Repository,
	ledgerRepo ledger.Repository,
	reports ReportWriter,
	rules scoring.Rules,
	logger *logging.Logger,
) *RoundService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RoundService{
		seasonRepo: seasonRepo,
		ledgerRepo: ledgerRepo,
		reports:    reports,
		rules:      rules,
		locks:      &resilience.KeyedMutex{},
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessRound scores the round, appends it to the ledger and renders the report.
// Any failure before the ledger append leaves the ledger untouched, and a failed
// append removes the report it had already written.
func (s *RoundService) ProcessRound(ctx context.Context, input ProcessRoundInput) (ProcessRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ProcessRound")
	defer span.End()

	out, err := s.processRound(ctx, span, input)
	recordSpanError(span, err)
	return out, err
}

func (s *RoundService) processRound(ctx context.Context, span trace.Span, input ProcessRoundInput) (ProcessRoundResult, error) {
	league := strings.Join(strings.Fields(input.League), " ")
	if league == "" {
		return ProcessRoundResult{}, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	if input.Round <= 0 {
		return ProcessRoundResult{}, fmt.Errorf("%w: round must be positive, got %d", ErrInvalidInput, input.Round)
	}
	span.SetAttributes(
		attribute.String("icl.league", league),
		attribute.Int("icl.round", input.Round),
		attribute.String("icl.file", input.FileName),
	)

	cfg, err := s.seasonRepo.Load(ctx)
	if err != nil {
		return ProcessRoundResult{}, fmt.Errorf("load season configuration: %w", err)
	}
	round, err := cfg.FindRound(league, input.Round)
	if err != nil {
		return ProcessRoundResult{}, fmt.Errorf("file %q: %w", input.FileName, err)
	}

	roundInput, warnings, err := BuildRoundInput(round, input.Sheets)
	if err != nil {
		return ProcessRoundResult{}, fmt.Errorf("file %q: %w", input.FileName, err)
	}
	for _, warning := range warnings {
		s.logger.WarnContext(ctx, "race sheet skipped", "file", input.FileName, "reason", warning)
	}

	result, err := scoring.Score(roundInput, s.rules)
	if err != nil {
		return ProcessRoundResult{}, fmt.Errorf("file %q: %w", input.FileName, err)
	}

	unlock, err := s.locks.Lock(ctx, ledger.Key(league))
	if err != nil {
		return ProcessRoundResult{}, fmt.Errorf("lock league %s: %w", league, err)
	}
	defer unlock()

	current, err := s.ledgerRepo.Load(ctx, round.League)
	if err != nil {
		return ProcessRoundResult{}, fmt.Errorf("load season ledger: %w", err)
	}
	entry := ledger.EntryFromResult(result, input.FileName, s.now())
	next, err := current.Append(entry)
	if err != nil {
		return ProcessRoundResult{}, fmt.Errorf("file %q: %w", input.FileName, err)
	}

	report := ladder.BuildReport(result, next, input.FileName, warnings)
	out := ProcessRoundResult{Report: report}
	if s.reports != nil {
		path, err := s.reports.Write(ctx, report)
		if err != nil {
			return ProcessRoundResult{}, fmt.Errorf("write report: %w", err)
		}
		out.ReportPath = path
	}

	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		if out.ReportPath != "" {
			if discardErr := s.reports.Discard(ctx, out.ReportPath); discardErr != nil {
				s.logger.WarnContext(ctx, "discard report", "path", out.ReportPath, "error", discardErr)
			}
		}
		return ProcessRoundResult{}, fmt.Errorf("append season ledger: %w", err)
	}

	s.logger.InfoContext(ctx, "round processed",
		"league", round.League,
		"round", round.Round,
		"file", input.FileName,
		"clubs", len(result.Clubs),
		"athletes", len(result.Athletes),
		"double_points", result.DoublePoints,
		"report", out.ReportPath,
	)
	return out, nil
}
