package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/icl-ladder/internal/domain/ladder"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
)

type RoundSummary struct {
	Round        int
	Event        string
	DoublePoints bool
	SourceFile   string
	ProcessedAt  time.Time
	Clubs        int
	Athletes     int
}

// LadderService answers read-only questions about recorded seasons.
type LadderService struct {
	ledgerRepo ledger.Repository
}

func NewLadderService(ledgerRepo ledger.Repository) *LadderService {
	return &LadderService{ledgerRepo: ledgerRepo}
}

func (s *LadderService) ListLeagues(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.ListLeagues")
	defer span.End()

	items, err := s.ledgerRepo.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return items, nil
}

func (s *LadderService) SeasonLadder(ctx context.Context, league string) ([]ladder.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.SeasonLadder", attribute.String("icl.league", league))
	defer span.End()

	l, err := s.loadRecorded(ctx, league)
	if err != nil {
		return nil, err
	}
	return ladder.SeasonLadder(l), nil
}

// SeasonMVP returns the season ranking, cut to limit entries when limit > 0.
func (s *LadderService) SeasonMVP(ctx context.Context, league string, limit int) ([]ladder.MVPEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.SeasonMVP", attribute.String("icl.league", league))
	defer span.End()

	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	l, err := s.loadRecorded(ctx, league)
	if err != nil {
		return nil, err
	}

	items := ladder.SeasonMVP(l)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// RoundLadder rebuilds the ladder of one recorded round from the ledger.
func (s *LadderService) RoundLadder(ctx context.Context, league string, round int) ([]ladder.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.RoundLadder",
		attribute.String("icl.league", league),
		attribute.Int("icl.round", round),
	)
	defer span.End()

	l, err := s.loadRecorded(ctx, league)
	if err != nil {
		return nil, err
	}
	for _, entry := range l.Rounds {
		if entry.Round == round {
			return ladder.RoundLadder(scoring.RoundResult{League: l.League, Round: round, Clubs: entry.Clubs}), nil
		}
	}
	return nil, fmt.Errorf("%w: league=%s round=%d", ErrNotFound, league, round)
}

func (s *LadderService) ListRounds(ctx context.Context, league string) ([]RoundSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.ListRounds", attribute.String("icl.league", league))
	defer span.End()

	l, err := s.loadRecorded(ctx, league)
	if err != nil {
		return nil, err
	}

	out := make([]RoundSummary, 0, len(l.Rounds))
	for _, entry := range l.Rounds {
		out = append(out, RoundSummary{
			Round:        entry.Round,
			Event:        entry.Event,
			DoublePoints: entry.DoublePoints,
			SourceFile:   entry.SourceFile,
			ProcessedAt:  entry.ProcessedAt,
			Clubs:        len(entry.Clubs),
			Athletes:     len(entry.Athletes),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Round < out[j].Round
	})
	return out, nil
}

func (s *LadderService) loadRecorded(ctx context.Context, league string) (ledger.Ledger, error) {
	league = strings.TrimSpace(league)
	if league == "" {
		return ledger.Ledger{}, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}

	l, err := s.ledgerRepo.Load(ctx, league)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("load season ledger: %w", err)
	}
	if len(l.Rounds) == 0 {
		return ledger.Ledger{}, fmt.Errorf("%w: league=%s", ErrNotFound, league)
	}
	return l, nil
}
