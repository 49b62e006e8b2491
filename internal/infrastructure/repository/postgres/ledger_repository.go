package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
	qb "github.com/riskibarqy/icl-ladder/internal/platform/querybuilder"
	"github.com/riskibarqy/icl-ladder/internal/platform/resilience"
)

const (
	roundsTable        = "ledger_rounds"
	clubScoresTable    = "ledger_club_scores"
	athleteScoresTable = "ledger_athlete_scores"
)

// QueryTracer wraps one statement. The returned func receives the statement error.
type QueryTracer func(ctx context.Context, operation, query string) (context.Context, func(error))

type LedgerRepository struct {
	db      *sqlx.DB
	breaker *resilience.CircuitBreaker
	tracer  QueryTracer
}

// NewLedgerRepository stores ledgers in Postgres. A nil breaker runs every call
// straight against the database.
func NewLedgerRepository(db *sqlx.DB, breaker *resilience.CircuitBreaker) *LedgerRepository {
	if breaker != nil {
		breaker.WithExpectedErrors(ledger.ErrRoundAlreadyRecorded, ledger.ErrLeagueMismatch)
	}
	return &LedgerRepository{db: db, breaker: breaker}
}

func (r *LedgerRepository) WithQueryTracer(tracer QueryTracer) *LedgerRepository {
	r.tracer = tracer
	return r
}

func (r *LedgerRepository) Load(ctx context.Context, league string) (ledger.Ledger, error) {
	out := ledger.Ledger{League: league}
	err := r.run(ctx, func(ctx context.Context) error {
		loaded, err := r.load(ctx, r.db, league)
		if err != nil {
			return err
		}
		out = loaded
		return nil
	})
	return out, err
}

// Append writes the round and its scores in one transaction. Concurrent appends
// for the same league serialize on a transaction-scoped advisory lock.
func (r *LedgerRepository) Append(ctx context.Context, entry ledger.RoundEntry) error {
	return r.run(ctx, func(ctx context.Context) error {
		return r.append(ctx, entry)
	})
}

func (r *LedgerRepository) ListLeagues(ctx context.Context) ([]string, error) {
	var out []string
	err := r.run(ctx, func(ctx context.Context) error {
		query, args, err := listLeaguesQuery()
		if err != nil {
			return fmt.Errorf("build list leagues query: %w", err)
		}
		var names []string
		if err := r.traced(ctx, "ledger.list_leagues", query, func(ctx context.Context) error {
			return r.db.SelectContext(ctx, &names, query, args...)
		}); err != nil {
			return fmt.Errorf("list ledger leagues: %w", err)
		}
		out = names
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LedgerRepository) run(ctx context.Context, fn func(context.Context) error) error {
	if r.breaker == nil {
		return fn(ctx)
	}
	return r.breaker.Execute(ctx, fn)
}

func (r *LedgerRepository) traced(ctx context.Context, operation, query string, fn func(context.Context) error) error {
	if r.tracer == nil {
		return fn(ctx)
	}
	ctx, finish := r.tracer(ctx, operation, query)
	err := fn(ctx)
	finish(err)
	return err
}

func (r *LedgerRepository) append(ctx context.Context, entry ledger.RoundEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx append ledger round: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	key := ledger.Key(entry.League)
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("lock ledger league=%s: %w", key, err)
	}

	current, err := r.load(ctx, tx, entry.League)
	if err != nil {
		return err
	}
	next, err := current.Append(entry)
	if err != nil {
		return err
	}

	query, args, err := insertRoundQuery(next.League, entry)
	if err != nil {
		return fmt.Errorf("build insert ledger round query: %w", err)
	}
	var roundID int64
	if err := r.traced(ctx, "ledger.insert_round", query, func(ctx context.Context) error {
		return tx.QueryRowxContext(ctx, query, args...).Scan(&roundID)
	}); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: league=%s round=%d", ledger.ErrRoundAlreadyRecorded, entry.League, entry.Round)
		}
		return fmt.Errorf("insert ledger round league=%s round=%d: %w", entry.League, entry.Round, err)
	}

	if len(entry.Clubs) > 0 {
		query, args, err := insertClubScoresQuery(roundID, entry.Clubs)
		if err != nil {
			return fmt.Errorf("build insert club scores query: %w", err)
		}
		if err := r.traced(ctx, "ledger.insert_club_scores", query, func(ctx context.Context) error {
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		}); err != nil {
			return fmt.Errorf("insert club scores round=%d: %w", entry.Round, err)
		}
	}

	if len(entry.Athletes) > 0 {
		query, args, err := insertAthleteScoresQuery(roundID, entry.Athletes)
		if err != nil {
			return fmt.Errorf("build insert athlete scores query: %w", err)
		}
		if err := r.traced(ctx, "ledger.insert_athlete_scores", query, func(ctx context.Context) error {
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		}); err != nil {
			return fmt.Errorf("insert athlete scores round=%d: %w", entry.Round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append ledger round tx: %w", err)
	}
	return nil
}

func (r *LedgerRepository) load(ctx context.Context, q sqlx.QueryerContext, league string) (ledger.Ledger, error) {
	query, args, err := qb.Select("id", "league_key", "league_name", "round_no", "event", "double_points", "source_file", "processed_at").
		From(roundsTable).
		Where(qb.Eq("league_key", ledger.Key(league))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("build load ledger rounds query: %w", err)
	}

	var rounds []ledgerRoundTableModel
	if err := r.traced(ctx, "ledger.load_rounds", query, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, q, &rounds, query, args...)
	}); err != nil {
		return ledger.Ledger{}, fmt.Errorf("load ledger rounds league=%s: %w", league, err)
	}
	if len(rounds) == 0 {
		return ledger.Ledger{League: league}, nil
	}

	roundIDs := make([]any, 0, len(rounds))
	for _, round := range rounds {
		roundIDs = append(roundIDs, round.ID)
	}

	query, args, err = qb.Select("*").From(clubScoresTable).Where(qb.In("round_id", roundIDs)).OrderBy("round_id", "id").ToSQL()
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("build load club scores query: %w", err)
	}
	var clubs []clubScoreModel
	if err := r.traced(ctx, "ledger.load_club_scores", query, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, q, &clubs, query, args...)
	}); err != nil {
		return ledger.Ledger{}, fmt.Errorf("load club scores league=%s: %w", league, err)
	}

	query, args, err = qb.Select("*").From(athleteScoresTable).Where(qb.In("round_id", roundIDs)).OrderBy("round_id", "id").ToSQL()
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("build load athlete scores query: %w", err)
	}
	var athletes []athleteScoreModel
	if err := r.traced(ctx, "ledger.load_athlete_scores", query, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, q, &athletes, query, args...)
	}); err != nil {
		return ledger.Ledger{}, fmt.Errorf("load athlete scores league=%s: %w", league, err)
	}

	return assembleLedger(rounds, clubs, athletes), nil
}

func assembleLedger(rounds []ledgerRoundTableModel, clubs []clubScoreModel, athletes []athleteScoreModel) ledger.Ledger {
	out := ledger.Ledger{League: strings.TrimSpace(rounds[0].LeagueName), Rounds: make([]ledger.RoundEntry, 0, len(rounds))}
	index := make(map[int64]int, len(rounds))
	for _, round := range rounds {
		index[round.ID] = len(out.Rounds)
		out.Rounds = append(out.Rounds, ledger.RoundEntry{
			League:       out.League,
			Round:        round.RoundNo,
			Event:        round.Event,
			DoublePoints: round.DoublePoints,
			SourceFile:   round.SourceFile,
			ProcessedAt:  round.ProcessedAt.UTC(),
		})
	}

	for _, club := range clubs {
		idx, ok := index[club.RoundID]
		if !ok {
			continue
		}
		out.Rounds[idx].Clubs = append(out.Rounds[idx].Clubs, scoring.ClubScore{
			Club:                identity.Club{Key: club.ClubKey, Name: club.ClubName},
			Finishers:           club.Finishers,
			PerformancePoints:   club.PerformancePoints,
			ParticipationPoints: club.ParticipationPoints,
			TotalPoints:         club.TotalPoints,
			AdjustedTotalPoints: club.AdjustedTotalPoints,
			ICLEligibleNumber:   club.ICLEligibleNumber,
		})
	}

	for _, athlete := range athletes {
		idx, ok := index[athlete.RoundID]
		if !ok {
			continue
		}
		out.Rounds[idx].Athletes = append(out.Rounds[idx].Athletes, scoring.AthleteScore{
			Athlete:   identity.AthleteKey(athlete.AthleteKey),
			FirstName: athlete.FirstName,
			Surname:   athlete.Surname,
			TANumber:  athlete.TANumber,
			Category:  athlete.Category,
			Club:      identity.Club{Key: athlete.ClubKey, Name: athlete.ClubName},
			Points:    athlete.Points,
		})
	}

	return out
}

func insertRoundQuery(leagueName string, entry ledger.RoundEntry) (string, []any, error) {
	return qb.InsertModel(roundsTable, ledgerRoundInsertModel{
		LeagueKey:    ledger.Key(entry.League),
		LeagueName:   leagueName,
		RoundNo:      entry.Round,
		Event:        strings.TrimSpace(entry.Event),
		DoublePoints: entry.DoublePoints,
		SourceFile:   entry.SourceFile,
		ProcessedAt:  entry.ProcessedAt.UTC(),
	}, "RETURNING id")
}

func insertClubScoresQuery(roundID int64, scores []scoring.ClubScore) (string, []any, error) {
	models := make([]any, 0, len(scores))
	for _, score := range scores {
		models = append(models, clubScoreModel{
			RoundID:             roundID,
			ClubKey:             score.Club.Key,
			ClubName:            score.Club.Name,
			Finishers:           score.Finishers,
			PerformancePoints:   score.PerformancePoints,
			ParticipationPoints: score.ParticipationPoints,
			TotalPoints:         score.TotalPoints,
			AdjustedTotalPoints: score.AdjustedTotalPoints,
			ICLEligibleNumber:   score.ICLEligibleNumber,
		})
	}
	return qb.InsertModels(clubScoresTable, models, "")
}

func insertAthleteScoresQuery(roundID int64, scores []scoring.AthleteScore) (string, []any, error) {
	models := make([]any, 0, len(scores))
	for _, score := range scores {
		models = append(models, athleteScoreModel{
			RoundID:    roundID,
			AthleteKey: string(score.Athlete),
			FirstName:  score.FirstName,
			Surname:    score.Surname,
			TANumber:   score.TANumber,
			Category:   score.Category,
			ClubKey:    score.Club.Key,
			ClubName:   score.Club.Name,
			Points:     score.Points,
		})
	}
	return qb.InsertModels(athleteScoresTable, models, "")
}

func listLeaguesQuery() (string, []any, error) {
	return qb.Select("DISTINCT ON (league_key) league_name").
		From(roundsTable).
		OrderBy("league_key", "id").
		ToSQL()
}
