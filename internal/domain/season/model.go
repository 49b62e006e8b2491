package season

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
)

var (
	ErrInvalidConfig    = errors.New("invalid season configuration")
	ErrNoMatchingRound  = errors.New("no matching league round in season configuration")
	ErrUnknownRaceType  = errors.New("race type not eligible for round")
	ErrNoEligibleRaces  = errors.New("round has no eligible race types")
	ErrDuplicateRoundNo = errors.New("duplicate round number in league")
)

// RoundConfig is one row of the season configuration.
type RoundConfig struct {
	League       string
	Round        int
	Event        string
	DoublePoints bool
	// PerformanceRaceTypes earn performance and participation points.
	PerformanceRaceTypes []string
	// ParticipationRaceTypes only count finishers towards participation points.
	ParticipationRaceTypes []string
	Clubs                  []string
}

func (r RoundConfig) Validate() error {
	if strings.TrimSpace(r.League) == "" {
		return fmt.Errorf("%w: league name is required", ErrInvalidConfig)
	}
	if r.Round <= 0 {
		return fmt.Errorf("%w: league=%s round must be a positive integer, got %d", ErrInvalidConfig, r.League, r.Round)
	}
	if len(r.EligibleRaceTypes()) == 0 {
		return fmt.Errorf("%w: league=%s round=%d", ErrNoEligibleRaces, r.League, r.Round)
	}
	return nil
}

// EligibleRaceTypes is the union of performance and participation-only race types.
func (r RoundConfig) EligibleRaceTypes() []string {
	seen := make(map[string]struct{}, len(r.PerformanceRaceTypes)+len(r.ParticipationRaceTypes))
	out := make([]string, 0, len(r.PerformanceRaceTypes)+len(r.ParticipationRaceTypes))
	for _, items := range [][]string{r.PerformanceRaceTypes, r.ParticipationRaceTypes} {
		for _, item := range items {
			if _, exists := seen[item]; exists {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// ClubResolver builds the resolver for the round's member clubs.
func (r RoundConfig) ClubResolver() *identity.ClubResolver {
	return identity.NewClubResolver(r.Clubs)
}

// League is a named season with its configured rounds ordered by round number.
type League struct {
	Name   string
	Rounds []RoundConfig
}

// Config is the whole season configuration, keyed by normalized league name.
type Config struct {
	leagues map[string]*League
	order   []string
}

func NewConfig(rounds []RoundConfig) (Config, error) {
	cfg := Config{leagues: make(map[string]*League)}
	seen := make(map[string]map[int]struct{})
	for _, round := range rounds {
		if err := round.Validate(); err != nil {
			return Config{}, err
		}

		key := identity.NormalizeName(round.League)
		item, ok := cfg.leagues[key]
		if !ok {
			item = &League{Name: strings.Join(strings.Fields(round.League), " ")}
			cfg.leagues[key] = item
			cfg.order = append(cfg.order, key)
			seen[key] = make(map[int]struct{})
		}
		if _, dup := seen[key][round.Round]; dup {
			return Config{}, fmt.Errorf("%w: league=%s round=%d", ErrDuplicateRoundNo, item.Name, round.Round)
		}
		seen[key][round.Round] = struct{}{}
		item.Rounds = append(item.Rounds, round)
	}

	for _, item := range cfg.leagues {
		sort.SliceStable(item.Rounds, func(i, j int) bool {
			return item.Rounds[i].Round < item.Rounds[j].Round
		})
	}

	return cfg, nil
}

// FindRound looks up a league (case-insensitive) and round number.
func (c Config) FindRound(league string, round int) (RoundConfig, error) {
	item, ok := c.leagues[identity.NormalizeName(league)]
	if ok {
		for _, candidate := range item.Rounds {
			if candidate.Round == round {
				return candidate, nil
			}
		}
	}
	return RoundConfig{}, &NoMatchingRoundError{League: league, Round: round}
}

func (c Config) Leagues() []League {
	out := make([]League, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.leagues[key])
	}
	return out
}

// NoMatchingRoundError reports a round file whose league/round is not configured.
type NoMatchingRoundError struct {
	League string
	Round  int
}

func (e *NoMatchingRoundError) Error() string {
	return fmt.Sprintf("%s: league=%q round=%d", ErrNoMatchingRound, e.League, e.Round)
}

func (e *NoMatchingRoundError) Unwrap() error {
	return ErrNoMatchingRound
}

// UnknownRaceTypeError reports a race sheet whose label is outside the round's eligible set.
type UnknownRaceTypeError struct {
	Sheet   string
	Label   string
	Allowed []string
}

func (e *UnknownRaceTypeError) Error() string {
	return fmt.Sprintf("%s: sheet=%q label=%q allowed=[%s]", ErrUnknownRaceType, e.Sheet, e.Label, strings.Join(e.Allowed, ", "))
}

func (e *UnknownRaceTypeError) Unwrap() error {
	return ErrUnknownRaceType
}
