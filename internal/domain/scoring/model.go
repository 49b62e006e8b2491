package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/season"
)

var (
	ErrMissingICLData       = errors.New("club has results but no ICL eligible number")
	ErrDuplicateFinishPlace = errors.New("duplicate category finish place")
	ErrInvalidICLData       = errors.New("invalid ICL eligible number data")
)

// ResultRow is one resolved finisher record of a race sheet.
type ResultRow struct {
	Row       int
	Athlete   identity.AthleteKey
	FirstName string
	Surname   string
	TANumber  string
	Category  string
	// Place is only meaningful when Placed is set. Rows without a usable place
	// still count as finishers but earn no rank points.
	Place    int
	Placed   bool
	Club     identity.Club
	Override *int
}

func (r ResultRow) FullName() string {
	return identity.FullName(r.FirstName, r.Surname)
}

// Race is one race sheet of a round file.
type Race struct {
	Sheet       string
	Label       string
	Eligibility season.Eligibility
	Rows        []ResultRow
}

// RoundInput is everything needed to score one round file.
type RoundInput struct {
	Round season.RoundConfig
	// Clubs are the member clubs competing in the round. Empty means every ICL club.
	Clubs []identity.Club
	ICL   ICLTable
	Races []Race
}

// ClubScore is the round score of one club.
type ClubScore struct {
	Club                identity.Club
	Finishers           int
	PerformancePoints   int
	ParticipationPoints int
	TotalPoints         int
	AdjustedTotalPoints int
	ICLEligibleNumber   int
}

// AthleteScore is the round performance total of one athlete competing for one club
// in one category. An athlete who races two categories gets one score per category.
type AthleteScore struct {
	Athlete   identity.AthleteKey
	FirstName string
	Surname   string
	TANumber  string
	Category  string
	Club      identity.Club
	Points    int
}

func (a AthleteScore) FullName() string {
	return identity.FullName(a.FirstName, a.Surname)
}

// RaceClubPoints is one club's contribution within a single race sheet.
type RaceClubPoints struct {
	Club              identity.Club
	Finishers         int
	PerformancePoints int
}

// RaceBreakdown lists club contributions for one race, in club order of the round.
type RaceBreakdown struct {
	Sheet string
	Label string
	Clubs []RaceClubPoints
}

// RoundResult is the scored round.
type RoundResult struct {
	League       string
	Round        int
	Event        string
	DoublePoints bool
	Cap          int
	Clubs        []ClubScore
	Athletes     []AthleteScore
	Races        []RaceBreakdown
}

// SheetError attaches sheet and row context to a row-level failure.
type SheetError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *SheetError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("sheet %q row %d: %v", e.Sheet, e.Row, e.Err)
	}
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// MissingICLDataError reports a scored club absent from the ICL table.
type MissingICLDataError struct {
	Club  string
	Sheet string
}

func (e *MissingICLDataError) Error() string {
	return fmt.Sprintf("%s: club=%q sheet=%q", ErrMissingICLData, e.Club, e.Sheet)
}

func (e *MissingICLDataError) Unwrap() error {
	return ErrMissingICLData
}

// DuplicateFinishPlaceError reports two finishers sharing a place inside one category.
type DuplicateFinishPlaceError struct {
	Sheet    string
	Category string
	Place    int
	Athletes []string
}

func (e *DuplicateFinishPlaceError) Error() string {
	return fmt.Sprintf("%s: sheet=%q category=%q place=%d athletes=[%s]",
		ErrDuplicateFinishPlace, e.Sheet, e.Category, e.Place, strings.Join(e.Athletes, ", "))
}

func (e *DuplicateFinishPlaceError) Unwrap() error {
	return ErrDuplicateFinishPlace
}
