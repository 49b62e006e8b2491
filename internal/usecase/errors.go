package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrNoICLSheet            = errors.New("round file has no ICL eligible number sheet")
	ErrNoRaceSheets          = errors.New("round file has no scorable race sheets")
)
