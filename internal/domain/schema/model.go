package schema

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMissingColumn = errors.New("required column missing")

// Table is one raw sheet as read from a workbook: a header row followed by data rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Field is a canonical column name.
type Field string

const (
	FieldFirstName         Field = "First Name"
	FieldSurname           Field = "Surname"
	FieldTANumber          Field = "TA Number"
	FieldCategory          Field = "Category"
	FieldCategoryPlace     Field = "Category Finish Place"
	FieldClubName          Field = "Club Name"
	FieldPerformancePoints Field = "Per P"

	FieldClub              Field = "Club"
	FieldICLEligibleNumber Field = "ICL Eligible Number"
	FieldThreshold5        Field = "15PTS (5%)"
	FieldThreshold10       Field = "30 PTS (10%)"
	FieldThreshold20       Field = "45 PTS (20%)"

	FieldLeagueName         Field = "League Name"
	FieldRound              Field = "Round"
	FieldEvent              Field = "Events or Rounds"
	FieldDoublePoints       Field = "Double Points"
	FieldPerformanceTypes   Field = "Per P & Part P"
	FieldParticipationTypes Field = "Part P"
	FieldClubs              Field = "Clubs"
)

// Target selects which canonical layout a table is normalized into.
type Target string

const (
	TargetRaceResult Target = "race result"
	TargetICL        Target = "ICL eligible number"
	TargetSeason     Target = "season configuration"
)

// Record is one normalized data row.
type Record struct {
	// Row is the 1-based sheet row the record came from; the header is row 1.
	Row    int
	values map[Field]string
}

func NewRecord(row int, values map[Field]string) Record {
	return Record{Row: row, values: values}
}

// Get returns the trimmed cell for field, or "" when the column is absent.
func (r Record) Get(field Field) string {
	return r.values[field]
}

// Lookup reports whether field has a non-blank value in this row.
func (r Record) Lookup(field Field) (string, bool) {
	value, ok := r.values[field]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// SchemaError reports a table without any recognized alias for a required field.
type SchemaError struct {
	Table  string
	Target Target
	Field  Field
	Header []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sheet %q: %s table is missing required column %q (header: %s)",
		e.Table, e.Target, e.Field, strings.Join(e.Header, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrMissingColumn
}
