package schema

import (
	"fmt"
	"strings"
)

type fieldSpec struct {
	field    Field
	aliases  []string
	optional bool
}

// Aliases are matched case-insensitively after header whitespace is collapsed.
// The first alias present in the header wins.
var layouts = map[Target][]fieldSpec{
	TargetRaceResult: {
		{field: FieldFirstName, aliases: []string{"First Name", "FORENAME", "FirstName", "Given Name"}},
		{field: FieldSurname, aliases: []string{"Surname", "LastName", "Last Name", "Family Name"}},
		{field: FieldTANumber, aliases: []string{"TA Number", "TANumber", "TA_Number", "Membership"}},
		{field: FieldCategory, aliases: []string{"Category", "CATGY", "Race Category", "Division"}},
		{field: FieldCategoryPlace, aliases: []string{"Category Finish Place", "FINISH_CAT_PLACE", "Cat Place", "Division Place"}},
		{field: FieldClubName, aliases: []string{"Club Name", "Triathlon Club", "Club"}},
		{field: FieldPerformancePoints, aliases: []string{"Per P", "Performance Points", "Perf Points"}, optional: true},
	},
	TargetICL: {
		{field: FieldClub, aliases: []string{"Club", "Club Name"}},
		{field: FieldICLEligibleNumber, aliases: []string{"ICL Eligible Number", "Eligible Number", "ICL Eligible"}},
		{field: FieldThreshold5, aliases: []string{"15PTS (5%)", "15 PTS (5%)", "15PTS", "5%"}, optional: true},
		{field: FieldThreshold10, aliases: []string{"30 PTS (10%)", "30PTS (10%)", "30PTS", "10%"}, optional: true},
		{field: FieldThreshold20, aliases: []string{"45 PTS (20%)", "45PTS (20%)", "45PTS", "20%"}, optional: true},
	},
	TargetSeason: {
		{field: FieldLeagueName, aliases: []string{"League Name", "League"}},
		{field: FieldRound, aliases: []string{"Round", "Round Number"}},
		{field: FieldEvent, aliases: []string{"Events or Rounds", "Event", "Events"}, optional: true},
		{field: FieldDoublePoints, aliases: []string{"Double Points", "Double Points (Yes/No)"}},
		{field: FieldPerformanceTypes, aliases: []string{"Per P & Part P", "Per P and Part P"}},
		{field: FieldParticipationTypes, aliases: []string{"Part P"}, optional: true},
		{field: FieldClubs, aliases: []string{"Clubs", "Member Clubs"}},
	},
}

// NormalizeHeader trims a header cell and collapses internal whitespace.
func NormalizeHeader(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// ResolveColumns maps each canonical field of target to its column index in header.
// Optional fields without a matching column are left out of the result.
func ResolveColumns(tableName string, header []string, target Target) (map[Field]int, error) {
	specs, ok := layouts[target]
	if !ok {
		return nil, fmt.Errorf("unknown schema target %q", target)
	}

	positions := make(map[string]int, len(header))
	for idx, cell := range header {
		key := strings.ToLower(NormalizeHeader(cell))
		if key == "" {
			continue
		}
		if _, exists := positions[key]; !exists {
			positions[key] = idx
		}
	}

	out := make(map[Field]int, len(specs))
	for _, spec := range specs {
		found := false
		for _, alias := range spec.aliases {
			if idx, exists := positions[strings.ToLower(alias)]; exists {
				out[spec.field] = idx
				found = true
				break
			}
		}
		if !found && !spec.optional {
			return nil, &SchemaError{
				Table:  tableName,
				Target: target,
				Field:  spec.field,
				Header: append([]string(nil), header...),
			}
		}
	}

	return out, nil
}

// Normalize converts a raw table into canonical records. Blank rows are dropped.
func Normalize(table Table, target Target) ([]Record, error) {
	columns, err := ResolveColumns(table.Name, table.Header, target)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		values := make(map[Field]string, len(columns))
		blank := true
		for field, idx := range columns {
			value := ""
			if idx < len(row) {
				value = strings.TrimSpace(row[idx])
			}
			if value != "" {
				blank = false
			}
			values[field] = value
		}
		if blank {
			continue
		}
		out = append(out, NewRecord(i+2, values))
	}

	return out, nil
}
