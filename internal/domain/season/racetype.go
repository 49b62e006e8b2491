package season

import (
	"regexp"
	"strings"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
)

// Eligibility says which point kinds a race sheet contributes to.
type Eligibility struct {
	Performance   bool
	Participation bool
}

var roundPrefixPattern = regexp.MustCompile(`^(?:round\s*|r)\d+\s*[-:]?\s*`)

// raceTypeAliases maps a spelled-out race label to its canonical race type.
var raceTypeAliases = map[string]string{
	"sprint aquabike":                    "sprint aquabike",
	"aquabike":                           "aquabike",
	"standard aquabike":                  "aquabike",
	"ironman 70.3 aquabike":              "aquabike 70.3",
	"70.3 aquabike":                      "aquabike 70.3",
	"challenge middle distance aquabike": "aquabike 70.3",
	"aquathlon":                          "aquathon",
	"aquathon":                           "aquathon",
	"long aqua":                          "long aqua",
	"long aquathlon":                     "long aqua",
	"short aqua":                         "short aqua",
	"mini aqua":                          "mini aqua",
	"super sprint":                       "super sprint",
	"enticer":                            "super sprint",
	"tempta":                             "super sprint",
	"sprint":                             "sprint",
	"sprint distance":                    "sprint",
	"standard":                           "standard",
	"standard distance":                  "standard",
	"olympic":                            "standard",
	"classic":                            "classic",
	"half club":                          "half club",
	"70.3":                               "ironman 70.3",
	"ironman 70.3":                       "ironman 70.3",
	"ultimate":                           "ironman 70.3",
	"enduro":                             "ironman 70.3",
	"challenge middle distance":          "ironman 70.3",
	"ironman":                            "ironman",
	"ultra":                              "ultra",
	"teams":                              "teams",
	"duathlon":                           "duathlon",
	"super sprint duathlon":              "super sprint duathlon",
	"sprint duathlon":                    "sprint duathlon",
	"standard duathlon":                  "standard duathlon",
}

var clubEventKeywords = []string{"club", "champs", "championship"}

var auxiliarySheetKeywords = []string{"icl", "summary", "points", "eligible", "manual", "calculations"}

// IsRaceSheet reports whether a workbook sheet holds race results rather than
// the ICL table or operator working sheets.
func IsRaceSheet(sheetName string) bool {
	name := strings.ToLower(sheetName)
	for _, keyword := range auxiliarySheetKeywords {
		if strings.Contains(name, keyword) {
			return false
		}
	}
	return strings.TrimSpace(name) != ""
}

// IsICLSheet reports whether a sheet is the "Current ICL Eligible Number" table.
func IsICLSheet(sheetName string) bool {
	name := strings.ToLower(sheetName)
	return strings.Contains(name, "icl") || strings.Contains(name, "eligible number")
}

// RaceLabel strips a leading "Round 3" or "R3" from a sheet name and normalizes the rest.
func RaceLabel(sheetName string) string {
	label := identity.NormalizeName(sheetName)
	return strings.TrimSpace(roundPrefixPattern.ReplaceAllString(label, ""))
}

// CanonicalRaceType resolves a label through the alias table. Unknown labels map to themselves.
func CanonicalRaceType(label string) string {
	label = identity.NormalizeName(label)
	if canonical, ok := raceTypeAliases[label]; ok {
		return canonical
	}
	return label
}

// ParseRaceTypes splits a configured race type cell. "club and aquabike" yields both
// parts; "n/a" and blanks yield nothing.
func ParseRaceTypes(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		for _, part := range strings.Split(identity.NormalizeName(item), " and ") {
			part = strings.TrimSpace(part)
			if part == "" || part == "n/a" || part == "na" {
				continue
			}
			canonical := CanonicalRaceType(part)
			if _, exists := seen[canonical]; exists {
				continue
			}
			seen[canonical] = struct{}{}
			out = append(out, canonical)
		}
	}
	return out
}

// Classify validates a race sheet against the round's eligible race types.
// Club championship events are always eligible for both point kinds.
func (r RoundConfig) Classify(sheetName string) (Eligibility, error) {
	label := RaceLabel(sheetName)
	for _, keyword := range clubEventKeywords {
		if strings.Contains(label, keyword) {
			return Eligibility{Performance: true, Participation: true}, nil
		}
	}

	raceType := CanonicalRaceType(label)
	if contains(r.PerformanceRaceTypes, raceType) {
		return Eligibility{Performance: true, Participation: true}, nil
	}
	if contains(r.ParticipationRaceTypes, raceType) {
		return Eligibility{Participation: true}, nil
	}

	return Eligibility{}, &UnknownRaceTypeError{
		Sheet:   sheetName,
		Label:   label,
		Allowed: r.EligibleRaceTypes(),
	}
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
