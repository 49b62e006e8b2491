package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads a spreadsheet numeric cell and floors it to an int.
// Spreadsheet exports often render whole numbers as "12.0" or "1,200".
func ParseNumber(raw string) (int, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return 0, fmt.Errorf("empty number")
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	f = math.Floor(f)
	// on 64-bit platforms float64(math.MaxInt) is 2^63, one past the largest int
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return int(f), nil
}

// ParseFlag reads Yes/No style cells. Anything unrecognized is false.
func ParseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "t", "1", "x":
		return true
	default:
		return false
	}
}

// SplitList splits a comma or newline separated cell into trimmed, non-empty items.
func SplitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.Join(strings.Fields(part), " ")
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
