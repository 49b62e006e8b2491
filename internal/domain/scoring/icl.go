package scoring

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/icl-ladder/internal/domain/identity"
	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
)

// Thresholds are finisher counts for the 5%, 10% and 20% participation tiers, ascending.
type Thresholds [3]int

// DeriveThresholds floors 5%, 10% and 20% of the eligible number.
func DeriveThresholds(eligible int) Thresholds {
	return Thresholds{eligible * 5 / 100, eligible * 10 / 100, eligible * 20 / 100}
}

// ICLEntry is one row of the "Current ICL Eligible Number" sheet.
type ICLEntry struct {
	Club           identity.Club
	EligibleNumber int
	Thresholds     Thresholds
}

// ICLTable indexes ICL entries by normalized club name.
type ICLTable struct {
	entries map[string]ICLEntry
	order   []string
}

func NewICLTable(entries []ICLEntry) (ICLTable, error) {
	table := ICLTable{entries: make(map[string]ICLEntry, len(entries))}
	for _, entry := range entries {
		if entry.EligibleNumber < 0 {
			return ICLTable{}, fmt.Errorf("%w: club=%s eligible number is negative", ErrInvalidICLData, entry.Club.Name)
		}
		if _, exists := table.entries[entry.Club.Key]; exists {
			return ICLTable{}, fmt.Errorf("%w: club=%s listed twice", ErrInvalidICLData, entry.Club.Name)
		}
		table.entries[entry.Club.Key] = entry
		table.order = append(table.order, entry.Club.Key)
	}
	return table, nil
}

// ICLFromRecords reads normalized ICL sheet records. Thresholds missing from the sheet are derived.
func ICLFromRecords(records []schema.Record) (ICLTable, error) {
	entries := make([]ICLEntry, 0, len(records))
	for _, record := range records {
		raw, ok := record.Lookup(schema.FieldClub)
		if !ok {
			continue
		}

		eligible, err := schema.ParseNumber(record.Get(schema.FieldICLEligibleNumber))
		if err != nil {
			return ICLTable{}, fmt.Errorf("%w: row %d club=%q: %v", ErrInvalidICLData, record.Row, raw, err)
		}

		thresholds := DeriveThresholds(eligible)
		for i, field := range []schema.Field{schema.FieldThreshold5, schema.FieldThreshold10, schema.FieldThreshold20} {
			value, ok := record.Lookup(field)
			if !ok {
				continue
			}
			n, err := schema.ParseNumber(value)
			if err != nil {
				return ICLTable{}, fmt.Errorf("%w: row %d club=%q %s: %v", ErrInvalidICLData, record.Row, raw, field, err)
			}
			thresholds[i] = n
		}

		entries = append(entries, ICLEntry{
			Club:           identity.Club{Key: identity.NormalizeName(raw), Name: strings.Join(strings.Fields(raw), " ")},
			EligibleNumber: eligible,
			Thresholds:     thresholds,
		})
	}
	return NewICLTable(entries)
}

func (t ICLTable) Lookup(clubKey string) (ICLEntry, bool) {
	entry, ok := t.entries[clubKey]
	return entry, ok
}

// Entries returns entries in sheet order.
func (t ICLTable) Entries() []ICLEntry {
	out := make([]ICLEntry, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.entries[key])
	}
	return out
}

// ClubNames lists the ICL clubs, useful when a round configures no member list.
func (t ICLTable) ClubNames() []string {
	out := make([]string, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.entries[key].Club.Name)
	}
	return out
}

func (t ICLTable) Len() int {
	return len(t.order)
}
