package identity

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownClub = errors.New("unknown club")

// Club is a canonical club identity. Key is the normalized name used for matching,
// Name the display name taken from the season configuration.
type Club struct {
	Key  string
	Name string
}

// UnknownClubError reports a raw club name that matches no member club of the round.
type UnknownClubError struct {
	Raw string
}

func (e *UnknownClubError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownClub, e.Raw)
}

func (e *UnknownClubError) Unwrap() error {
	return ErrUnknownClub
}

// NormalizeName trims, collapses internal whitespace and lower-cases raw.
func NormalizeName(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// ClubResolver matches raw club strings against a fixed set of member clubs.
type ClubResolver struct {
	byKey map[string]Club
	order []string
}

func NewClubResolver(members []string) *ClubResolver {
	r := &ClubResolver{
		byKey: make(map[string]Club, len(members)),
		order: make([]string, 0, len(members)),
	}
	for _, raw := range members {
		key := NormalizeName(raw)
		if key == "" {
			continue
		}
		if _, exists := r.byKey[key]; exists {
			continue
		}
		r.byKey[key] = Club{Key: key, Name: strings.Join(strings.Fields(raw), " ")}
		r.order = append(r.order, key)
	}
	return r
}

func (r *ClubResolver) Resolve(raw string) (Club, error) {
	club, ok := r.byKey[NormalizeName(raw)]
	if !ok {
		return Club{}, &UnknownClubError{Raw: raw}
	}
	return club, nil
}

// Clubs returns the member clubs in configuration order.
func (r *ClubResolver) Clubs() []Club {
	out := make([]Club, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out
}

func (r *ClubResolver) Len() int {
	return len(r.order)
}

// AthleteKey identifies an athlete across sheets and rounds.
type AthleteKey string

// AthleteKeyOf prefers the TA number. Without one it falls back to the normalized
// (first name, surname) pair, which can merge two people who share a name.
func AthleteKeyOf(taNumber, firstName, surname string) AthleteKey {
	ta := strings.ToUpper(strings.Join(strings.Fields(taNumber), ""))
	if ta != "" {
		return AthleteKey("ta:" + ta)
	}
	return AthleteKey("name:" + NormalizeName(firstName) + "|" + NormalizeName(surname))
}

// FullName joins first name and surname for display.
func FullName(firstName, surname string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(firstName+" "+surname), " "))
}
