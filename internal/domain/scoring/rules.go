package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPolicy = errors.New("unknown participation policy")

// Tier is one participation cutoff: clubs with at least Threshold distinct finishers earn Points.
type Tier struct {
	Threshold int
	Points    int
}

// ParticipationPolicy turns a club's distinct finisher count into participation points.
// Tiers are ordered by ascending threshold.
type ParticipationPolicy func(finishers int, tiers []Tier) int

// HighestTier awards the points of the highest tier reached.
func HighestTier(finishers int, tiers []Tier) int {
	points := 0
	for _, tier := range tiers {
		if finishers >= tier.Threshold {
			points = tier.Points
		}
	}
	return points
}

// CumulativeTiers awards the sum of every tier reached.
func CumulativeTiers(finishers int, tiers []Tier) int {
	points := 0
	for _, tier := range tiers {
		if finishers >= tier.Threshold {
			points += tier.Points
		}
	}
	return points
}

const (
	PolicyHighestTier     = "highest"
	PolicyCumulativeTiers = "cumulative"
)

// PolicyByName maps a configuration value to a participation policy.
func PolicyByName(name string) (ParticipationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyHighestTier:
		return HighestTier, nil
	case PolicyCumulativeTiers:
		return CumulativeTiers, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
}

// Rules stores round scoring parameters.
type Rules struct {
	// RankPoints[i] is awarded to rank i+1 of a category; ranks past the end earn nothing.
	RankPoints       []int
	TierPoints       [3]int
	RoundCap         int
	DoubleRoundCap   int
	DoubleMultiplier int
	Participation    ParticipationPolicy
}

func DefaultRules() Rules {
	return Rules{
		RankPoints:       []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
		TierPoints:       [3]int{15, 30, 45},
		RoundCap:         150,
		DoubleRoundCap:   300,
		DoubleMultiplier: 2,
		Participation:    HighestTier,
	}
}

func (r Rules) rankPoints(rank int) int {
	if rank < 1 || rank > len(r.RankPoints) {
		return 0
	}
	return r.RankPoints[rank-1]
}

func (r Rules) tiers(thresholds Thresholds) []Tier {
	tiers := make([]Tier, 0, len(thresholds))
	for i, threshold := range thresholds {
		tiers = append(tiers, Tier{Threshold: threshold, Points: r.TierPoints[i]})
	}
	return tiers
}

func (r Rules) multiplier(double bool) int {
	if double && r.DoubleMultiplier > 0 {
		return r.DoubleMultiplier
	}
	return 1
}

func (r Rules) roundCap(double bool) int {
	if double {
		return r.DoubleRoundCap
	}
	return r.RoundCap
}
