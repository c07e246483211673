package matching

import "math"

// Score components.
const (
	DestinationBonus = 0.3
	BudgetBonus      = 0.2
	// DateOverlapBonus is added for every candidate. It stands in for a real
	// interval intersection and does not look at the dates.
	DateOverlapBonus = 0.1
	MaxScore         = 0.99
)

// CosineSimilarity compares two interest sets as binary indicator vectors
// over their union. It returns 0 when either set is empty.
func CosineSimilarity(user, other []string) float64 {
	a := toSet(user)
	b := toSet(other)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Entries are 0/1, so the dot product is the intersection size and each
	// magnitude is the square root of the set size.
	shared := 0
	for tag := range a {
		if b[tag] {
			shared++
		}
	}
	return float64(shared) / (math.Sqrt(float64(len(a))) * math.Sqrt(float64(len(b))))
}

// Score is the compatibility of a candidate with the traveller's
// preference, in [0, MaxScore].
func Score(pref Preference, c Candidate) float64 {
	total := CosineSimilarity(pref.Interests, c.Interests)
	if c.Destination == pref.Destination {
		total += DestinationBonus
	}
	if c.Budget == pref.Budget {
		total += BudgetBonus
	}
	total += DateOverlapBonus
	return math.Min(MaxScore, total)
}

// MatchPercentage renders a score as a whole percentage.
func MatchPercentage(score float64) int {
	return int(math.Round(score * 100))
}

func toSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return set
}
