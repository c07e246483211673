package matching

import "sort"

// MatchResult is a scored candidate ready for display.
type MatchResult struct {
	Candidate       Candidate `json:"candidate"`
	Score           float64   `json:"score"`
	MatchPercentage int       `json:"matchPercentage"`
	SharedInterests []string  `json:"sharedInterests"`
}

// Evaluate scores a single candidate.
func Evaluate(pref Preference, c Candidate) MatchResult {
	score := Score(pref, c)
	return MatchResult{
		Candidate:       c,
		Score:           score,
		MatchPercentage: MatchPercentage(score),
		SharedInterests: SharedInterests(pref.Interests, c.Interests),
	}
}

// Rank scores every candidate and orders them by descending score.
// Candidates with equal scores keep their input order. The input slice is
// not modified.
func Rank(pref Preference, candidates []Candidate) []MatchResult {
	results := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Evaluate(pref, c))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// SharedInterests returns the interests present in both sets, sorted.
func SharedInterests(user, other []string) []string {
	theirs := toSet(other)
	seen := make(map[string]bool)
	shared := []string{}
	for _, tag := range user {
		if theirs[tag] && !seen[tag] {
			seen[tag] = true
			shared = append(shared, tag)
		}
	}
	sort.Strings(shared)
	return shared
}
