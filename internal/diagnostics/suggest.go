package diagnostics

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest returns the candidate closest to target, or "" when nothing is
// close enough to be worth mentioning.
func Suggest(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	// Typos rarely keep the characters in order; fall back to edit distance.
	best, bestDist := "", len(target)/2+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
