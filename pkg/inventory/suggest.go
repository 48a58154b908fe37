package inventory

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions bounds how many near-miss names an unmatched entry carries.
const maxSuggestions = 3

// suggestNames returns up to maxSuggestions dictionary names closest to the
// unmatched name, best match first. An empty result means nothing came
// close enough to be useful.
func suggestNames(name string, candidates []string) []string {
	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)

	n := len(ranks)
	if n > maxSuggestions {
		n = maxSuggestions
	}
	out := make([]string, 0, n)
	for _, r := range ranks[:n] {
		out = append(out, r.Target)
	}
	return out
}
