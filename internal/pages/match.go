package pages

import "strings"

// Score rates how well a spoken query matches a catalog name in
// [0, 1]. Substring containment is a certain match; otherwise the
// ratio of the longest common subsequence to the combined length
// approximates a diff-style similarity.
func Score(query, name string) float64 {
	a := strings.ToLower(strings.TrimSpace(query))
	b := strings.ToLower(strings.TrimSpace(name))
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 1.0
	}
	return 2.0 * float64(lcs(a, b)) / float64(len(a)+len(b))
}

// BestMatch picks the name scoring highest against the query; ties
// keep the earlier name. Zero-score names never match, so an empty
// query or catalog returns "".
func BestMatch(query string, names []string) string {
	best := ""
	bestScore := 0.0
	for _, n := range names {
		if s := Score(query, n); s > bestScore {
			best = n
			bestScore = s
		}
	}
	return best
}

func lcs(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
