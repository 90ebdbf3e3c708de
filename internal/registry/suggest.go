package registry

import (
	"sort"
	"strings"
)

// maxSuggestions bounds how many near-miss ids an error message carries.
const maxSuggestions = 3

// maxEditDistance is the furthest a candidate may be from the query.
const maxEditDistance = 2

// Suggest returns up to three ids and aliases in the namespace within edit
// distance 2 of the query, nearest first, ties broken lexically.
func (r *Registry) Suggest(ns Namespace, query string) []string {
	query = strings.ToLower(query)

	type candidate struct {
		id   string
		dist int
	}
	var candidates []candidate
	seen := make(map[string]bool)

	consider := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if d := editDistance(query, id, maxEditDistance); d >= 0 {
			candidates = append(candidates, candidate{id, d})
		}
	}

	for _, id := range r.IDs(ns) {
		consider(id)
	}
	for alias := range r.aliases[ns] {
		consider(alias)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})

	var out []string
	for _, c := range candidates {
		out = append(out, c.id)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// editDistance computes the Levenshtein distance between a and b, returning
// -1 as soon as the distance is known to exceed max.
func editDistance(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > max {
		return -1
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > max {
			return -1
		}
		prev, curr = curr, prev
	}

	if prev[len(rb)] > max {
		return -1
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
