package fields

// maxSuggestDistance bounds how far a typo may be from a declared key.
const maxSuggestDistance = 4

// closestKey finds the declared key of a section closest to input.
// Returns empty string if nothing is within maxSuggestDistance.
func (r *Registry) closestKey(section Section, input string) string {
	bestDistance := maxSuggestDistance + 1
	var bestMatch string

	// Declaration order keeps ties deterministic.
	for _, key := range r.order[section] {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = key
		}
	}

	if bestDistance <= maxSuggestDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance is the minimum number of single-rune insertions,
// deletions or substitutions turning a into b.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
