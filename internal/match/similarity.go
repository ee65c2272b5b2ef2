package match

// CombinedSimilarity scores two normalized names in [0, 1] by averaging a
// Jaro-Winkler similarity (forgiving of typos and reordered characters)
// with a length-normalized Levenshtein similarity (sensitive to overall
// length differences). Either sub-score alone misclassifies: Jaro-Winkler
// over-rewards short shared prefixes, Levenshtein over-punishes
// transpositions. The mean is high only when both agree.
func CombinedSimilarity(a, b string) float64 {
	return (JaroWinkler(a, b) + LevenshteinSimilarity(a, b)) / 2.0
}

// JaroWinkler computes the Jaro similarity with the Winkler common-prefix
// bonus (scaling factor 0.1, prefix capped at 4 runes).
func JaroWinkler(a, b string) float64 {
	r1, r2 := []rune(a), []rune(b)

	j := jaro(r1, r2)
	if j == 0 {
		return 0
	}

	prefix := 0
	for i := 0; i < len(r1) && i < len(r2) && i < 4; i++ {
		if r1[i] != r2[i] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*0.1*(1.0-j)
}

func jaro(r1, r2 []rune) float64 {
	if len(r1) == 0 && len(r2) == 0 {
		return 1.0
	}
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	window := maxInt(len(r1), len(r2))/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len(r1))
	matched2 := make([]bool, len(r2))

	matches := 0
	for i := range r1 {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > len(r2) {
			hi = len(r2)
		}
		for k := lo; k < hi; k++ {
			if matched2[k] || r1[i] != r2[k] {
				continue
			}
			matched1[i] = true
			matched2[k] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Half-transpositions: matched runes that line up against a
	// different rune on the other side.
	transpositions := 0
	k := 0
	for i := range r1 {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2.0
	return (m/float64(len(r1)) + m/float64(len(r2)) + (m-t)/m) / 3.0
}

// LevenshteinSimilarity is 1 - dist/maxLen; two empty strings score 1.
func LevenshteinSimilarity(a, b string) float64 {
	r1, r2 := []rune(a), []rune(b)
	maxLen := maxInt(len(r1), len(r2))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(r1, r2))/float64(maxLen)
}

func levenshtein(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
