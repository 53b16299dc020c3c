package match

// Ratio computes the Ratcliff/Obershelp similarity of two strings:
// twice the number of matching characters divided by the total length.
// Matching characters are found by recursively locating the longest
// common substring and repeating on the unmatched flanks.
func Ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingChars(a, b)) / float64(total)
}

func matchingChars(a, b string) int {
	ai, bi, n := longestCommonSubstring(a, b)
	if n == 0 {
		return 0
	}
	return n +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+n:], b[bi+n:])
}

// longestCommonSubstring returns the start offsets in a and b and the length
// of their longest common substring. Ties resolve to the earliest match in a.
func longestCommonSubstring(a, b string) (ai, bi, n int) {
	if a == "" || b == "" {
		return 0, 0, 0
	}
	// prev[j] = length of common suffix of a[:i] and b[:j]
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > n {
					n = cur[j]
					ai = i - n
					bi = j - n
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, n
}
