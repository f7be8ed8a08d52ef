// SPDX-License-Identifier: MIT

package epg

import (
	"regexp"
	"strings"

	unorm "golang.org/x/text/unicode/norm"
)

var (
	suffix = regexp.MustCompile(`\s+(hd|uhd|4k|austria|österreich|oesterreich|at|de|ch)$`)
	space  = regexp.MustCompile(`\s+`)
)

func normalize(s string) string {
	// Normalize Unicode to NFC form (composed form) before processing
	s = unorm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	// Re-normalize after case conversion (lowercase may create new combining sequences)
	s = unorm.NFC.String(s)

	// Remove suffixes repeatedly until none remain (handles cases like "Ch HD")
	for {
		before := s
		s = suffix.ReplaceAllString(s, "")
		if s == before {
			break
		}
	}

	s = space.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NameKey generates a normalized key from a channel id or name for matching.
func NameKey(s string) string { return normalize(s) }

// FindBest returns the candidate whose NameKey is closest to name's.
// maxDist is the largest edit distance still accepted.
func FindBest(name string, candidates []string, maxDist int) (string, bool) {
	key := NameKey(name)

	best := ""
	bestDist := maxDist + 1
	for _, c := range candidates {
		ck := NameKey(c)
		if ck == key {
			return c, true
		}
		if d := levenshtein(key, ck); d < bestDist {
			bestDist = d
			best = c
		}
	}

	if bestDist <= maxDist {
		return best, true
	}
	return "", false
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	lenA, lenB := len(ra), len(rb)

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Two rolling rows are enough for the distance alone.
	prev := make([]int, lenB+1)
	cur := make([]int, lenB+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		cur[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[lenB]
}
