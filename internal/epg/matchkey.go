// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import "strings"

// partFiller is the German "part N" marker found in many episode titles.
const partFiller = " Teil "

// NormalizeMatchKey reduces text to the key used for fuzzy episode matching:
// every " Teil " is dropped, then everything but ASCII letters and digits,
// then any leading digits. The result is never meant for display.
func NormalizeMatchKey(s string) string {
	s = strings.ReplaceAll(s, partFiller, "")

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIIAlnum(c) {
			b.WriteByte(c)
		}
	}

	return strings.TrimLeft(b.String(), "0123456789")
}

func isASCIIAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// HasFoldPrefix reports whether prefix is an ASCII case-insensitive prefix of s.
func HasFoldPrefix(s, prefix string) bool {
	return len(prefix) <= len(s) && strings.EqualFold(s[:len(prefix)], prefix)
}
