// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameKey(t *testing.T) {
	assert.Equal(t, "orf1", NameKey("ORF1 HD"))
	assert.Equal(t, "das erste", NameKey("  Das   Erste HD DE "))
	assert.Equal(t, NameKey("Ö1"), NameKey("Ö1"))
}

func TestFindBest(t *testing.T) {
	ids := []string{"orf1.at", "orf2.at", "rtl.de", "pro7.de", "daserste.de"}

	tests := []struct {
		name    string
		input   string
		maxDist int
		want    string
		found   bool
	}{
		{"exact", "rtl.de", 2, "rtl.de", true},
		{"case and suffix", "RTL.DE", 2, "rtl.de", true},
		{"one edit", "orf3.at", 1, "orf1.at", true},
		{"too far", "zdf.de", 1, "", false},
		{"empty candidates", "orf1", 2, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ids
			if tt.name == "empty candidates" {
				c = nil
			}
			got, ok := FindBest(tt.input, c, tt.maxDist)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 1, levenshtein("ö", "o"))
}
