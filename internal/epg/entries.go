// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"slices"
	"strings"
)

const (
	entrySep = "@"
	pairSep  = "|"
)

// Entry is one element of a multi-valued field group. It is either a bare
// token (Key empty) or a key|value pair such as "FSK|16" or "actor|Jane Doe".
type Entry struct {
	Key   string
	Value string
}

// String returns the serialized form of the entry.
func (e Entry) String() string {
	if e.Key == "" {
		return e.Value
	}
	return e.Key + pairSep + e.Value
}

// IsPair reports whether the entry carries a key.
func (e Entry) IsPair() bool { return e.Key != "" }

// ParseEntry splits a serialized token at its first '|'.
func ParseEntry(tok string) Entry {
	if k, v, ok := strings.Cut(tok, pairSep); ok {
		return Entry{Key: k, Value: v}
	}
	return Entry{Value: tok}
}

// Entries is an ordered field group.
type Entries []Entry

// String joins the entries with '@'. An empty group yields "".
func (es Entries) String() string {
	if len(es) == 0 {
		return ""
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, entrySep)
}

// ParseEntries splits an '@'-joined group of key|value pairs. Empty tokens
// are dropped.
func ParseEntries(s string) Entries {
	return splitEntries(s, ParseEntry)
}

// ParseBareEntries splits an '@'-joined group of bare tokens. A '|' inside
// a token stays part of its value.
func ParseBareEntries(s string) Entries {
	return splitEntries(s, func(tok string) Entry { return Entry{Value: tok} })
}

func splitEntries(s string, parse func(string) Entry) Entries {
	if s == "" {
		return nil
	}
	var out Entries
	for _, tok := range strings.Split(s, entrySep) {
		if tok == "" {
			continue
		}
		out = append(out, parse(tok))
	}
	return out
}

func compareEntries(a, b Entry) int {
	return strings.Compare(a.String(), b.String())
}

// insertSorted adds e to a sorted group after any equal entries.
func insertSorted(es Entries, e Entry) Entries {
	i, _ := slices.BinarySearchFunc(es, e, compareEntries)
	for i < len(es) && compareEntries(es[i], e) == 0 {
		i++
	}
	return slices.Insert(es, i, e)
}

// sortedGroup sorts es in place, keeping duplicates.
func sortedGroup(es Entries) Entries {
	slices.SortStableFunc(es, compareEntries)
	return es
}
