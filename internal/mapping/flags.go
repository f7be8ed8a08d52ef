// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package mapping

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flags selects which programme fields a mapping takes over and how.
type Flags uint32

const (
	UseShortText   Flags = 0x1
	UseLongText    Flags = 0x2
	UseCountryDate Flags = 0x4
	UseOrigTitle   Flags = 0x8
	UseCategory    Flags = 0x10
	UseCredits     Flags = 0x20
	UseRating      Flags = 0x40
	UseReview      Flags = 0x80
	UseVideo       Flags = 0x100
	UseAudio       Flags = 0x200
	UseEpisodes    Flags = 0x400

	OptMergeLongText Flags = 0x10000000
	OptVPS           Flags = 0x20000000
	// OptAppend layers imported data onto existing EPG. Without it the
	// mapping merges, i.e. imported events may overwrite existing ones.
	OptAppend Flags = 0x40000000
)

var flagNames = map[Flags]string{
	UseShortText:     "shorttext",
	UseLongText:      "longtext",
	UseCountryDate:   "countrydate",
	UseOrigTitle:     "origtitle",
	UseCategory:      "category",
	UseCredits:       "credits",
	UseRating:        "rating",
	UseReview:        "review",
	UseVideo:         "video",
	UseAudio:         "audio",
	UseEpisodes:      "episodes",
	OptMergeLongText: "mergelongtext",
	OptVPS:           "vps",
	OptAppend:        "append",
}

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Names returns the option names of the set bits, sorted.
func (f Flags) Names() []string {
	names := make([]string, 0, bits.OnesCount32(uint32(f)))
	for bit, name := range flagNames {
		if f.Has(bit) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ParseFlag returns the bit for an option name.
func ParseFlag(name string) (Flags, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for bit, n := range flagNames {
		if n == name {
			return bit, nil
		}
	}
	return 0, fmt.Errorf("unknown mapping option %q", name)
}

// MarshalYAML writes flags as a list of option names.
func (f Flags) MarshalYAML() (any, error) {
	return f.Names(), nil
}

// UnmarshalYAML accepts a list of option names or a raw integer.
func (f *Flags) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n uint32
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("line %d: mapping options: %w", value.Line, err)
		}
		*f = Flags(n)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		var out Flags
		for _, n := range names {
			bit, err := ParseFlag(n)
			if err != nil {
				return fmt.Errorf("line %d: %w", value.Line, err)
			}
			out |= bit
		}
		*f = out
		return nil
	default:
		return fmt.Errorf("line %d: mapping options must be a list", value.Line)
	}
}
