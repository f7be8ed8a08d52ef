// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package importer

import (
	"strings"
	"unicode"

	"github.com/ManuGH/xmltv2db/internal/epg"
)

// ignoredElements are known programme children that carry nothing storable.
var ignoredElements = map[string]struct{}{
	"icon":        {},
	"length":      {},
	"episode-num": {},
}

var videoKinds = map[string]struct{}{
	"colour":  {},
	"aspect":  {},
	"quality": {},
}

// extractor fills an Event from the children of one programme element.
type extractor struct {
	lang    string // two letter locale prefix, lower case
	ev      *epg.Event
	unknown func(name string)

	localTitle bool
}

func (x *extractor) extract(prog *node) {
	x.localTitle = false
	for i := range prog.Children {
		c := &prog.Children[i]
		switch strings.ToLower(c.XMLName.Local) {
		case "title":
			x.title(c)
		case "sub-title":
			if c.Text != "" {
				x.ev.SetShortText(c.Text)
			}
		case "desc":
			if c.Text != "" {
				x.ev.SetDescription(c.Text)
			}
		case "credits":
			x.credits(c)
		case "date":
			if c.Text != "" {
				x.ev.SetYear(epg.Atoi(c.Text))
			}
		case "category":
			x.category(c)
		case "country":
			if c.Text != "" {
				x.ev.SetCountry(c.Text)
			}
		case "video":
			x.video(c)
		case "audio":
			c.each("stereo", func(v *node) {
				if v.Text != "" {
					x.ev.SetAudio(stripSpace(v.Text))
				}
			})
		case "rating":
			system, ok := c.attr("system")
			if !ok {
				continue
			}
			c.each("value", func(v *node) {
				if v.Text != "" {
					x.ev.AddRating(system, v.Text)
				}
			})
		case "star-rating":
			system, _ := c.attr("system")
			c.each("value", func(v *node) {
				if v.Text != "" {
					x.ev.AddStarRating(system, v.Text)
				}
			})
		case "review":
			if typ, ok := c.attr("type"); ok && strings.EqualFold(typ, "text") && c.Text != "" {
				x.ev.AddReview(c.Text)
			}
		default:
			if _, ok := ignoredElements[strings.ToLower(c.XMLName.Local)]; ok {
				continue
			}
			if x.unknown != nil {
				x.unknown(c.XMLName.Local)
			}
		}
	}
}

// title keeps the first title in the configured language as the primary
// title. Other titles fill the title when it is still empty and the
// original title otherwise.
func (x *extractor) title(c *node) {
	if c.Text == "" {
		return
	}
	lang, _ := c.attr("lang")
	if !x.localTitle && x.lang != "" && langMatches(lang, x.lang) {
		if x.ev.HasTitle() && x.ev.OrigTitle() == "" {
			x.ev.SetOrigTitle(x.ev.Title())
		}
		x.ev.SetTitle(c.Text)
		x.localTitle = true
		return
	}
	if !x.ev.HasTitle() {
		x.ev.SetTitle(c.Text)
		return
	}
	x.ev.SetOrigTitle(c.Text)
}

func (x *extractor) credits(c *node) {
	for i := range c.Children {
		v := &c.Children[i]
		if v.Text == "" {
			continue
		}
		role := v.XMLName.Local
		var addendum string
		if v.is("actor") {
			addendum, _ = v.attr("role")
		}
		x.ev.AddCredits(role, v.Text, addendum)
	}
}

func (x *extractor) video(c *node) {
	for i := range c.Children {
		v := &c.Children[i]
		kind := strings.ToLower(v.XMLName.Local)
		if _, ok := videoKinds[kind]; ok && v.Text != "" {
			x.ev.AddVideo(kind, v.Text)
		}
	}
}

// category treats a purely numeric value as an event id override.
func (x *extractor) category(c *node) {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return
	}
	if isNumeric(text) {
		x.ev.SetEventID(uint16(epg.Atoi(text)))
		return
	}
	x.ev.AddCategory(c.Text)
}

func langMatches(lang, want string) bool {
	return len(lang) >= 2 && strings.EqualFold(lang[:2], want)
}

// localeLanguage reduces a locale such as "de_DE.UTF-8" to "de".
func localeLanguage(locale string) string {
	lang, _, _ := strings.Cut(locale, "_")
	lang, _, _ = strings.Cut(lang, ".")
	if len(lang) < 2 || lang == "POSIX" {
		return ""
	}
	return strings.ToLower(lang[:2])
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
