// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package epg holds the canonical programme record imported from XMLTV
// documents together with the helpers needed to build it: XMLTV time
// conversion, match-key normalization and channel name lookup.
package epg

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// MaxParentalRating is the highest age that counts towards the parental rating.
const MaxParentalRating = 18

// Event is one programme occurrence. A single instance is reused for every
// programme of a document; Clear must be called before refilling it.
//
// The multi-valued groups credits, category, rating and star rating are kept
// sorted; equal entries are all retained. Review, video and pics keep
// insertion order.
type Event struct {
	source    string
	channelID string

	eventID   uint16
	startTime time.Time
	duration  int

	title       string
	origTitle   string
	shortText   string
	description string
	country     string
	audio       string

	year           int
	season         int
	episode        int
	episodeOverall int
	parentalRating int

	credits    Entries
	category   Entries
	review     Entries
	rating     Entries
	starRating Entries
	video      Entries
	pics       Entries

	mixing bool
}

// compactSpace trims s and collapses inner whitespace runs to one blank.
func compactSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Clear resets every field to its zero value.
func (e *Event) Clear() { *e = Event{} }

func (e *Event) SetSource(v string) { e.source = compactSpace(v) }
func (e *Event) SetChannelID(v string) { e.channelID = compactSpace(v) }
func (e *Event) SetTitle(v string) { e.title = compactSpace(v) }
func (e *Event) SetOrigTitle(v string) { e.origTitle = compactSpace(v) }
func (e *Event) SetShortText(v string) { e.shortText = compactSpace(v) }
func (e *Event) SetDescription(v string) { e.description = compactSpace(v) }
func (e *Event) SetCountry(v string) { e.country = compactSpace(v) }
func (e *Event) SetAudio(v string) { e.audio = compactSpace(v) }

func (e *Event) SetStartTime(t time.Time) { e.startTime = t }
func (e *Event) SetDuration(seconds int) { e.duration = seconds }
func (e *Event) SetYear(y int) { e.year = y }
func (e *Event) SetSeason(s int) { e.season = s }
func (e *Event) SetEpisode(n int) { e.episode = n }
func (e *Event) SetEpisodeOverall(n int) { e.episodeOverall = n }
func (e *Event) SetMixing(m bool) { e.mixing = m }

// SetEventID overrides the derived id. Zero means unset.
func (e *Event) SetEventID(id uint16) { e.eventID = id }

func (e *Event) Source() string { return e.source }
func (e *Event) ChannelID() string { return e.channelID }
func (e *Event) EventID() uint16 { return e.eventID }
func (e *Event) StartTime() time.Time { return e.startTime }
func (e *Event) Duration() int { return e.duration }
func (e *Event) Title() string { return e.title }
func (e *Event) HasTitle() bool { return e.title != "" }
func (e *Event) OrigTitle() string { return e.origTitle }
func (e *Event) ShortText() string { return e.shortText }
func (e *Event) Description() string { return e.description }
func (e *Event) Country() string { return e.country }
func (e *Event) Audio() string { return e.audio }
func (e *Event) Year() int { return e.year }
func (e *Event) Season() int { return e.season }
func (e *Event) Episode() int { return e.episode }
func (e *Event) EpisodeOverall() int { return e.episodeOverall }
func (e *Event) ParentalRating() int { return e.parentalRating }
func (e *Event) Mixing() bool { return e.mixing }
func (e *Event) Credits() Entries { return slices.Clone(e.credits) }
func (e *Event) Category() Entries { return slices.Clone(e.category) }
func (e *Event) Review() Entries { return slices.Clone(e.review) }
func (e *Event) Rating() Entries { return slices.Clone(e.rating) }
func (e *Event) StarRating() Entries { return slices.Clone(e.starRating) }
func (e *Event) Video() Entries { return slices.Clone(e.video) }
func (e *Event) Pics() Entries { return slices.Clone(e.pics) }

// AddCredits adds "role|name" or, with an addendum, "role|name (addendum)".
func (e *Event) AddCredits(role, name, addendum string) {
	name = compactSpace(name)
	if a := compactSpace(addendum); a != "" {
		name += " (" + a + ")"
	}
	e.credits = insertSorted(e.credits, Entry{Key: role, Value: name})
}

func (e *Event) AddCategory(name string) {
	e.category = insertSorted(e.category, Entry{Value: compactSpace(name)})
}

// AddRating stores "system|value". A value between 1 and 18 raises the
// parental rating; anything else is stored but not counted.
func (e *Event) AddRating(system, value string) {
	value = compactSpace(value)
	e.rating = insertSorted(e.rating, Entry{Key: system, Value: value})
	e.raiseParentalRating(value)
}

// AddStarRating stores "system|value"; an empty system is recorded as "*".
func (e *Event) AddStarRating(system, value string) {
	if system == "" {
		system = "*"
	}
	e.starRating = insertSorted(e.starRating, Entry{Key: system, Value: compactSpace(value)})
}

// AddVideo stores "kind|value", e.g. "aspect|16:9".
func (e *Event) AddVideo(kind, value string) {
	e.video = append(e.video, Entry{Key: kind, Value: compactSpace(value)})
}

func (e *Event) AddReview(text string) {
	e.review = append(e.review, Entry{Value: compactSpace(text)})
}

func (e *Event) AddPics(uri string) {
	e.pics = append(e.pics, Entry{Value: compactSpace(uri)})
}

// The bulk setters replace a group with the tokens of its '@'-joined form.

func (e *Event) SetCredits(s string) { e.credits = sortedGroup(ParseEntries(s)) }
func (e *Event) SetCategory(s string) { e.category = sortedGroup(ParseBareEntries(s)) }
func (e *Event) SetStarRating(s string) { e.starRating = sortedGroup(ParseEntries(s)) }
func (e *Event) SetReview(s string) { e.review = ParseBareEntries(s) }
func (e *Event) SetVideo(s string) { e.video = ParseEntries(s) }
func (e *Event) SetPics(s string) { e.pics = ParseBareEntries(s) }

// SetRating replaces the rating group and recomputes the parental rating
// from every key|value token.
func (e *Event) SetRating(s string) {
	e.rating = sortedGroup(ParseEntries(s))
	e.parentalRating = 0
	for _, r := range e.rating {
		if r.IsPair() {
			e.raiseParentalRating(r.Value)
		}
	}
}

func (e *Event) raiseParentalRating(value string) {
	r := Atoi(value)
	if r > 0 && r <= MaxParentalRating && r > e.parentalRating {
		e.parentalRating = r
	}
}

// CreateEventID derives the 16-bit id from the calendar fields of start as
// seen in start's location: day-of-month in bits 15-11, hour in bits 10-6 and
// minute in bits 5-0. An id that is already set is kept.
//
// The id repeats every month, so two programmes on the same channel sharing
// day, hour and minute collide once more than a month of data is stored.
func (e *Event) CreateEventID(start time.Time) {
	if e.eventID != 0 {
		return
	}
	id := (start.Day() & 0x1F) << 11
	id |= (start.Hour() & 0x1F) << 6
	id |= start.Minute() & 0x3F
	e.eventID = uint16(id & 0xFFFF)
}

// Atoi parses the leading decimal integer of s the way C's atoi does:
// leading blanks and an optional sign are accepted, parsing stops at the
// first non-digit and an unparsable string yields 0.
func Atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
