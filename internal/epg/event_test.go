// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetters_CompactWhitespace(t *testing.T) {
	var e Event
	e.SetTitle("  Tatort:\n  Der   Fall \t")
	e.SetDescription("a\n\nb")
	e.SetShortText("")

	assert.Equal(t, "Tatort: Der Fall", e.Title())
	assert.Equal(t, "a b", e.Description())
	assert.Empty(t, e.ShortText())
	assert.True(t, e.HasTitle())

	e.SetTitle("")
	assert.False(t, e.HasTitle())
}

func TestParentalRating_IsMaximum(t *testing.T) {
	var e Event
	e.AddRating("FSK", "16")
	e.AddRating("MPAA", "12")
	assert.Equal(t, 16, e.ParentalRating())
}

func TestParentalRating_IgnoresOutOfRangeButStores(t *testing.T) {
	var e Event
	e.AddRating("FSK", "6")
	e.AddRating("X", "21")
	e.AddRating("Y", "PG")
	e.AddRating("Z", "0")

	assert.Equal(t, 6, e.ParentalRating())
	assert.Equal(t, "FSK|6@X|21@Y|PG@Z|0", e.Rating().String())
}

func TestSortedGroups(t *testing.T) {
	var e Event
	e.AddCredits("director", "Zoe", "")
	e.AddCredits("actor", "Bob", "Kommissar")
	e.AddCredits("actor", "Anna", "")
	e.AddCredits("actor", "Anna", "")
	e.AddCategory("Krimi")
	e.AddCategory("Drama")
	e.AddStarRating("", "3/5")
	e.AddStarRating("IMDB", "7/10")

	assert.Equal(t, "actor|Anna@actor|Anna@actor|Bob (Kommissar)@director|Zoe", e.Credits().String())
	assert.Equal(t, "Drama@Krimi", e.Category().String())
	assert.Equal(t, "*|3/5@IMDB|7/10", e.StarRating().String())

	for _, g := range []Entries{e.Credits(), e.Category(), e.Rating(), e.StarRating()} {
		assert.True(t, slices.IsSortedFunc(g, compareEntries))
	}
}

func TestInsertionOrderGroups(t *testing.T) {
	var e Event
	e.AddVideo("quality", "HDTV")
	e.AddVideo("aspect", "16:9")
	e.AddReview("zweite")
	e.AddReview("erste")
	e.AddReview("erste")
	e.AddPics("b.jpg")
	e.AddPics("a.jpg")

	assert.Equal(t, "quality|HDTV@aspect|16:9", e.Video().String())
	assert.Equal(t, "zweite@erste@erste", e.Review().String())
	assert.Equal(t, "b.jpg@a.jpg", e.Pics().String())
}

func TestBulkSetters_RoundTrip(t *testing.T) {
	var src Event
	src.AddCredits("actor", "Anna", "Kim")
	src.AddCredits("writer", "Ben", "")
	src.AddCategory("Serie")
	src.AddRating("FSK", "12")
	src.AddStarRating("IMDB", "8/10")
	src.AddVideo("colour", "yes")
	src.AddReview("gut")
	src.AddPics("https://example.org/x.jpg")

	var dst Event
	dst.SetCredits(src.Credits().String())
	dst.SetCategory(src.Category().String())
	dst.SetRating(src.Rating().String())
	dst.SetStarRating(src.StarRating().String())
	dst.SetVideo(src.Video().String())
	dst.SetReview(src.Review().String())
	dst.SetPics(src.Pics().String())

	for name, pair := range map[string][2]Entries{
		"credits":    {src.Credits(), dst.Credits()},
		"category":   {src.Category(), dst.Category()},
		"rating":     {src.Rating(), dst.Rating()},
		"starrating": {src.StarRating(), dst.StarRating()},
		"video":      {src.Video(), dst.Video()},
		"review":     {src.Review(), dst.Review()},
		"pics":       {src.Pics(), dst.Pics()},
	} {
		if diff := cmp.Diff(pair[0], pair[1]); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
	assert.Equal(t, 12, dst.ParentalRating())
}

func TestSetRating_RecomputesFromPairsOnly(t *testing.T) {
	var e Event
	e.AddRating("FSK", "18")
	e.SetRating("FSK|12@16@BBFC|15")

	assert.Equal(t, 15, e.ParentalRating())
	assert.Equal(t, "16@BBFC|15@FSK|12", e.Rating().String())
}

func TestSetCategory_SortsUnsortedInput(t *testing.T) {
	var e Event
	e.SetCategory("Sport@@Doku@Sport")
	assert.Equal(t, Entries{{Value: "Doku"}, {Value: "Sport"}, {Value: "Sport"}}, e.Category())
}

func TestSortedGroups_KeepDuplicates(t *testing.T) {
	var e Event
	e.AddRating("FSK", "16")
	e.AddRating("FSK", "16")
	e.AddCategory("Drama")
	e.AddCategory("Drama")

	assert.Len(t, e.Rating(), 2)
	assert.Equal(t, "FSK|16@FSK|16", e.Rating().String())
	assert.Equal(t, 16, e.ParentalRating())
	assert.Equal(t, "Drama@Drama", e.Category().String())

	var dst Event
	dst.SetCategory("Drama@Drama@Action")
	dst.SetRating(e.Rating().String())
	assert.Equal(t, Entries{{Value: "Action"}, {Value: "Drama"}, {Value: "Drama"}}, dst.Category())
	if diff := cmp.Diff(e.Rating(), dst.Rating()); diff != "" {
		t.Errorf("rating mismatch (-want +got):\n%s", diff)
	}
}

func TestBareGroups_KeepPipeInValue(t *testing.T) {
	var src Event
	src.AddCategory("Krimi|Thriller")
	src.AddReview("5|5 Sterne")
	src.AddPics("a|b.jpg")

	var dst Event
	dst.SetCategory(src.Category().String())
	dst.SetReview(src.Review().String())
	dst.SetPics(src.Pics().String())

	assert.Equal(t, Entries{{Value: "Krimi|Thriller"}}, dst.Category())
	if diff := cmp.Diff(src.Review(), dst.Review()); diff != "" {
		t.Errorf("review mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(src.Pics(), dst.Pics()); diff != "" {
		t.Errorf("pics mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateEventID(t *testing.T) {
	var e Event
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e.CreateEventID(start)
	assert.Equal(t, uint16(1<<11|12<<6), e.EventID())

	e.CreateEventID(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, uint16(1<<11|12<<6), e.EventID(), "id must not be regenerated")
}

func TestCreateEventID_UsesLocationOfStart(t *testing.T) {
	start := time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC)
	berlin := time.FixedZone("CEST", 2*3600)

	var e Event
	e.CreateEventID(start.In(berlin))
	assert.Equal(t, uint16(1<<11|1<<6|30), e.EventID())
}

func TestCreateEventID_Maximum(t *testing.T) {
	var e Event
	e.CreateEventID(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, uint16(31<<11|23<<6|59), e.EventID())
}

func TestClear_ResetsEverything(t *testing.T) {
	var e Event
	e.SetSource("src")
	e.SetChannelID("ch")
	e.SetTitle("t")
	e.SetOrigTitle("o")
	e.SetShortText("s")
	e.SetDescription("d")
	e.SetCountry("DE")
	e.SetAudio("stereo")
	e.SetYear(1999)
	e.SetSeason(1)
	e.SetEpisode(2)
	e.SetEpisodeOverall(3)
	e.SetDuration(60)
	e.SetStartTime(time.Now())
	e.SetMixing(true)
	e.CreateEventID(time.Now())
	e.AddCredits("actor", "a", "")
	e.AddCategory("c")
	e.AddRating("FSK", "12")
	e.AddStarRating("", "1")
	e.AddVideo("aspect", "4:3")
	e.AddReview("r")
	e.AddPics("p")

	e.Clear()
	require.Equal(t, Event{}, e)

	e.Clear()
	assert.Equal(t, Event{}, e)
}

func TestAtoi(t *testing.T) {
	tests := map[string]int{
		"16":        16,
		" 12 Jahre": 12,
		"+0200":     200,
		"-0130":     -130,
		"FSK16":     0,
		"":          0,
		"-":         0,
		"2009-05":   2009,
	}
	for in, want := range tests {
		assert.Equal(t, want, Atoi(in), "Atoi(%q)", in)
	}
}
