// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package importer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/xmltv2db/internal/episodes"
	"github.com/ManuGH/xmltv2db/internal/epg"
	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/ManuGH/xmltv2db/internal/mapping"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

type upsert struct {
	Insert string
	Update string
}

type fakeStore struct {
	calls   []upsert
	failAt  int // 1-based call number that fails, 0 = never
	updated bool
}

func (s *fakeStore) Upsert(_ context.Context, insert, update string) (bool, error) {
	s.calls = append(s.calls, upsert{insert, update})
	if s.failAt != 0 && len(s.calls) == s.failAt {
		return false, errors.New("disk I/O error")
	}
	return s.updated, nil
}

type fakeEpisodes struct {
	match episodes.Match
	calls int
}

func (f *fakeEpisodes) Resolve(title, shortText string) (episodes.Match, bool) {
	f.calls++
	if title == "Akte X" && shortText == "Pilot" {
		return f.match, true
	}
	return episodes.Match{}, false
}

func newMapper(t *testing.T, maps ...mapping.Mapping) *mapping.Manager {
	t.Helper()
	m := mapping.NewManager(t.TempDir() + "/mappings.yaml")
	for _, mp := range maps {
		m.Set(mp)
	}
	return m
}

func newTestProcessor(t *testing.T, store Store, opts Options, maps ...mapping.Mapping) *Processor {
	t.Helper()
	if len(maps) == 0 {
		maps = []mapping.Mapping{{ChannelID: "ch1"}}
	}
	if opts.Source == "" {
		opts.Source = "tvsp"
	}
	opts.Location = time.UTC
	opts.Now = func() time.Time { return testNow }
	return NewProcessor(newMapper(t, maps...), store, opts)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	xglog.Reconfigure(xglog.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { xglog.Reconfigure(xglog.Config{Level: "info"}) })
	return &buf
}

func TestProcess_EndToEnd(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<tv>
  <channel id="ch1"><display-name>Channel One</display-name></channel>
  <programme channel="ch1" start="20240101120000 +0000">
    <title>Show</title>
  </programme>
</tv>`
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{SourceIndex: 1})

	res, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Programmes)
	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, 1, res.Inserted)
	require.Len(t, store.calls, 1)

	wantID := (1 << 11) | (12 << 6) | 0
	assert.Equal(t, uint16(wantID), p.event.EventID())
	assert.True(t, p.event.Mixing())

	want := "INSERT OR FAIL INTO epg (src,channelid,eventid,starttime,duration,title,origtitle,shorttext,description,country,year,credits,category,review,rating,starrating,video,audio,season,episode,episodeoverall,pics,srcidx) " +
		"VALUES ('tvsp','ch1',2816,1704110400,0,'Show',NULL,NULL,NULL,NULL,0,NULL,NULL,NULL,NULL,NULL,NULL,NULL,0,0,0,NULL,1);"
	assert.Equal(t, want, store.calls[0].Insert)
	assert.True(t, strings.HasSuffix(store.calls[0].Update, " where src='tvsp' and channelid='ch1' and eventid=2816"))
}

func TestProcess_FieldGrammar(t *testing.T) {
	doc := `<tv>
<programme channel="ch1" start="20240101200000 +0100" stop="20240101213000 +0100">
  <title lang="en">The Case</title>
  <title lang="de">Der Fall</title>
  <title lang="fr">L'Affaire</title>
  <sub-title>Pilot  episode</sub-title>
  <desc>A long
     description.</desc>
  <credits>
    <director>Jane Doe</director>
    <actor role="Inspector">John Roe</actor>
    <actor>Ann Other</actor>
  </credits>
  <date>1999</date>
  <category>Krimi</category>
  <category>Drama</category>
  <country>DE</country>
  <video><aspect>16:9</aspect><colour>yes</colour><quality>HDTV</quality></video>
  <audio><stereo>dolby digital</stereo></audio>
  <rating system="FSK"><value>16</value></rating>
  <rating system="MPAA"><value>12</value></rating>
  <star-rating><value>3/5</value></star-rating>
  <star-rating system="IMDb"><value>7/10</value></star-rating>
  <review type="text">Great.</review>
  <review type="url">http://example.com/review</review>
  <icon src="http://example.com/x.png"/>
  <length units="minutes">90</length>
  <episode-num system="onscreen">S1E1</episode-num>
  <subtitles type="teletext"/>
</programme>
</tv>`
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{Lang: "de_DE.UTF-8"},
		mapping.Mapping{ChannelID: "ch1", Flags: mapping.OptAppend})

	res, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 1, res.Stored)

	ev := &p.event
	assert.Equal(t, "Der Fall", ev.Title())
	assert.Equal(t, "L'Affaire", ev.OrigTitle())
	assert.Equal(t, "Pilot episode", ev.ShortText())
	assert.Equal(t, "A long description.", ev.Description())
	assert.Equal(t, 1999, ev.Year())
	assert.Equal(t, "DE", ev.Country())
	assert.Equal(t, "dolbydigital", ev.Audio())
	assert.Equal(t, 5400, ev.Duration())
	assert.Equal(t, 16, ev.ParentalRating())
	assert.False(t, ev.Mixing())

	if diff := cmp.Diff("actor|Ann Other@actor|John Roe (Inspector)@director|Jane Doe", ev.Credits().String()); diff != "" {
		t.Errorf("credits mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Drama@Krimi", ev.Category().String())
	assert.Equal(t, "aspect|16:9@colour|yes@quality|HDTV", ev.Video().String())
	assert.Equal(t, "FSK|16@MPAA|12", ev.Rating().String())
	assert.Equal(t, "*|3/5@IMDb|7/10", ev.StarRating().String())
	assert.Equal(t, "Great.", ev.Review().String())

	// 20:00 +0100 is 19:00 UTC on the 1st.
	assert.Equal(t, uint16((1<<11)|(19<<6)), ev.EventID())
	assert.Contains(t, store.calls[0].Insert, "'L''Affaire'")
}

func TestProcess_NumericCategoryOverridesEventID(t *testing.T) {
	doc := `<tv><programme channel="ch1" start="20240101120000"><title>Show</title><category>4711</category></programme></tv>`
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{})

	_, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, uint16(4711), p.event.EventID())
	assert.Empty(t, p.event.Category())
	assert.Contains(t, store.calls[0].Insert, "'ch1',4711,")
}

func TestProcess_TitleWithoutLocaleMatch(t *testing.T) {
	doc := `<tv><programme channel="ch1" start="20240101120000">
<title lang="en">First</title><title lang="fr">Second</title></programme></tv>`
	p := newTestProcessor(t, &fakeStore{}, Options{Lang: "de_DE"})

	_, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "First", p.event.Title())
	assert.Equal(t, "Second", p.event.OrigTitle())
}

func TestProcess_Skips(t *testing.T) {
	doc := `<tv>
<programme start="20240101120000"><title>No channel</title></programme>
<programme channel="unknown" start="20240101120000"><title>Unmapped</title></programme>
<programme channel="ch1" start="garbage"><title>Bad time</title></programme>
<programme channel="ch1"><title>No start</title></programme>
<programme channel="ch1" start="20240101080000"><title>Stale</title></programme>
<programme channel="ch2" start="20240110120000"><title>Too far</title></programme>
<programme channel="ch1" start="20240101120000"><desc>No title</desc></programme>
<programme channel="ch1" start="20240101093000"><title>Inside grace</title></programme>
</tv>`
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{},
		mapping.Mapping{ChannelID: "ch1"},
		mapping.Mapping{ChannelID: "ch2", Days: 3})

	res, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	want := Result{
		Programmes: 8, Stored: 1, Inserted: 1,
		Stale: 1, TooFar: 1, Unmapped: 1, NoChannel: 1, BadTime: 2, NoTitle: 1,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 7, res.Skipped())
	require.Len(t, store.calls, 1)
	assert.Contains(t, store.calls[0].Insert, "'Inside grace'")
}

func TestProcess_LogSuppression(t *testing.T) {
	logs := captureLogs(t)
	doc := `<tv>
<programme channel="ch9" start="20240101120000"><title>A</title></programme>
<programme channel="ch9" start="20240101130000"><title>B</title></programme>
<programme channel="ch1" start="bad"><title>C</title></programme>
<programme channel="ch9" start="20240101140000"><title>D</title></programme>
<programme channel="ch1" start="20240101120000"><title>E</title><foo/><foo/><bar/></programme>
</tv>`
	p := newTestProcessor(t, &fakeStore{}, Options{})

	_, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, "no mapping for channel id"))
	assert.Equal(t, 1, strings.Count(out, "no start time"))
	assert.Equal(t, 1, strings.Count(out, `"element":"foo"`))
	assert.Equal(t, 1, strings.Count(out, `"element":"bar"`))
	assert.Contains(t, out, `"closest":"ch1"`)
}

func TestProcess_StoreErrorAborts(t *testing.T) {
	doc := `<tv>
<programme channel="ch1" start="20240101120000"><title>One</title></programme>
<programme channel="ch1" start="20240101130000"><title>Two</title></programme>
<programme channel="ch1" start="20240101140000"><title>Three</title></programme>
</tv>`
	store := &fakeStore{failAt: 2}
	p := newTestProcessor(t, store, Options{})

	res, err := p.Process(context.Background(), strings.NewReader(doc))
	require.Error(t, err)

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ch1", se.ChannelID)
	assert.Equal(t, uint16((1<<11)|(13<<6)), se.EventID)
	assert.Equal(t, 1, res.Stored)
	assert.Len(t, store.calls, 2)
}

func TestProcess_UpdateCounted(t *testing.T) {
	doc := `<tv><programme channel="ch1" start="20240101120000"><title>Show</title></programme></tv>`
	p := newTestProcessor(t, &fakeStore{updated: true}, Options{})

	res, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, res.Inserted)
}

func TestProcess_StillRunning(t *testing.T) {
	doc := `<tv>
<programme channel="ch1" start="20240101120000"><title>One</title></programme>
<programme channel="ch1" start="20240101130000"><title>Two</title></programme>
</tv>`
	store := &fakeStore{}
	polls := 0
	p := newTestProcessor(t, store, Options{StillRunning: func() bool {
		polls++
		return polls < 2
	}})

	res, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, 1, res.Stored)
	assert.Len(t, store.calls, 1)
}

func TestProcess_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := `<tv><programme channel="ch1" start="20240101120000"><title>One</title></programme></tv>`
	store := &fakeStore{}

	res, err := newTestProcessor(t, store, Options{}).Process(ctx, strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Empty(t, store.calls)
}

func TestProcess_Episodes(t *testing.T) {
	doc := `<tv>
<programme channel="ch1" start="20240101120000"><title>Akte X</title><sub-title>Pilot</sub-title></programme>
<programme channel="ch1" start="20240101130000"><title>Akte X</title><sub-title>Unbekannt</sub-title></programme>
<programme channel="ch1" start="20240101140000"><title>Akte X</title></programme>
</tv>`
	eps := &fakeEpisodes{match: episodes.Match{Season: 1, Episode: 1, Overall: 1}}
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{Episodes: eps})

	_, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, store.calls, 3)
	assert.Equal(t, 2, eps.calls)
	assert.Contains(t, store.calls[0].Update, "season=1,episode=1, episodeoverall=1,")
	assert.Contains(t, store.calls[1].Update, "season=0,episode=0, episodeoverall=0,")
}

func TestProcess_Latin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<tv><programme channel=\"ch1\" start=\"20240101120000\"><title>M\xe4rchen</title></programme></tv>")
	p := newTestProcessor(t, &fakeStore{}, Options{})

	_, err := p.Process(context.Background(), bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Märchen", p.event.Title())
}

func TestProcess_MalformedDocuments(t *testing.T) {
	p := newTestProcessor(t, &fakeStore{}, Options{})

	_, err := p.Process(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoRoot)

	_, err = p.Process(context.Background(), strings.NewReader("  \n "))
	assert.ErrorIs(t, err, ErrNoRoot)

	store := &fakeStore{}
	p = newTestProcessor(t, store, Options{})
	res, err := p.Process(context.Background(), strings.NewReader(
		`<tv><programme channel="ch1" start="20240101120000"><title>One</title></programme><programme channel="ch1"><title>broken</programme></tv>`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoRoot))
	assert.Equal(t, 1, res.Stored)
}

func TestLocaleLanguage(t *testing.T) {
	cases := map[string]string{
		"de_DE.UTF-8": "de",
		"EN_us":       "en",
		"fr":          "fr",
		"C":           "",
		"C.UTF-8":     "",
		"POSIX":       "",
		"":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, localeLanguage(in), in)
	}
}

func TestRecordClearedBetweenProgrammes(t *testing.T) {
	doc := `<tv>
<programme channel="ch1" start="20240101120000"><title>One</title><desc>Only here</desc><category>News</category></programme>
<programme channel="ch1" start="20240101130000"><title>Two</title></programme>
</tv>`
	store := &fakeStore{}
	p := newTestProcessor(t, store, Options{})

	_, err := p.Process(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, store.calls, 2)

	fresh := &epg.Event{}
	fresh.SetTitle("Two")
	fresh.SetStartTime(time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC))
	fresh.CreateEventID(fresh.StartTime())
	want, ok := fresh.Statements("tvsp", 0, "ch1")
	require.True(t, ok)
	assert.Equal(t, want.Insert, store.calls[1].Insert)
}
