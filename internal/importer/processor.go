// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package importer walks XMLTV documents and writes one epg row per
// usable programme element.
package importer

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ManuGH/xmltv2db/internal/episodes"
	"github.com/ManuGH/xmltv2db/internal/epg"
	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/ManuGH/xmltv2db/internal/mapping"
	"github.com/ManuGH/xmltv2db/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// DefaultGrace is how far in the past a programme may start and still be stored.
const DefaultGrace = 2 * time.Hour

// Mapper resolves XMLTV channel ids.
type Mapper interface {
	Lookup(channelID string) (mapping.Mapping, bool)
	ChannelIDs() []string
}

// Store applies a statement pair; updated reports that the insert hit an
// existing key and the update was applied instead.
type Store interface {
	Upsert(ctx context.Context, insert, update string) (updated bool, err error)
}

// EpisodeResolver looks up season and episode numbers.
type EpisodeResolver interface {
	Resolve(title, shortText string) (episodes.Match, bool)
}

// Options configures a Processor.
type Options struct {
	Source      string
	SourceIndex int
	// Lang is the locale (e.g. "de_DE.UTF-8") whose language picks the primary title.
	Lang string
	// Location is the zone whose calendar derives event ids. Nil means time.Local.
	Location *time.Location
	// Grace is the stale cutoff. Zero means DefaultGrace.
	Grace time.Duration

	// Episodes is optional.
	Episodes EpisodeResolver
	// StillRunning is polled between programme elements; false stops the pass cleanly.
	StillRunning func() bool
	Now          func() time.Time
}

// Result summarizes one pass.
type Result struct {
	Programmes int
	Stored     int
	Inserted   int
	Updated    int

	Stale     int
	TooFar    int
	Unmapped  int
	NoChannel int
	BadTime   int
	NoTitle   int
	NoEventID int

	Stopped bool
}

// Skipped is the number of programme elements that produced no statement.
func (r Result) Skipped() int { return r.Programmes - r.Stored }

type cause int

const (
	causeNone cause = iota
	causeNoChannel
	causeNoMapping
	causeBadTime
)

// Processor turns XMLTV documents into epg rows. One Processor handles one
// document at a time.
type Processor struct {
	mapper Mapper
	store  Store
	opts   Options

	event epg.Event
}

// NewProcessor creates a processor writing through store.
func NewProcessor(mapper Mapper, store Store, opts Options) *Processor {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Grace == 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Processor{mapper: mapper, store: store, opts: opts}
}

// pass holds the state of a single Process call.
type pass struct {
	*Processor
	logger    zerolog.Logger
	begin     time.Time
	now       time.Time
	lastCause cause
	unknown   map[string]struct{}
	extract   extractor
	res       Result
}

// Process reads one XMLTV document from r. A store failure ends the pass
// with a *StoreError; cancellation ends it with Result.Stopped set and a nil
// error. Malformed programme elements are skipped.
func (p *Processor) Process(ctx context.Context, r io.Reader) (Result, error) {
	now := p.opts.Now()
	ps := &pass{
		Processor: p,
		logger:    xglog.WithComponentFromContext(ctx, "importer"),
		begin:     now.Add(-p.opts.Grace),
		now:       now,
		unknown:   make(map[string]struct{}),
	}
	ps.extract = extractor{
		lang:    localeLanguage(p.opts.Lang),
		ev:      &p.event,
		unknown: ps.reportUnknown,
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	if err := ps.seekRoot(dec); err != nil {
		return ps.res, err
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ps.res, fmt.Errorf("importer: read document: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !strings.EqualFold(se.Name.Local, "programme") {
			if err := dec.Skip(); err != nil {
				return ps.res, fmt.Errorf("importer: skip %s: %w", se.Name.Local, err)
			}
			continue
		}

		if ps.stopRequested(ctx) {
			ps.res.Stopped = true
			ps.logger.Info().Int("stored", ps.res.Stored).Msg("stop requested, ending import")
			return ps.res, nil
		}

		var prog node
		if err := dec.DecodeElement(&prog, &se); err != nil {
			return ps.res, fmt.Errorf("importer: decode programme: %w", err)
		}
		ps.res.Programmes++
		if err := ps.programme(ctx, &prog); err != nil {
			return ps.res, err
		}
	}

	ps.logger.Info().
		Int("programmes", ps.res.Programmes).
		Int("stored", ps.res.Stored).
		Int("skipped", ps.res.Skipped()).
		Msg("document processed")
	return ps.res, nil
}

// seekRoot advances dec past the root start element.
func (ps *pass) seekRoot(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			ps.logger.Error().Msg("no root element in xmltv document")
			return ErrNoRoot
		}
		if err != nil {
			ps.logger.Error().Err(err).Msg("failed to parse xmltv document")
			return fmt.Errorf("importer: parse document: %w", err)
		}
		if _, ok := tok.(xml.StartElement); ok {
			return nil
		}
	}
}

func (ps *pass) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return ps.opts.StillRunning != nil && !ps.opts.StillRunning()
}

func (ps *pass) programme(ctx context.Context, prog *node) error {
	channelID, ok := prog.attr("channel")
	if !ok {
		ps.skip(causeNoChannel, func(e *zerolog.Event) { e.Msg("missing channel id in xmltv document") })
		ps.res.NoChannel++
		metrics.IncProgramme(metrics.OutcomeNoChannel)
		return nil
	}

	m, ok := ps.mapper.Lookup(channelID)
	if !ok {
		ps.skip(causeNoMapping, func(e *zerolog.Event) {
			e = e.Str(xglog.FieldChannelID, channelID)
			if hint, ok := epg.FindBest(channelID, ps.mapper.ChannelIDs(), 2); ok {
				e = e.Str("closest", hint)
			}
			e.Msg("no mapping for channel id")
		})
		ps.res.Unmapped++
		metrics.IncProgramme(metrics.OutcomeUnmapped)
		return nil
	}

	start, stop, ok := programmeTimes(prog)
	if !ok {
		ps.skip(causeBadTime, func(e *zerolog.Event) {
			e.Str(xglog.FieldChannelID, channelID).Msg("no start time, check xmltv document")
		})
		ps.res.BadTime++
		metrics.IncProgramme(metrics.OutcomeBadTime)
		return nil
	}

	if start.Before(ps.begin) {
		ps.res.Stale++
		metrics.IncProgramme(metrics.OutcomeStale)
		return nil
	}
	if m.Days > 0 && start.After(ps.now.Add(time.Duration(m.Days)*24*time.Hour)) {
		ps.res.TooFar++
		metrics.IncProgramme(metrics.OutcomeTooFar)
		return nil
	}

	ev := &ps.event
	ev.Clear()
	ev.SetSource(ps.opts.Source)
	ev.SetChannelID(channelID)
	ev.SetStartTime(start)
	if !stop.IsZero() {
		ev.SetDuration(int(stop.Sub(start) / time.Second))
	}
	ev.SetMixing(!m.Append())

	ps.extract.extract(prog)
	ps.resolveEpisode(ev)

	if !ev.HasTitle() {
		ps.logger.Debug().Str(xglog.FieldChannelID, channelID).Time(xglog.FieldStart, start).Msg("programme without title")
		ps.res.NoTitle++
		metrics.IncProgramme(metrics.OutcomeNoTitle)
		return nil
	}

	ev.CreateEventID(start.In(ps.opts.Location))
	st, ok := ev.Statements(ps.opts.Source, ps.opts.SourceIndex, channelID)
	if !ok {
		ps.res.NoEventID++
		metrics.IncProgramme(metrics.OutcomeNoEventID)
		return nil
	}

	updated, err := ps.store.Upsert(ctx, st.Insert, st.Update)
	if err != nil {
		metrics.IncStoreError()
		ps.logger.Error().Err(err).
			Str(xglog.FieldChannelID, channelID).
			Uint16(xglog.FieldEventID, ev.EventID()).
			Msg("store rejected statement, aborting document")
		return &StoreError{ChannelID: channelID, EventID: ev.EventID(), Err: err}
	}

	metrics.IncStatement(updated)
	metrics.IncProgramme(metrics.OutcomeStored)
	ps.res.Stored++
	if updated {
		ps.res.Updated++
	} else {
		ps.res.Inserted++
	}
	return nil
}

// programmeTimes parses start and stop. stop is zero when absent or invalid.
func programmeTimes(prog *node) (start, stop time.Time, ok bool) {
	raw, ok := prog.attr("start")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, err := epg.ParseXMLTVTime(raw)
	if err != nil || start.Unix() == 0 {
		return time.Time{}, time.Time{}, false
	}
	if raw, ok := prog.attr("stop"); ok {
		if t, err := epg.ParseXMLTVTime(raw); err == nil {
			stop = t
		}
	}
	return start, stop, true
}

// resolveEpisode fills season and episode when the document left them unset.
func (ps *pass) resolveEpisode(ev *epg.Event) {
	if ps.opts.Episodes == nil || ev.Season() != 0 || ev.Episode() != 0 {
		return
	}
	if !ev.HasTitle() || ev.ShortText() == "" {
		return
	}
	m, found := ps.opts.Episodes.Resolve(ev.Title(), ev.ShortText())
	metrics.IncEpisodeLookup(found)
	if !found {
		return
	}
	ev.SetSeason(m.Season)
	ev.SetEpisode(m.Episode)
	ev.SetEpisodeOverall(m.Overall)
}

// skip logs only when the cause differs from the previous skip, so a run of
// identical failures produces a single line.
func (ps *pass) skip(c cause, log func(*zerolog.Event)) {
	if ps.lastCause == c {
		return
	}
	ps.lastCause = c
	log(ps.logger.Warn())
}

func (ps *pass) reportUnknown(name string) {
	key := strings.ToLower(name)
	if _, seen := ps.unknown[key]; seen {
		return
	}
	ps.unknown[key] = struct{}{}
	ps.logger.Warn().Str(xglog.FieldElement, name).Msg("unknown programme element")
}
