// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"strconv"
	"strings"
)

// Columns lists the epg table columns in statement order.
var Columns = []string{
	"src", "channelid", "eventid", "starttime", "duration",
	"title", "origtitle", "shorttext", "description", "country", "year",
	"credits", "category", "review", "rating", "starrating", "video", "audio",
	"season", "episode", "episodeoverall", "pics", "srcidx",
}

// Statements holds the paired statements for one event. Insert fails on an
// existing (src, channelid, eventid) key; Update is the fallback for that case.
type Statements struct {
	Insert string
	Update string
}

// SQLLiteral quotes s as an SQL string literal. Single quotes are doubled
// and the empty string becomes the bare keyword NULL.
func SQLLiteral(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Statements renders the insert and update statements for the event. It
// returns false, and no statements, while no event id is assigned.
func (e *Event) Statements(source string, sourceIndex int, channelID string) (Statements, bool) {
	if e.eventID == 0 {
		return Statements{}, false
	}

	var (
		src         = SQLLiteral(source)
		channel     = SQLLiteral(channelID)
		id          = strconv.FormatUint(uint64(e.eventID), 10)
		start       = strconv.FormatInt(e.startUnix(), 10)
		duration    = strconv.Itoa(e.duration)
		title       = SQLLiteral(e.title)
		origTitle   = SQLLiteral(e.origTitle)
		shortText   = SQLLiteral(e.shortText)
		description = SQLLiteral(e.description)
		country     = SQLLiteral(e.country)
		year        = strconv.Itoa(e.year)
		credits     = SQLLiteral(e.credits.String())
		category    = SQLLiteral(e.category.String())
		review      = SQLLiteral(e.review.String())
		rating      = SQLLiteral(e.rating.String())
		starRating  = SQLLiteral(e.starRating.String())
		video       = SQLLiteral(e.video.String())
		audio       = SQLLiteral(e.audio)
		season      = strconv.Itoa(e.season)
		episode     = strconv.Itoa(e.episode)
		overall     = strconv.Itoa(e.episodeOverall)
		pics        = SQLLiteral(e.pics.String())
		srcIdx      = strconv.Itoa(sourceIndex)
	)

	var ins strings.Builder
	ins.WriteString("INSERT OR FAIL INTO epg (")
	ins.WriteString(strings.Join(Columns, ","))
	ins.WriteString(") VALUES (")
	ins.WriteString(strings.Join([]string{
		src, channel, id, start, duration,
		title, origTitle, shortText, description, country, year,
		credits, category, review, rating, starRating, video, audio,
		season, episode, overall, pics, srcIdx,
	}, ","))
	ins.WriteString(");")

	var upd strings.Builder
	upd.WriteString("UPDATE epg SET ")
	upd.WriteString("duration=" + duration + ",starttime=" + start + ",title=" + title + ",origtitle=" + origTitle + ",")
	upd.WriteString("shorttext=" + shortText + ",description=" + description + ",country=" + country + ",year=" + year + ",credits=" + credits + ",category=" + category + ",")
	upd.WriteString("review=" + review + ",rating=" + rating + ",starrating=" + starRating + ",video=" + video + ",audio=" + audio + ",season=" + season + ",episode=" + episode + ", ")
	upd.WriteString("episodeoverall=" + overall + ",pics=" + pics + ",srcidx=" + srcIdx + " ")
	upd.WriteString(" where src=" + src + " and channelid=" + channel + " and eventid=" + id)

	return Statements{Insert: ins.String(), Update: upd.String()}, true
}

func (e *Event) startUnix() int64 {
	if e.startTime.IsZero() {
		return 0
	}
	return e.startTime.Unix()
}
