// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrNoTime is returned for timestamps that cannot be converted.
var ErrNoTime = errors.New("epg: unparsable xmltv time")

// LoadLocation resolves named zones for ParseXMLTVTime. Tests replace it.
var LoadLocation = time.LoadLocation

// ParseXMLTVTime converts "YYYYMMDDHHMMSS[ ±HHMM|<zone>]" into an instant.
//
// A five character "+HHMM"/"-HHMM" suffix is an offset from UTC. A longer
// suffix names a zone from the tz database and the digits are read as wall
// clock time in that zone. Anything else, including unknown zones, means UTC.
//
// The digits may be truncated after any complete field; at least the year
// is required. Missing month and day default to January and 1.
func ParseXMLTVTime(s string) (time.Time, error) {
	digits, zone, hasZone := strings.Cut(s, " ")

	loc := time.UTC
	offset := 0
	if hasZone {
		switch {
		case strings.HasPrefix(zone, "+") || strings.HasPrefix(zone, "-"):
			if len(zone) == 5 {
				val := Atoi(zone)
				h := val / 100
				m := val - h*100
				offset = h*3600 + m*60
			}
		case len(zone) > 2:
			if l, err := LoadLocation(zone); err == nil {
				loc = l
			}
		}
	}

	return parseDigits(digits, loc, offset)
}

// fieldWidths are the digit widths of year, month, day, hour, minute, second.
var fieldWidths = [...]int{4, 2, 2, 2, 2, 2}

func parseDigits(digits string, loc *time.Location, offset int) (time.Time, error) {
	if len(digits) < 4 {
		return time.Time{}, ErrNoTime
	}

	// The year takes four digits but counts as one field, so a string of
	// n characters carries (n-2)/2 complete fields.
	fields := min((len(digits)-2)/2, len(fieldWidths))

	vals := [len(fieldWidths)]int{0, 1, 1, 0, 0, 0}
	pos := 0
	for i := 0; i < fields; i++ {
		w := fieldWidths[i]
		if pos+w > len(digits) {
			return time.Time{}, ErrNoTime
		}
		field := digits[pos : pos+w]
		if !allDigits(field) {
			return time.Time{}, ErrNoTime
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return time.Time{}, ErrNoTime
		}
		vals[i] = n
		pos += w
	}

	year, month, day, hour, minute, second := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 61 {
		return time.Time{}, ErrNoTime
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	return t.Add(-time.Duration(offset) * time.Second), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
