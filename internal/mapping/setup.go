// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package mapping

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	setupPluginPrefix  = "xmltv2vdr."
	setupChannelPrefix = "channel."
)

// ParseSetupLine reads one line of a VDR setup.conf in the form
//
//	xmltv2vdr.channel.<id> = <days>;<flags>;<target>;<target>...
//
// The plugin prefix is optional. ok is false for lines that carry no mapping.
func ParseSetupLine(line string) (mp Mapping, ok bool, err error) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return Mapping{}, false, nil
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), setupPluginPrefix)
	id, isChannel := strings.CutPrefix(key, setupChannelPrefix)
	if !isChannel || id == "" {
		return Mapping{}, false, nil
	}

	parts := strings.Split(strings.TrimSpace(value), ";")
	if len(parts) < 2 {
		return Mapping{}, false, fmt.Errorf("channel %s: want days;flags, got %q", id, value)
	}
	days, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Mapping{}, false, fmt.Errorf("channel %s: days: %w", id, err)
	}
	flags, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return Mapping{}, false, fmt.Errorf("channel %s: flags: %w", id, err)
	}

	mp = Mapping{ChannelID: id, Days: days, Flags: Flags(flags)}
	for _, t := range parts[2:] {
		if t = strings.TrimSpace(t); t != "" {
			mp.Targets = append(mp.Targets, t)
		}
	}
	return mp, true, nil
}

// ImportSetup adds every mapping found in a setup.conf stream and returns
// how many were imported.
func (m *Manager) ImportSetup(r io.Reader) (int, error) {
	n := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		mp, ok, err := ParseSetupLine(sc.Text())
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		m.Set(mp)
		n++
	}
	return n, sc.Err()
}
