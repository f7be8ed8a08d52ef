// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package episodes resolves season and episode numbers from flat episode
// lists. The base directory holds one "<series>.episodes" file per series
// with tab separated lines "season<TAB>episode<TAB>overall<TAB>synopsis";
// lines starting with '#' are comments.
package episodes

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ManuGH/xmltv2db/internal/epg"
	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/mozillazg/go-unidecode"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	unorm "golang.org/x/text/unicode/norm"
)

// ErrNoDirectory is returned by New when the base directory is unusable.
var ErrNoDirectory = errors.New("episodes: directory not readable")

const (
	listExt = ".episodes"
	// maxSynopsis is the longest synopsis fragment considered per line.
	maxSynopsis = 255
)

// Match is a resolved episode.
type Match struct {
	Season  int
	Episode int
	Overall int
}

// Resolver looks up episodes below a base directory. Lookups only read the
// filesystem; the failure cache is guarded so a Resolver may be shared.
type Resolver struct {
	fs     afero.Fs
	dir    string
	logger zerolog.Logger

	mu     sync.Mutex
	failed map[string]struct{}
}

// New returns a Resolver for dir on fs. It fails fast when dir is missing
// or not a directory.
func New(fs afero.Fs, dir string) (*Resolver, error) {
	if dir == "" {
		return nil, ErrNoDirectory
	}
	fi, err := fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDirectory, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoDirectory, dir)
	}
	return &Resolver{
		fs:     fs,
		dir:    dir,
		logger: xglog.WithComponent("episodes"),
		failed: make(map[string]struct{}),
	}, nil
}

// Resolve finds the episode of title whose synopsis matches shortText.
func (r *Resolver) Resolve(title, shortText string) (Match, bool) {
	if title == "" || shortText == "" {
		return Match{}, false
	}

	series, ok := r.findSeries(title)
	if !ok {
		return Match{}, false
	}

	target := MatchKey(shortText)
	if target == "" {
		return Match{}, false
	}

	m, found, err := r.scan(series, target)
	if err != nil {
		r.logger.Debug().Err(err).Str("series", series).Msg("episode list unreadable")
		return Match{}, false
	}
	if !found {
		r.logOnce(title, shortText)
	}
	return m, found
}

// findSeries returns the first list name (without extension) that is a
// case-insensitive prefix of title.
func (r *Resolver) findSeries(title string) (string, bool) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		r.logger.Debug().Err(err).Str(xglog.FieldPath, r.dir).Msg("read episode directory")
		return "", false
	}
	for _, fi := range entries {
		name := fi.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[:i]
		}
		if epg.HasFoldPrefix(title, name) {
			return name, true
		}
	}
	return "", false
}

func (r *Resolver) scan(series, target string) (Match, bool, error) {
	f, err := r.fs.Open(filepath.Join(r.dir, series+listExt))
	if err != nil {
		return Match{}, false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		m, synopsis, ok := parseLine(line)
		if !ok {
			continue
		}
		// The list entry must be a prefix of the programme's short text.
		if epg.HasFoldPrefix(target, MatchKey(synopsis)) {
			return m, true, nil
		}
	}
	return Match{}, false, sc.Err()
}

// parseLine splits "season\tepisode\toverall\tsynopsis".
func parseLine(line string) (Match, string, bool) {
	fields := strings.SplitN(strings.TrimRight(line, "\r"), "\t", 4)
	if len(fields) != 4 || fields[3] == "" {
		return Match{}, "", false
	}
	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil || n < 0 || n > 999 {
			return Match{}, "", false
		}
		nums[i] = n
	}
	synopsis := fields[3]
	if len(synopsis) > maxSynopsis {
		synopsis = synopsis[:maxSynopsis]
	}
	return Match{Season: nums[0], Episode: nums[1], Overall: nums[2]}, synopsis, true
}

func (r *Resolver) logOnce(title, shortText string) {
	key := title + "\x00" + shortText
	r.mu.Lock()
	_, seen := r.failed[key]
	if !seen {
		r.failed[key] = struct{}{}
	}
	r.mu.Unlock()
	if seen {
		return
	}
	r.logger.Info().
		Str(xglog.FieldTitle, title).
		Str(xglog.FieldShortText, shortText).
		Msg("no episode list entry found")
}

// Transliterate maps s to printable ASCII on a best-effort basis.
func Transliterate(s string) string {
	return unidecode.Unidecode(unorm.NFC.String(s))
}

// MatchKey is the normalized form both sides of a comparison are reduced to.
func MatchKey(s string) string {
	return epg.NormalizeMatchKey(Transliterate(s))
}
