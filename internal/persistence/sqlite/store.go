// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/xmltv2db/internal/epg"
	"github.com/ManuGH/xmltv2db/internal/log"
	"github.com/avast/retry-go/v4"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// EPGStore writes rendered event statements into the epg table.
type EPGStore struct {
	db     *sql.DB
	logger zerolog.Logger

	attempts uint
	delay    time.Duration
}

// NewEPGStore wraps an open database. Call Migrate before the first Upsert.
func NewEPGStore(db *sql.DB) *EPGStore {
	return &EPGStore{
		db:       db,
		logger:   log.WithComponent("store"),
		attempts: 5,
		delay:    50 * time.Millisecond,
	}
}

// OpenEPGStore opens path with DefaultConfig and applies pending migrations.
func OpenEPGStore(ctx context.Context, path string) (*EPGStore, error) {
	db, err := Open(path, DefaultConfig())
	if err != nil {
		return nil, err
	}
	s := NewEPGStore(db)
	s.logger = log.Derive(func(c *zerolog.Context) {
		*c = c.Str(log.FieldComponent, "store").Str(log.FieldDatabase, path)
	})
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Debug().Msg("epg store ready")
	return s, nil
}

// DB exposes the underlying handle.
func (s *EPGStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *EPGStore) Close() error { return s.db.Close() }

// Migrate applies the embedded schema migrations.
func (s *EPGStore) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlite: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Upsert executes insert and, when it fails on the primary key, the paired
// update. updated reports which of the two took effect. Busy and locked
// errors are retried.
func (s *EPGStore) Upsert(ctx context.Context, insert, update string) (updated bool, err error) {
	err = s.exec(ctx, insert)
	if err == nil {
		return false, nil
	}
	if !isConstraint(err) {
		return false, fmt.Errorf("sqlite: insert: %w", err)
	}
	if err := s.exec(ctx, update); err != nil {
		return true, fmt.Errorf("sqlite: update: %w", err)
	}
	return true, nil
}

func (s *EPGStore) exec(ctx context.Context, stmt string) error {
	return retry.Do(
		func() error {
			_, err := s.db.ExecContext(ctx, stmt)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug().Uint("attempt", n+1).Err(err).Msg("database busy, retrying")
		}),
	)
}

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.Code() & 0xff, true
}

func isConstraint(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3.SQLITE_CONSTRAINT
}

func isBusy(err error) bool {
	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED)
}

// ErrNotFound is returned by Load when no row matches.
var ErrNotFound = errors.New("sqlite: event not found")

// Load reads a stored row back into an Event.
func (s *EPGStore) Load(ctx context.Context, src, channelID string, eventID uint16) (*epg.Event, error) {
	const q = `SELECT starttime, duration, title, origtitle, shorttext, description, country, year,
	credits, category, review, rating, starrating, video, audio, season, episode, episodeoverall, pics
	FROM epg WHERE src=? AND channelid=? AND eventid=?`

	var (
		start, duration, year, season, episode, overall sql.NullInt64
		title, origTitle, shortText, description        sql.NullString
		country, credits, category, review, rating      sql.NullString
		starRating, video, audio, pics                  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, q, src, channelID, int(eventID)).Scan(
		&start, &duration, &title, &origTitle, &shortText, &description, &country, &year,
		&credits, &category, &review, &rating, &starRating, &video, &audio,
		&season, &episode, &overall, &pics,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load event: %w", err)
	}

	e := &epg.Event{}
	e.SetSource(src)
	e.SetChannelID(channelID)
	e.SetEventID(eventID)
	if start.Valid && start.Int64 != 0 {
		e.SetStartTime(time.Unix(start.Int64, 0))
	}
	e.SetDuration(int(duration.Int64))
	e.SetTitle(title.String)
	e.SetOrigTitle(origTitle.String)
	e.SetShortText(shortText.String)
	e.SetDescription(description.String)
	e.SetCountry(country.String)
	e.SetYear(int(year.Int64))
	e.SetCredits(credits.String)
	e.SetCategory(category.String)
	e.SetReview(review.String)
	e.SetRating(rating.String)
	e.SetStarRating(starRating.String)
	e.SetVideo(video.String)
	e.SetAudio(audio.String)
	e.SetSeason(int(season.Int64))
	e.SetEpisode(int(episode.Int64))
	e.SetEpisodeOverall(int(overall.Int64))
	e.SetPics(pics.String)
	return e, nil
}

// Count returns the number of stored events for src.
func (s *EPGStore) Count(ctx context.Context, src string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM epg WHERE src=?", src).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}
