// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write before a re-import.
const DefaultDebounce = 2 * time.Second

// Watch runs run once, then again whenever the file at path is created,
// written or renamed into place, after debounce of quiet. It returns when
// ctx is done or when run returns a *StoreError.
func Watch(ctx context.Context, path string, debounce time.Duration, run func(context.Context) error) error {
	logger := xglog.WithComponentFromContext(ctx, "watch")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Watch the parent directory so atomic replacements are seen.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}
	target := filepath.Base(path)

	if err := runOnce(ctx, run); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				logger.Debug().Str(xglog.FieldPath, event.Name).Str("op", event.Op.String()).Msg("document changed")
				timer.Reset(debounce)
			}
		case <-timer.C:
			if err := runOnce(ctx, run); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

// runOnce treats store failures as fatal and logs everything else.
func runOnce(ctx context.Context, run func(context.Context) error) error {
	err := run(ctx)
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	xglog.WithComponentFromContext(ctx, "watch").Error().Err(err).Msg("import pass failed")
	return nil
}
