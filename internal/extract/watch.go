// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/rol-export/internal/logger"
	"github.com/pdiddy/rol-export/pkg/types"
)

// watchDebounce collapses the burst of events a single download produces.
var watchDebounce = 500 * time.Millisecond

// Watch runs the extraction once, then again each time the input PDF is
// written or replaced, until ctx is cancelled. The parent directory is
// watched so an input created by rename is seen. Failed runs are reported
// to w and watching continues.
func Watch(ctx context.Context, cfg types.ExtractionConfig, opener Opener, w io.Writer, opts ...Option) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(cfg.InputPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	fmt.Fprintf(w, "watching: %s\n", cfg.InputPath)

	runOnce(ctx, cfg, opener, w, opts)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isInputEvent(cfg.InputPath, ev) {
				continue
			}
			logger.Debug("watch: %s", ev)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case <-fire:
			fire = nil
			runOnce(ctx, cfg, opener, w, opts)
		}
	}
}

func runOnce(ctx context.Context, cfg types.ExtractionConfig, opener Opener, w io.Writer, opts []Option) {
	_, err := Run(ctx, cfg, opener, w, opts...)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoRecords):
		fmt.Fprintf(w, "no records: %s\n", cfg.InputPath)
	case errors.Is(err, ErrInputNotFound):
		fmt.Fprintf(w, "waiting: %s does not exist yet\n", cfg.InputPath)
	default:
		fmt.Fprintf(w, "failed:  %v\n", err)
	}
}

// isInputEvent reports whether ev creates or writes the input file.
func isInputEvent(input string, ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(input) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
