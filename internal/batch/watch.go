package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mgpai22/srtbatch/internal/subtitle"
)

const DefaultSettleDelay = 500 * time.Millisecond

// Watch translates the files already in the input directory, then every file
// created or rewritten there until ctx is done. Files are still handled one
// at a time. The returned report covers the whole session.
func (r *Runner) Watch(ctx context.Context) (*Report, error) {
	report := &Report{RunID: r.runID}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return report, fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(r.opts.InputDir); err != nil {
		return report, fmt.Errorf("failed to watch input directory: %w", err)
	}

	unlock, err := r.lockOutput()
	if err != nil {
		return report, err
	}
	defer unlock()

	existing, err := r.discover()
	if err != nil {
		return report, err
	}
	r.logger.Infow("Watching for subtitle files",
		"input_dir", r.opts.InputDir,
		"existing", len(existing),
	)
	if err := r.translateAll(ctx, existing, report); err != nil {
		return report, err
	}

	settle := r.opts.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	// last event time per path, a file is picked up once it stops changing
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("Watcher stopped", "translated", len(report.Files))
			return report, ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return report, errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !subtitle.HasExtension(event.Name, r.opts.Extensions) ||
				r.isOwnOutput(event.Name) {
				r.logger.Debugw("Ignoring file", "file", event.Name)
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return report, errors.New("watcher errors channel closed")
			}
			r.logger.Warnw("Watcher error", "error", err)

		case now := <-ticker.C:
			paths := settled(pending, now, settle)
			for _, path := range paths {
				delete(pending, path)
			}
			if len(paths) == 0 {
				continue
			}
			r.logger.Infow("New subtitle files detected", "files", len(paths))
			if err := r.translateAll(ctx, paths, report); err != nil {
				return report, err
			}
		}
	}
}

// paths with no event for at least delay, sorted
func settled(pending map[string]time.Time, now time.Time, delay time.Duration) []string {
	var paths []string
	for path, last := range pending {
		if now.Sub(last) >= delay {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
