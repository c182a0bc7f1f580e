package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/aconf/log"
)

// DefaultSettle is how long a burst of file events must be quiet before
// the configuration is evaluated again.
const DefaultSettle = 200 * time.Millisecond

// Watch evaluates the configuration like [Eval], then again each time one
// of its files changes, until interrupted.
type Watch struct {
	Eval `embed:""`

	Settle time.Duration `default:"200ms" help:"Quiet period after a change before re-evaluating."`
}

// Run executes the watch command.
func (w *Watch) Run(ctx context.Context) error {
	targets := make(map[string]struct{})

	for _, path := range uniquePaths(w.Files) {
		if path == stdinSource {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return ErrWatch.Wrap(err).With(slog.String("path", path))
		}

		targets[abs] = struct{}{}
	}

	if len(targets) == 0 {
		return ErrWatch.Wrap(ErrNoSource).With(slog.String("reason", "stdin cannot be watched"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	// Directories are watched instead of files so that editors replacing a
	// file by rename are still seen.
	dirs := make(map[string]struct{})
	for path := range targets {
		dirs[filepath.Dir(path)] = struct{}{}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("path", dir))
		}
	}

	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	w.refresh(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if _, ok := targets[filepath.Clean(event.Name)]; !ok {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) {
				continue
			}

			log.DebugContext(ctx, "file changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			w.refresh(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

// refresh runs one evaluation. Failures are logged so that watching
// continues until the file is fixed.
func (w *Watch) refresh(ctx context.Context) {
	if err := w.Eval.Run(ctx); err != nil {
		log.ErrorContext(ctx, "evaluation failed", slog.Any("error", err))

		return
	}

	log.DebugContext(ctx, "evaluated", slog.Int("files", len(w.Files)))
}
