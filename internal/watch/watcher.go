// Package watch triggers ingestion when the source blob changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"
	"github.com/sirupsen/logrus"
)

// Editors and uploaders write a file in several steps. Events are
// coalesced for debounceWait, but fire at least every debounceMaxWait.
const (
	debounceWait    = 500 * time.Millisecond
	debounceMaxWait = 5 * time.Second
)

// Watcher calls onChange when the blob inside dir is created or written.
type Watcher struct {
	dir      string
	blob     string
	onChange func()
	log      *logrus.Logger
	wait     time.Duration
	maxWait  time.Duration
	ready    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce windows.
func WithDebounce(wait, maxWait time.Duration) Option {
	return func(w *Watcher) {
		w.wait = wait
		w.maxWait = maxWait
	}
}

// New creates a Watcher for dir/blob. The blob name matches case-insensitively.
func New(dir, blob string, onChange func(), log *logrus.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		blob:     blob,
		onChange: onChange,
		log:      log,
		wait:     debounceWait,
		maxWait:  debounceMaxWait,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Ready is closed once the directory watch is installed.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. The directory is created if missing.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating source container: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	trigger, cancel := debounce.NewWithMaxWait(w.wait, w.maxWait, w.onChange)
	defer cancel()

	w.log.WithFields(logrus.Fields{"dir": w.dir, "blob": w.blob}).Info("watching source container")
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if w.matches(event) {
				w.log.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("source blob changed")
				trigger()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.WithError(err).Warn("file watcher error")
				continue
			}

			// Events were lost; the blob may have changed.
			w.log.Warn("file watcher overflow, rescanning")
			trigger()
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	return strings.EqualFold(filepath.Base(event.Name), w.blob)
}
