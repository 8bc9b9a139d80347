package definitions

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// debounceWindow coalesces the write bursts editors and agents produce
// when rewriting a file.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads a workflow definition file when it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan *Workflow
	logger  *zap.Logger
}

// NewWatcher creates a watcher for the definition file at path.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		path:    path,
		watcher: fw,
		updates: make(chan *Workflow, 1),
		logger:  logger,
	}, nil
}

// Updates delivers successfully reloaded workflows. Reloads that fail
// validation are logged and dropped; the previous workflow stays current.
func (w *Watcher) Updates() <-chan *Workflow {
	return w.updates
}

// Start begins watching. It watches the parent directory rather than the
// file itself so atomic rename-over-write (the usual save strategy) keeps
// working. Runs until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching definitions directory: %w", err)
	}

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("definitions watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	wf, err := Load(w.path, w.logger)
	if err != nil {
		w.logger.Warn("ignoring invalid definitions reload",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}

	w.logger.Info("definitions reloaded", zap.String("path", w.path))

	// Drop a stale pending update in favor of the newest one.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- wf
}
