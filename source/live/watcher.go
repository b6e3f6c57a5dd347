// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Rupas1k/clarity/support/logging"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const (
	changeViaEvent = "event"
	changeViaPoll  = "poll"
)

// fileState is a snapshot of the watched file, used by the fallback poll.
type fileState struct {
	info os.FileInfo
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{info: info}
}

func (fs fileState) equal(other fileState) bool {
	switch {
	case fs.info == nil || other.info == nil:
		return fs.info == nil && other.info == nil
	case fs.info.Size() != other.info.Size():
		return false
	case !fs.info.ModTime().Equal(other.info.ModTime()):
		return false
	default:
		return os.SameFile(fs.info, other.info)
	}
}

// watcher observes a single file and calls onChange when it may have changed.
//
// The file's parent directory is watched, so the file may be created, deleted,
// and replaced. If no notification arrives within a poll interval, the file is
// checked with a stat.
type watcher struct {
	path     string
	interval time.Duration
	onChange func(via string)
	logger   logging.L

	fw *fsnotify.Watcher

	stopOnce sync.Once
	stopC    chan struct{}
	doneC    chan struct{}
}

func startWatcher(path string, interval time.Duration, onChange func(string), logger logging.L) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating watcher")
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(err, "watching directory %q", dir)
	}

	return runWatcher(path, interval, fw, onChange, logger), nil
}

// runWatcher starts a watcher for path that receives notifications from fw.
// The watcher takes ownership of fw.
func runWatcher(path string, interval time.Duration, fw *fsnotify.Watcher, onChange func(string), logger logging.L) *watcher {
	w := watcher{
		path:     path,
		interval: interval,
		onChange: onChange,
		logger:   logger,
		fw:       fw,
		stopC:    make(chan struct{}),
		doneC:    make(chan struct{}),
	}
	go w.run()
	return &w
}

// stop terminates the watcher and waits for it to exit. It is safe to call
// more than once, and after the watcher terminated on its own.
func (w *watcher) stop() {
	w.stopOnce.Do(func() { close(w.stopC) })
	<-w.doneC
}

func (w *watcher) run() {
	defer close(w.doneC)
	defer func() {
		if err := w.fw.Close(); err != nil {
			w.logger.Warnf("Failed to close watcher for %q: %s", w.path, err)
		}
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := statFile(w.path)
	sawEvent := false

	for {
		select {
		case <-w.stopC:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				w.fail(errors.New("event channel closed"))
				return
			}
			if filepath.Clean(ev.Name) != w.path || !isChangeOp(ev.Op) {
				continue
			}

			sawEvent = true
			w.onChange(changeViaEvent)
			last = statFile(w.path)

		case err, ok := <-w.fw.Errors:
			if !ok {
				err = errors.New("error channel closed")
			}
			w.fail(err)
			return

		case <-ticker.C:
			if sawEvent {
				sawEvent = false
				continue
			}

			if cur := statFile(w.path); !cur.equal(last) {
				last = cur
				w.onChange(changeViaPoll)
			}
		}
	}
}

func (w *watcher) fail(err error) {
	watchErrors.Inc()
	w.logger.Errorf("Watcher for %q terminated: %s", w.path, err)
}

func isChangeOp(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}

// handleChange is the watcher's change callback.
func (s *Source) handleChange(via string) {
	watchEvents.WithLabelValues(via).Inc()

	if err := s.resync(); err != nil {
		resyncErrors.Inc()
		s.logger.Warnf("Failed to resynchronize %q: %s", s.path, err)
	}
}
