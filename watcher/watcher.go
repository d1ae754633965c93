package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce collapses the burst of events an editor emits on save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a fixed set of source files. fsnotify watches
// their parent directories so files that are replaced or created later are
// still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	log      logrus.FieldLogger
}

// New watches the given files. Files need not exist yet, their directories
// must.
func New(files []string, debounce time.Duration, log logrus.FieldLogger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		log:      log,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "resolve %s", f)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "failed to watch folder %s", dir)
		}
		dirs[dir] = true
		log.Infof("Watching folder: %s", dir)
	}

	return w, nil
}

// Run blocks until ctx is done, calling onChange with the last changed file
// once events for watched files have been quiet for the debounce interval.
// The path passed to onChange is absolute. onChange runs on the calling
// goroutine, so invocations never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var (
		pending string
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			path, ok := w.relevant(event)
			if !ok {
				continue
			}
			w.log.WithField("op", event.Op.String()).Debugf("change: %s", event.Name)
			pending = path
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(pending)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("Watcher error: %v", err)
		}
	}
}

// relevant returns the absolute path of a content-changing event on a
// watched file.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	return abs, w.files[abs]
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
