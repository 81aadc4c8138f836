package app

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/logger"
)

// Watcher reports changes to one file. Events are delivered through Poll so
// the loop never blocks on the file system.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}
	log     *zap.Logger
}

// Watch starts watching path. The parent directory is watched because editors
// commonly replace files by renaming over them.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     logger.Named("watch"),
	}
	go w.run()
	w.log.Info("watching file", zap.String("path", abs))
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !Relevant(event.Op) {
				continue
			}
			// Coalesce: one pending notification is enough.
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Relevant reports whether op may have changed the file contents.
func Relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Poll reports whether the file changed since the last call.
func (w *Watcher) Poll() bool {
	select {
	case <-w.changed:
		return true
	default:
		return false
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
