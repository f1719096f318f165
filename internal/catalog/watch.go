package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Live is a catalog that is reloaded whenever its files change on disk.
// It can be handed to the engine in place of a *Catalog.
type Live struct {
	path    string
	dir     bool
	opts    []Option
	current atomic.Pointer[Catalog]
	reloads atomic.Int64
}

// Watch loads the catalog at path and keeps it current until ctx ends. A
// reload that fails to parse or validate is logged and the previous catalog
// stays in use. path must name a file or a directory.
//
// A file is watched through its parent directory so that saves which replace
// the file (write to a temporary file, then rename) keep reloading. A
// directory is watched together with every subdirectory Load would read,
// including ones created later.
func Watch(ctx context.Context, path string, opts ...Option) (*Live, error) {
	if path == "" {
		return nil, errors.New("watch needs a catalog path")
	}
	cat, err := Load(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	l := &Live{path: filepath.Clean(path), dir: st.IsDir(), opts: opts}
	if l.dir {
		err = addTree(ctx, watcher, l.path)
	} else {
		err = watcher.Add(filepath.Dir(l.path))
	}
	if err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch catalog: %w", err)
	}

	l.current.Store(cat)
	logrus.Debugf("Watching catalog %s", l.path)

	go l.loop(ctx, watcher)
	return l, nil
}

// PickRandom draws from the catalog as of the last successful load.
func (l *Live) PickRandom() Wine { return l.current.Load().PickRandom() }

// Get looks id up in the catalog as of the last successful load.
func (l *Live) Get(id string) (Wine, error) { return l.current.Load().Get(id) }

// Contains reports whether the last successful load has a wine with id.
func (l *Live) Contains(id string) bool { return l.current.Load().Contains(id) }

// Catalog returns the catalog as of the last successful load.
func (l *Live) Catalog() *Catalog { return l.current.Load() }

// Reloads counts successful reloads since Watch.
func (l *Live) Reloads() int64 { return l.reloads.Load() }

func (l *Live) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer cleanupWatcher(watcher)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !l.relevant(ctx, watcher, event) {
				continue
			}
			l.reload(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Warn("catalog watcher error")
		}
	}
}

// relevant reports whether event can change what Load returns. New
// subdirectories of a watched tree are added to the watcher on the way.
func (l *Live) relevant(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if !l.dir {
		return name == l.path
	}
	if event.Has(fsnotify.Create) {
		if st, err := os.Stat(name); err == nil && st.IsDir() {
			if isHidden(name) {
				return false
			}
			if err := addTree(ctx, watcher, name); err != nil {
				logrus.WithError(err).WithField("dir", name).Warn("failed to watch catalog directory")
			}
			return true
		}
	}
	// A removed or renamed entry may have been a directory of catalog files.
	return isYAMLFile(name) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (l *Live) reload(ctx context.Context, event fsnotify.Event) {
	cat, err := Load(ctx, l.path, l.opts...)
	if err != nil {
		logrus.WithError(err).WithField("event", event.String()).Warn("Keeping previous catalog")
		return
	}
	l.current.Store(cat)
	l.reloads.Add(1)
	logrus.WithFields(logrus.Fields{"wines": cat.Len(), "event": event.Op.String()}).Debug("Reloaded catalog")
}

// addTree watches root and every non-hidden directory beneath it.
func addTree(ctx context.Context, watcher *fsnotify.Watcher, root string) error {
	var (
		mu   sync.Mutex
		dirs = []string{root}
	)
	conf := fastwalk.DefaultConfig
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if isHidden(path) {
			return fs.SkipDir
		}
		mu.Lock()
		dirs = append(dirs, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil {
		logrus.Debugf("failed to close catalog watcher: %v", err)
	}
}
