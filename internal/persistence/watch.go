package persistence

import (
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/cide/internal/codemodel"
	cideerrors "github.com/standardbeagle/cide/internal/errors"
	"github.com/standardbeagle/cide/internal/interfaces"
	"github.com/standardbeagle/cide/internal/parser"
)

// Watcher triggers CheckForUpdates automatically whenever fsnotify
// reports a filesystem event in the root directory. Only root itself is
// watched, not its subdirectories, and each event triggers a check at once
// with no debounce; the config's WatchMode/WatchDebounceMs fields are not
// read here.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	done      chan struct{}
}

// Watch starts watching root for filesystem events; each event triggers
// CheckForUpdates against base. Call Close to stop watching.
func Watch(base *codemodel.CodeBase, fs interfaces.FileSystem, registry *parser.Registry, root string, serializeOnChange bool, storagePath string, includeCachedIDs bool, onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, cideerrors.IO("new_watcher", err).WithPath(root)
	}
	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, cideerrors.IO("watch_root", err).WithPath(root)
	}

	w := &Watcher{fsWatcher: fw, done: make(chan struct{})}
	go func() {
		for {
			select {
			case _, ok := <-fw.Events:
				if !ok {
					return
				}
				if err := CheckForUpdates(base, fs, registry, root, serializeOnChange, storagePath, includeCachedIDs); err != nil && onError != nil {
					onError(err)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsWatcher.Close()
}
