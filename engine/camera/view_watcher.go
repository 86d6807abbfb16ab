package camera

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/fsnotify/fsnotify"
)

// ViewWatcher reports changes to a view file. Notifications coalesce: any number of writes
// between two reads of Changes produce a single pending notification.
type ViewWatcher interface {
	// Path returns the watched view file.
	//
	// Returns:
	//   - string: the file path
	Path() string

	// Changes returns a channel that receives after the file is written, created or renamed
	// into place.
	//
	// Returns:
	//   - <-chan struct{}: the notification channel
	Changes() <-chan struct{}

	// Close stops watching.
	//
	// Returns:
	//   - error: an error from the underlying watcher
	Close() error
}

type viewWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Ensure viewWatcher implements ViewWatcher interface.
var _ ViewWatcher = &viewWatcher{}

// NewViewWatcher watches a view file. The directory is watched rather than the file so that
// editors replacing the file by rename are noticed.
//
// Parameters:
//   - path: the view file
//
// Returns:
//   - ViewWatcher: the watcher
//   - error: an error if the watch could not be established
func NewViewWatcher(path string) (ViewWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("camera: view watcher: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("camera: view watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("camera: view watcher: %w", err)
	}

	vw := &viewWatcher{
		path:    abs,
		watcher: w,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go vw.run()
	return vw, nil
}

func (vw *viewWatcher) run() {
	for {
		select {
		case <-vw.done:
			return
		case event, ok := <-vw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != vw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case vw.changes <- struct{}{}:
			default:
			}
		case err, ok := <-vw.watcher.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("view watcher error", "path", vw.path, "error", err)
		}
	}
}

func (vw *viewWatcher) Path() string { return vw.path }

func (vw *viewWatcher) Changes() <-chan struct{} { return vw.changes }

func (vw *viewWatcher) Close() error {
	var err error
	vw.once.Do(func() {
		close(vw.done)
		err = vw.watcher.Close()
	})
	return err
}
