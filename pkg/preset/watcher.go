package preset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a source of preset documents and emits raw bytes.
// Implementations emit the current document, if any, as soon as Watch is
// called.
type Watcher interface {
	// Watch returns a channel of raw documents. The channel is closed when
	// ctx is canceled or the source fails for good.
	Watch(ctx context.Context) (<-chan []byte, error)
}

// ChannelWatcher wraps an existing byte channel as a Watcher.
type ChannelWatcher struct {
	ch   <-chan []byte
	sync bool
}

// NewChannelWatcher forwards values from ch through an internal goroutine.
func NewChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch}
}

// NewSyncChannelWatcher returns ch itself from Watch. Use with
// Follower.SyncMode for deterministic tests.
func NewSyncChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch, sync: true}
}

// Watch implements Watcher.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.sync {
		return w.ch, nil
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-w.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// FileWatcher follows a preset file. It watches the file's directory so
// editors that save by renaming a temporary file are still seen.
type FileWatcher struct {
	path string
}

// NewFileWatcher creates a FileWatcher for path.
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{path: filepath.Clean(path)}
}

// Path returns the watched file.
func (w *FileWatcher) Path() string {
	return w.path
}

// Watch implements Watcher. The file must exist when Watch is called.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if _, err := os.Stat(w.path); err != nil {
		return nil, fmt.Errorf("preset file %s: %w", w.path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch directory of %s: %w", w.path, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer fsw.Close()

		if !w.emit(ctx, out) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if !w.emit(ctx, out) {
					return
				}

			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

// emit sends the file's contents. It reports false once ctx is done. An
// unreadable or missing file sends nothing.
func (w *FileWatcher) emit(ctx context.Context, out chan<- []byte) bool {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return ctx.Err() == nil
	}
	select {
	case out <- data:
		return true
	case <-ctx.Done():
		return false
	}
}
