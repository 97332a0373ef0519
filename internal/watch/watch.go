// Package watch re-runs a callback when znc source files change.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op describes what happened to a file.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event is a change to one path.
type Event struct {
	Path string
	Op   Op
}

// SourceExt is the extension of files that trigger a re-check.
const SourceExt = ".zn"

// Watcher delivers file events using OS-native notifications.
type Watcher struct {
	w    *fsnotify.Watcher
	evC  chan Event
	erC  chan error
	done chan struct{}
}

// New creates a Watcher.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{
		w:    w,
		evC:  make(chan Event, 128),
		erC:  make(chan error, 1),
		done: make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}
			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}
			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}
			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}
			if ev.Op&fsnotify.Chmod != 0 {
				op |= OpChmod
			}
			select {
			case fw.evC <- Event{Path: ev.Name, Op: op}:
			case <-fw.done:
				return
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		case <-fw.done:
			return
		}
	}
}

func (fw *Watcher) Events() <-chan Event     { return fw.evC }
func (fw *Watcher) Errors() <-chan error     { return fw.erC }
func (fw *Watcher) Add(name string) error    { return fw.w.Add(name) }
func (fw *Watcher) Remove(name string) error { return fw.w.Remove(name) }

// Close stops the watcher.
func (fw *Watcher) Close() error {
	close(fw.done)
	return fw.w.Close()
}

// Relevant reports whether ev should trigger a re-check: a source file was
// created, written or renamed into place.
func Relevant(ev Event) bool {
	if filepath.Ext(ev.Path) != SourceExt {
		return false
	}
	return ev.Op&(OpCreate|OpWrite|OpRename) != 0
}

// Run calls fn with the source files changed since the last call. Events
// are collected until debounce passes without a new one, so an editor saving
// a file in several writes triggers one call. Run returns when ctx is done,
// or with the first watcher error.
func Run(ctx context.Context, w *Watcher, debounce time.Duration, fn func(paths []string)) error {
	pending := make(map[string]bool)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-w.Errors():
			return err

		case ev := <-w.Events():
			if !Relevant(ev) {
				continue
			}
			pending[ev.Path] = true
			timer.Reset(debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)
			fn(paths)
		}
	}
}
