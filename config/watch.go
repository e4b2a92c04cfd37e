package config

import (
	"context"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch follows edits of the config file until ctx is done. After each
// debounced write, the file is reloaded and, when the decoded value differs
// from the one last seen, apply is called with it. Reload failures go to
// onError and leave the previous value in effect; a nil onError discards
// them.
//
// apply and onError run on the watch goroutine, one call at a time.
func (s *Source[T]) Watch(ctx context.Context, apply func(T), onError func(error)) error {
	if s.path == "" {
		return ErrNoFile
	}
	last, err := s.Get()
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace the file instead of writing it.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return err
	}
	if onError == nil {
		onError = func(error) {}
	}

	go s.follow(ctx, w, filepath.Base(s.path), last, apply, onError)
	return nil
}

func (s *Source[T]) follow(ctx context.Context, w *fsnotify.Watcher, name string, last T, apply func(T), onError func(error)) {
	defer w.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			onError(err)

		case <-fire:
			fire = nil
			next, err := s.reload()
			if err != nil {
				onError(err)
				continue
			}
			if reflect.DeepEqual(last, next) {
				continue
			}
			last = next
			fresh, err := s.Get()
			if err != nil {
				onError(err)
				continue
			}
			apply(fresh)
		}
	}
}
