// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/deferred"
)

// DefaultDebounce is how long the watcher waits for a burst of file
// changes to settle before requesting a reload.
const DefaultDebounce = 250 * time.Millisecond

// ErrWatcherClosed is returned when adding a path to a closed watcher.
var ErrWatcherClosed = errors.New("render: asset watcher closed")

// AssetWatcher watches an asset directory tree and requests a graphics
// state reconstruction when files change. Requests are coalesced: at most
// one is pending at a time.
type AssetWatcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	reloads  chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// WatchAssets starts watching root and every directory below it.
func WatchAssets(root string, debounce time.Duration) (*AssetWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &AssetWatcher{
		fsw:      fsw,
		debounce: debounce,
		reloads:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.loop()
	deferred.Logger().Info("render: watching assets", "root", root)
	return w, nil
}

func (w *AssetWatcher) addTree(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Events delivers one value per settled burst of changes.
func (w *AssetWatcher) Events() <-chan struct{} { return w.reloads }

func (w *AssetWatcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
					if err := w.addTree(e.Name); err != nil {
						deferred.Logger().Warn("render: watch new directory", "path", e.Name, "err", err)
					}
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			deferred.Logger().Debug("render: asset changed", "path", e.Name, "op", e.Op.String())
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			deferred.Logger().Warn("render: asset watcher", "err", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			select {
			case w.reloads <- struct{}{}:
				deferred.Logger().Info("render: asset reload requested")
			default:
			}

		case <-w.done:
			timer.Stop()
			return
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *AssetWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
