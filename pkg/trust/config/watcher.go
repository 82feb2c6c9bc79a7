// Copyright 2026 The Packsig Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/packsig/packsig-go/pkg/policy"
)

const debounceInterval = 100 * time.Millisecond

// Watcher keeps a trusted-signers file resolved into a live policy. Every
// reload produces a new immutable policy instance; the previous instance is
// never mutated and stays valid for callers still holding it. A malformed
// write keeps the last good policy in place.
type Watcher struct {
	path   string
	logger *slog.Logger

	mu          sync.RWMutex
	settings    *policy.Settings
	subscribers []chan *policy.Settings

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

// NewWatcher loads the trusted-signers file at path and starts watching it
// for changes. The file must resolve cleanly at construction; later malformed
// writes are logged and the last good policy is kept. A nil logger discards
// reload diagnostics.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	settings, err := resolve(absPath)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory, not the file: editors and atomic writers replace
	// the file by rename, which would orphan a watch on the file itself.
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		path:     absPath,
		logger:   logger,
		settings: settings,
		watcher:  fsWatcher,
		cancel:   cancel,
	}

	go w.watchLoop(ctx)

	return w, nil
}

// Current returns the most recently resolved policy.
func (w *Watcher) Current() *policy.Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// Subscribe returns a channel receiving the policy resolved by each reload.
// The current policy is delivered immediately. Slow consumers miss
// intermediate updates rather than blocking the watcher.
func (w *Watcher) Subscribe() <-chan *policy.Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan *policy.Settings, 1)
	w.subscribers = append(w.subscribers, ch)
	ch <- w.settings
	return ch
}

// Close stops the watcher. Subscribed channels stop receiving updates but are
// not closed.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Chmod) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceInterval, w.reload)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("trust config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	settings, err := resolve(w.path)
	if err != nil {
		w.logger.Warn("keeping last good trust config", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	w.settings = settings
	subscribers := make([]chan *policy.Settings, len(w.subscribers))
	copy(subscribers, w.subscribers)
	w.mu.Unlock()

	w.logger.Info("trust config reloaded", "path", w.path)

	for _, ch := range subscribers {
		select {
		case ch <- settings:
		default:
		}
	}
}

func resolve(path string) (*policy.Settings, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Settings()
}
