package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Settings is one immutable snapshot of the service configuration. Snapshots
// are never mutated after Load; reloads swap in a fresh one.
type Settings struct {
	AppName      string `json:"app_name"`
	AdminEmail   string `json:"admin_email"`
	ItemsPerUser int    `json:"items_per_user"`
}

// Load reads a settings snapshot from an env file.
func Load(path string) (*Settings, error) {
	envs, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	items, err := strconv.Atoi(envs["ITEMS_PER_USER"])
	if err != nil {
		return nil, fmt.Errorf("ITEMS_PER_USER in %s: %w", path, err)
	}

	return &Settings{
		AppName:      envs["APP_NAME"],
		AdminEmail:   envs["ADMIN_EMAIL"],
		ItemsPerUser: items,
	}, nil
}

// Store holds the currently loaded settings. Readers get whatever snapshot
// was last swapped in; the watcher goroutine is the only writer.
type Store struct {
	current atomic.Pointer[Settings]
}

// NewStore creates a store holding the initial snapshot.
func NewStore(s *Settings) *Store {
	st := &Store{}
	st.current.Store(s)
	return st
}

// Current returns the currently loaded snapshot.
func (s *Store) Current() *Settings {
	return s.current.Load()
}

// Watch reloads the env file whenever it changes and swaps the new snapshot
// into the store. A snapshot that fails to load is dropped with a warning and
// the previous one stays in effect. Watch blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, envPath string) error {
	abs, err := filepath.Abs(envPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors typically replace the file,
	// which silently drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logrus.Infof("Watching %s for configuration changes", abs)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settings, err := Load(abs)
			if err != nil {
				logrus.Warnf("Configuration reload failed: %v", err)
				continue
			}
			s.current.Store(settings)
			logrus.Infof("Configuration reloaded: %+v", settings)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("Configuration watcher: %v", err)
		}
	}
}
