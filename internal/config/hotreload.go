package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 300 * time.Millisecond

// Watcher reloads config.json when it changes on disk and hands each new
// version to onChange. It watches the parent directory so saves done by
// rename-and-replace are seen, and it skips edits that leave the effective
// config unchanged.
type Watcher struct {
	path     string
	onChange func(*Config)
	debounce time.Duration
	lastHash string
}

// NewWatcher returns a watcher for path. current is the config already in
// use; a reload is reported only when its hash differs.
func NewWatcher(path string, current *Config, onChange func(*Config)) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: reloadDebounce,
	}
	if current != nil {
		w.lastHash = current.Hash()
	}
	return w
}

// Run watches until ctx is done. The config directory is created when
// missing.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := fw.Add(dir); err != nil {
		return err
	}
	slog.Info("config watcher started", "path", w.path)

	// A stopped timer whose channel is drained acts as the debounce.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("config watcher stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == w.path && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Error("config reload failed, keeping previous config", "error", err)
		return
	}
	hash := cfg.Hash()
	if hash == w.lastHash {
		slog.Debug("config file touched without changes", "path", w.path)
		return
	}
	w.lastHash = hash
	w.onChange(cfg)
}
