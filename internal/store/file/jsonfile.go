package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

// ReadJSON decodes the document at path into a T. Absent, empty and
// unparseable files yield fallback; failures are logged, never returned.
// Hand-edited files with comments or trailing commas are accepted through a
// lenient JSON5 second pass.
func ReadJSON[T any](path string, fallback T) T {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("store: read failed, using fallback", "path", path, "error", err)
		}
		return fallback
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fallback
	}

	var v T
	err = json.Unmarshal(data, &v)
	if err == nil {
		return v
	}

	var lenient T
	if err5 := json5.Unmarshal(data, &lenient); err5 != nil {
		slog.Warn("store: parse failed, using fallback", "path", path, "error", err)
		return fallback
	}
	slog.Debug("store: parsed with lenient decoder", "path", path)
	return lenient
}

// WriteJSON atomically replaces the document at path with v, creating parent
// directories as needed. Errors are logged and returned; callers decide
// whether the write was meaningful enough to report.
func WriteJSON(path string, v any) error {
	if err := writeJSON(path, v); err != nil {
		slog.Error("store: write failed", "path", path, "error", err)
		return err
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// WriteFileAtomic replaces path with data through a temp file in the same
// directory, so readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
