// Package screenshot stores images handed over by the native capture
// collaborator and resolves them for the /screenshots route.
package screenshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// DefaultMaxSide is the maximum pixels per side before resize.
const DefaultMaxSide = 2560

// ErrInvalidName is returned for names that could escape the store directory.
var ErrInvalidName = errors.New("invalid screenshot name")

var validNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Store keeps screenshots as PNG files in one flat directory.
type Store struct {
	dir     string
	maxSide int
}

// NewStore creates a store rooted at dir. maxSide <= 0 uses DefaultMaxSide.
func NewStore(dir string, maxSide int) *Store {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	return &Store{dir: dir, maxSide: maxSide}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Save decodes a PNG or JPEG image, applies EXIF orientation, shrinks it to
// fit maxSide and stores it re-encoded as PNG. Returns the file name, which
// is what clips reference in their screenshots list.
func (s *Store) Save(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > s.maxSide || b.Dy() > s.maxSide {
		img = imaging.Fit(img, s.maxSide, s.maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create screenshots dir: %w", err)
	}
	name := "shot-" + uuid.NewString() + ".png"
	tmp := filepath.Join(s.dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename screenshot: %w", err)
	}

	slog.Info("screenshot saved", "name", name, "bytes", buf.Len(), "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return name, nil
}

// SaveDataURL accepts a base64 data URL (data:image/png;base64,...) as
// produced by the webview capture API.
func (s *Store) SaveDataURL(dataURL string) (string, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return "", fmt.Errorf("not a base64 image data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode data URL: %w", err)
	}
	return s.Save(data)
}

// Path resolves name inside the store. Names containing separators, ".." or
// other unexpected characters are rejected.
func (s *Store) Path(name string) (string, error) {
	if !validNameRe.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes a stored screenshot. A missing file is not an error.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
