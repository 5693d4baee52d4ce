// Package export mirrors clips into the export folder configured on their
// section. Mirroring is best-effort: failures are logged by the caller and
// never affect the primary store.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cliptray/cliptray/internal/store"
)

// DefaultCacheSize bounds the number of remembered mirror hashes.
const DefaultCacheSize = 512

// Mirror writes canonical clip documents to local folders or s3:// prefixes.
type Mirror struct {
	local Sink

	s3Mu    sync.Mutex
	s3Opts  S3Options
	s3Sink  Sink
	newS3   func(ctx context.Context, opts S3Options) (Sink, error)
	written *lru.Cache[string, string] // target → content hash
}

// Options configures a Mirror.
type Options struct {
	CacheSize int
	S3        S3Options
}

// NewMirror creates a mirror. The S3 client is only built the first time a
// section with an s3:// export path is mirrored.
func NewMirror(opts Options) *Mirror {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, string](size)
	return &Mirror{
		local:   LocalSink{},
		s3Opts:  opts.S3,
		written: cache,
		newS3: func(ctx context.Context, o S3Options) (Sink, error) {
			return NewS3Sink(ctx, o)
		},
	}
}

// Write mirrors clip into its section's export path and returns the target
// written. A section without an export path (or an unknown section) is a
// no-op returning "". Unchanged content is skipped while the target still
// exists.
func (m *Mirror) Write(ctx context.Context, clip store.Clip, sections []store.Section) (string, error) {
	sec := findSection(sections, clip.SectionID)
	if sec == nil || strings.TrimSpace(sec.ExportPath) == "" {
		slog.Debug("export: mirroring disabled for section", "section", clip.SectionID, "clip", clip.ID)
		return "", nil
	}

	data, err := json.MarshalIndent(NewDocument(clip), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal mirror: %w", err)
	}
	data = append(data, '\n')

	target, sink, err := m.resolve(ctx, sec.ExportPath, FileName(clip))
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	if prev, ok := m.written.Get(target); ok && prev == hash {
		exists, err := sink.Exists(ctx, target)
		if err == nil && exists {
			slog.Debug("export: mirror unchanged", "target", target)
			return target, nil
		}
		m.written.Remove(target)
	}

	if err := sink.Put(ctx, target, data); err != nil {
		m.written.Remove(target)
		return "", fmt.Errorf("mirror clip %s: %w", clip.ID, err)
	}
	m.written.Add(target, hash)
	slog.Debug("export: mirrored clip", "clip", clip.ID, "target", target)
	return target, nil
}

// Remove deletes the mirror of a clip, if its section exports.
func (m *Mirror) Remove(ctx context.Context, clip store.Clip, sections []store.Section) error {
	sec := findSection(sections, clip.SectionID)
	if sec == nil || strings.TrimSpace(sec.ExportPath) == "" {
		return nil
	}
	target, sink, err := m.resolve(ctx, sec.ExportPath, FileName(clip))
	if err != nil {
		return err
	}
	m.written.Remove(target)
	if err := sink.Delete(ctx, target); err != nil {
		return fmt.Errorf("remove mirror of clip %s: %w", clip.ID, err)
	}
	return nil
}

// Forget drops every remembered hash, forcing the next writes through, and
// discards the S3 client so the next s3:// write builds a fresh one.
func (m *Mirror) Forget() {
	m.written.Purge()
	m.s3Mu.Lock()
	m.s3Sink = nil
	m.s3Mu.Unlock()
}

// Reconfigure replaces the S3 options and forgets all cached state.
func (m *Mirror) Reconfigure(opts S3Options) {
	m.s3Mu.Lock()
	m.s3Opts = opts
	m.s3Mu.Unlock()
	m.Forget()
}

func (m *Mirror) resolve(ctx context.Context, exportPath, name string) (string, Sink, error) {
	if !IsS3URL(exportPath) {
		return filepath.Join(exportPath, name), m.local, nil
	}

	bucket, prefix, err := ParseS3URL(exportPath)
	if err != nil {
		return "", nil, err
	}
	sink, err := m.s3(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("s3 sink: %w", err)
	}
	return "s3://" + bucket + "/" + joinKey(prefix, name), sink, nil
}

// s3 returns the cached S3 sink, building it on first use. A failed build is
// not cached, so the next write retries.
func (m *Mirror) s3(ctx context.Context) (Sink, error) {
	m.s3Mu.Lock()
	defer m.s3Mu.Unlock()
	if m.s3Sink != nil {
		return m.s3Sink, nil
	}
	sink, err := m.newS3(ctx, m.s3Opts)
	if err != nil {
		return nil, err
	}
	m.s3Sink = sink
	return sink, nil
}

func findSection(sections []store.Section, id string) *store.Section {
	for i := range sections {
		if sections[i].ID == id {
			return &sections[i]
		}
	}
	return nil
}
