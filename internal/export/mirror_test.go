package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cliptray/cliptray/internal/store"
)

type memSink struct {
	mu      sync.Mutex
	puts    map[string][]byte
	deletes []string
	writes  int
	fail    error
}

func (s *memSink) Put(_ context.Context, target string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[target] = data
	s.writes++
	return nil
}

func (s *memSink) Delete(_ context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, target)
	delete(s.puts, target)
	return nil
}

func (s *memSink) Exists(_ context.Context, target string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.puts[target]
	return ok, nil
}

func TestWriteLocal(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(Options{})
	sections := []store.Section{{ID: "inbox", ExportPath: dir}}
	clip := store.Clip{ID: "clip-1", SectionID: "inbox", Title: "T", Tags: []string{"x"}, CapturedAt: 5}

	target, err := m.Write(context.Background(), clip, sections)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := filepath.Join(dir, "inbox_clip-1.json"); target != want {
		t.Errorf("target = %q, want %q", target, want)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"icon", "color"} {
		v, ok := doc[key]
		if !ok || v != nil {
			t.Errorf("%s = %v (present %v), want explicit null", key, v, ok)
		}
	}
	if _, ok := doc["updatedAt"]; ok {
		t.Error("bookkeeping field updatedAt leaked into mirror")
	}
}

func TestWriteNoExportPath(t *testing.T) {
	m := NewMirror(Options{})
	clip := store.Clip{ID: "c", SectionID: "inbox"}

	for _, sections := range [][]store.Section{nil, {{ID: "inbox"}}} {
		target, err := m.Write(context.Background(), clip, sections)
		if err != nil || target != "" {
			t.Errorf("Write = %q, %v; want no-op", target, err)
		}
	}
}

func TestWriteSanitizesName(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(Options{})
	sections := []store.Section{{ID: "a/b", ExportPath: dir}}
	target, err := m.Write(context.Background(), store.Clip{ID: "x:y z", SectionID: "a/b"}, sections)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(target) != "ab_xy_z.json" || filepath.Dir(target) != dir {
		t.Errorf("target = %q", target)
	}
}

func TestWriteSkipsUnchanged(t *testing.T) {
	sink := &memSink{}
	m := NewMirror(Options{})
	m.local = sink
	sections := []store.Section{{ID: "s", ExportPath: "/exports"}}
	clip := store.Clip{ID: "c", SectionID: "s", Title: "one"}

	for i := 0; i < 2; i++ {
		if _, err := m.Write(context.Background(), clip, sections); err != nil {
			t.Fatal(err)
		}
	}
	if sink.writes != 1 {
		t.Errorf("writes = %d, want unchanged clip skipped", sink.writes)
	}

	clip.Title = "two"
	if _, err := m.Write(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	if sink.writes != 2 {
		t.Error("changed clip was not rewritten")
	}
}

func TestWriteRestoresDeletedTarget(t *testing.T) {
	sink := &memSink{}
	m := NewMirror(Options{})
	m.local = sink
	sections := []store.Section{{ID: "s", ExportPath: "/exports"}}
	clip := store.Clip{ID: "c", SectionID: "s", Title: "one"}
	target := filepath.Join("/exports", "s_c.json")

	if _, err := m.Write(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	sink.mu.Lock()
	delete(sink.puts, target)
	sink.mu.Unlock()

	if _, err := m.Write(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.puts[target]; !ok || sink.writes != 2 {
		t.Errorf("deleted mirror not rewritten (writes = %d)", sink.writes)
	}
}

func TestWriteRestoresDeletedFile(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(Options{})
	sections := []store.Section{{ID: "s", ExportPath: dir}}
	clip := store.Clip{ID: "c", SectionID: "s", Title: "one"}

	target, err := m.Write(context.Background(), clip, sections)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Write(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("mirror not restored: %v", err)
	}
}

func TestWriteFailureNotCached(t *testing.T) {
	sink := &memSink{fail: errors.New("disk full")}
	m := NewMirror(Options{})
	m.local = sink
	sections := []store.Section{{ID: "s", ExportPath: "/exports"}}
	clip := store.Clip{ID: "c", SectionID: "s"}

	if _, err := m.Write(context.Background(), clip, sections); err == nil {
		t.Fatal("expected error")
	}
	sink.fail = nil
	if _, err := m.Write(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	if len(sink.puts) != 1 {
		t.Error("retry after failure was skipped")
	}
}

func TestWriteS3(t *testing.T) {
	sink := &memSink{}
	m := NewMirror(Options{S3: S3Options{Region: "us-east-1"}})
	var gotOpts S3Options
	m.newS3 = func(_ context.Context, o S3Options) (Sink, error) {
		gotOpts = o
		return sink, nil
	}

	sections := []store.Section{{ID: "s", ExportPath: "s3://bucket/clips/"}}
	target, err := m.Write(context.Background(), store.Clip{ID: "c", SectionID: "s"}, sections)
	if err != nil {
		t.Fatal(err)
	}
	if target != "s3://bucket/clips/s_c.json" {
		t.Errorf("target = %q", target)
	}
	if gotOpts.Region != "us-east-1" {
		t.Errorf("s3 options = %+v", gotOpts)
	}
	if _, ok := sink.puts[target]; !ok {
		t.Error("object not uploaded")
	}
}

func TestS3InitRetriedAfterFailure(t *testing.T) {
	sink := &memSink{}
	m := NewMirror(Options{S3: S3Options{Region: "bad"}})
	calls := 0
	var gotOpts S3Options
	m.newS3 = func(_ context.Context, o S3Options) (Sink, error) {
		calls++
		gotOpts = o
		if o.Region == "bad" {
			return nil, errors.New("no credentials")
		}
		return sink, nil
	}
	sections := []store.Section{{ID: "s", ExportPath: "s3://bucket/p"}}
	clip := store.Clip{ID: "c", SectionID: "s"}

	for i := 0; i < 2; i++ {
		if _, err := m.Write(context.Background(), clip, sections); err == nil {
			t.Fatal("expected s3 init error")
		}
	}
	if calls != 2 {
		t.Errorf("newS3 calls = %d, want failed init retried", calls)
	}

	m.Reconfigure(S3Options{Region: "eu-west-1"})
	if _, err := m.Write(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	if gotOpts.Region != "eu-west-1" {
		t.Errorf("s3 options = %+v, want reconfigured", gotOpts)
	}
	if _, err := m.Write(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("newS3 calls = %d, want working sink reused", calls)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(Options{})
	sections := []store.Section{{ID: "s", ExportPath: dir}}
	clip := store.Clip{ID: "c", SectionID: "s"}

	target, err := m.Write(context.Background(), clip, sections)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Remove(context.Background(), clip, sections); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("mirror still present: %v", err)
	}
	if err := m.Remove(context.Background(), clip, sections); err != nil {
		t.Errorf("second Remove = %v", err)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in          string
		bucket, key string
		wantErr     bool
	}{
		{"s3://b/p/q", "b", "p/q", false},
		{"S3://b", "b", "", false},
		{"s3:///nobucket", "", "", true},
		{"/local/path", "", "", true},
	}
	for _, tt := range tests {
		b, k, err := ParseS3URL(tt.in)
		if (err != nil) != tt.wantErr || b != tt.bucket || k != tt.key {
			t.Errorf("ParseS3URL(%q) = %q, %q, %v", tt.in, b, k, err)
		}
	}
	if !IsS3URL(" s3://x") || IsS3URL("/tmp/s3://x") {
		t.Error("IsS3URL mismatch")
	}
	if got := joinKey("", "f.json"); !strings.EqualFold(got, "f.json") {
		t.Errorf("joinKey = %q", got)
	}
}
