package file

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/store"
)

func newTestSections(t *testing.T) (*FileSectionStore, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tabs.json")
	policy := normalize.ExportPolicy{DataRoot: filepath.Join(dir, "root"), ExportBase: filepath.Join(dir, "exports")}
	return NewFileSectionStore(path, filepath.Join(dir, "sections.json"), policy), path
}

func sectionIDs(secs []store.Section) []string {
	ids := make([]string, len(secs))
	for i, s := range secs {
		ids[i] = s.ID
	}
	return ids
}

func TestSectionsSeedInbox(t *testing.T) {
	s, path := newTestSections(t)

	secs := s.List()
	if len(secs) != 1 || secs[0].ID != store.InboxSectionID {
		t.Fatalf("List = %v, want seeded inbox", sectionIDs(secs))
	}
	if s.ActiveID() != store.InboxSectionID {
		t.Errorf("ActiveID = %q, want inbox", s.ActiveID())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("seeded document not written: %v", err)
	}
}

func TestSectionsLegacyFallback(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "sections.json")
	if err := WriteJSON(legacy, []map[string]any{
		{"id": "work", "name": "Work", "order": 1},
		{"id": "home", "name": "Home", "order": 0, "exportFolder": dir},
	}); err != nil {
		t.Fatal(err)
	}

	policy := normalize.ExportPolicy{DataRoot: dir, ExportBase: filepath.Join(dir, "exports")}
	s := NewFileSectionStore(filepath.Join(dir, "tabs.json"), legacy, policy)

	if got := sectionIDs(s.List()); !reflect.DeepEqual(got, []string{"home", "work"}) {
		t.Fatalf("List = %v, want [home work]", got)
	}
	home, _ := s.Get("home")
	if want := filepath.Join(dir, "exports", "home"); home.ExportPath != want {
		t.Errorf("ExportPath = %q, want %q", home.ExportPath, want)
	}
}

func TestCreateSection(t *testing.T) {
	s, path := newTestSections(t)

	sec, err := s.CreateSection("My Tab!!")
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if sec.ID != "my-tab" || sec.Label != "My Tab!!" {
		t.Errorf("section = %+v", sec)
	}
	if !reflect.DeepEqual(sec.Schema, normalize.DefaultSchema()) {
		t.Errorf("Schema = %v, want default", sec.Schema)
	}
	if sec.Order != 1 || len(sec.ClipOrder) != 0 || sec.ExportPath != "" {
		t.Errorf("section = %+v", sec)
	}

	dup, err := s.CreateSection("my tab")
	if err != nil {
		t.Fatalf("CreateSection duplicate: %v", err)
	}
	if dup.ID != "my-tab-2" {
		t.Errorf("duplicate id = %q, want my-tab-2", dup.ID)
	}

	doc := ReadJSON(path, store.TabsDocument{})
	if got := sectionIDs(doc.Tabs); !reflect.DeepEqual(got, []string{"inbox", "my-tab", "my-tab-2"}) {
		t.Errorf("persisted = %v", got)
	}
}

func TestCreateSectionRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"reserved_delete", "Delete", store.ErrReservedName},
		{"reserved_all", " ALL ", store.ErrReservedName},
		{"reserved_drag", "drag!", store.ErrReservedName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSections(t)
			_, err := s.CreateSection(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateSection(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if n := len(s.List()); n != 1 {
				t.Errorf("section count = %d, want 1", n)
			}
		})
	}

	s, _ := newTestSections(t)
	if _, err := s.CreateSection("   "); !store.IsValidation(err) {
		t.Errorf("blank name error = %v, want validation error", err)
	}
}

func TestCreateSectionReportsWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// Parent of the document is a regular file, so every write fails.
	s := NewFileSectionStore(filepath.Join(blocker, "tabs.json"), "", normalize.ExportPolicy{})

	if _, err := s.CreateSection("Work"); err == nil {
		t.Fatal("expected persistence error")
	}
	if _, ok := s.Get("work"); ok {
		t.Error("section kept in memory after failed create")
	}
}

func TestDeleteLockedSection(t *testing.T) {
	s, _ := newTestSections(t)
	if _, err := s.CreateSection("Work"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetLocked("work", true); err != nil {
		t.Fatal(err)
	}

	before := s.List()
	if err := s.DeleteSection("work"); !errors.Is(err, store.ErrLocked) {
		t.Fatalf("DeleteSection locked error = %v, want ErrLocked", err)
	}
	if !reflect.DeepEqual(s.List(), before) {
		t.Error("section list changed after refused delete")
	}

	if _, err := s.SetLocked("work", false); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSection("work"); err != nil {
		t.Fatalf("DeleteSection after unlock: %v", err)
	}
	if _, ok := s.Get("work"); ok {
		t.Error("section still present")
	}
}

func TestDeleteActiveSection(t *testing.T) {
	s, _ := newTestSections(t)
	if _, err := s.CreateSection("Work"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActive("work"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSection("work"); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != store.InboxSectionID {
		t.Errorf("ActiveID = %q, want inbox", s.ActiveID())
	}
}

func TestUnknownSection(t *testing.T) {
	s, _ := newTestSections(t)

	ops := map[string]func() error{
		"rename":  func() error { _, err := s.RenameSection("nope", "x"); return err },
		"lock":    func() error { _, err := s.SetLocked("nope", true); return err },
		"color":   func() error { _, err := s.SetColor("nope", "red"); return err },
		"icon":    func() error { _, err := s.SetIcon("nope", "star"); return err },
		"export":  func() error { _, err := s.SetExportPath("nope", "/tmp"); return err },
		"schema":  func() error { _, err := s.SetSchema("nope", nil); return err },
		"delete":  func() error { return s.DeleteSection("nope") },
		"reorder": func() error { _, err := s.ReorderSections("nope", "inbox"); return err },
		"active":  func() error { return s.SetActive("nope") },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRenameSectionKeepsID(t *testing.T) {
	s, _ := newTestSections(t)
	if _, err := s.CreateSection("Work"); err != nil {
		t.Fatal(err)
	}

	sec, err := s.RenameSection("work", "Day Job")
	if err != nil {
		t.Fatal(err)
	}
	if sec.ID != "work" || sec.Label != "Day Job" {
		t.Errorf("section = %+v", sec)
	}
	if _, err := s.RenameSection("work", "Save"); !errors.Is(err, store.ErrReservedName) {
		t.Errorf("rename to reserved error = %v", err)
	}
}

func TestSetExportPath(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	exports := filepath.Join(dir, "exports")
	s := NewFileSectionStore(filepath.Join(dir, "tabs.json"), "", normalize.ExportPolicy{DataRoot: root, ExportBase: exports})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"explicit", filepath.Join(dir, "mine"), filepath.Join(dir, "mine")},
		{"data_root", root, filepath.Join(exports, "inbox")},
		{"data_dir", filepath.Join(root, "data") + "/", filepath.Join(exports, "inbox")},
		{"disabled", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, err := s.SetExportPath("inbox", tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if sec.ExportPath != tt.want {
				t.Errorf("ExportPath = %q, want %q", sec.ExportPath, tt.want)
			}
		})
	}
}

func TestSetSchemaClamps(t *testing.T) {
	s, _ := newTestSections(t)
	sec, err := s.SetSchema("inbox", []string{"notes", "bogus", "title"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sec.Schema, []string{"title", "notes"}) {
		t.Errorf("Schema = %v", sec.Schema)
	}
}

func TestReorderSections(t *testing.T) {
	tests := []struct {
		name           string
		source, target string
		want           []string
	}{
		{"before_first", "c", "inbox", []string{"c", "inbox", "a", "b"}},
		{"before_next", "a", "b", []string{"inbox", "a", "b", "c"}},
		{"unknown_target", "inbox", "zzz", []string{"a", "b", "c", "inbox"}},
		{"self", "b", "b", []string{"inbox", "a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, path := newTestSections(t)
			for _, n := range []string{"a", "b", "c"} {
				if _, err := s.CreateSection(n); err != nil {
					t.Fatal(err)
				}
			}

			got, err := s.ReorderSections(tt.source, tt.target)
			if err != nil {
				t.Fatal(err)
			}
			if ids := sectionIDs(got); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("order = %v, want %v", ids, tt.want)
			}
			for i, sec := range got {
				if sec.Order != i {
					t.Errorf("%s.Order = %d, want %d", sec.ID, sec.Order, i)
				}
			}

			reloaded := NewFileSectionStore(path, "", normalize.ExportPolicy{})
			if ids := sectionIDs(reloaded.List()); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("reloaded order = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestReorderClips(t *testing.T) {
	s, _ := newTestSections(t)

	sec, err := s.ReorderClips("inbox", "c3", "c1", []string{"c1", "c2", "c3"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"c3", "c1", "c2"}; !reflect.DeepEqual(sec.ClipOrder, want) {
		t.Errorf("ClipOrder = %v, want %v", sec.ClipOrder, want)
	}

	sec, err = s.ReorderClips("inbox", "c3", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"c1", "c2", "c3"}; !reflect.DeepEqual(sec.ClipOrder, want) {
		t.Errorf("ClipOrder = %v, want %v", sec.ClipOrder, want)
	}

	if _, err := s.ReorderClips("inbox", "", "c1", nil); !store.IsValidation(err) {
		t.Errorf("empty clip id error = %v, want validation", err)
	}
}

func TestSectionsLoadKeepsCollidingIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabs.json")
	if err := WriteJSON(path, map[string]any{
		"tabs": []map[string]any{
			{"label": "Untitled", "order": 0},
			{"id": "tab-0", "label": "Work", "order": 1},
			{"id": "all", "label": "Everything", "order": 2},
		},
		"activeTabId": "tab-0",
	}); err != nil {
		t.Fatal(err)
	}

	s := NewFileSectionStore(path, "", normalize.ExportPolicy{})
	if got, want := sectionIDs(s.List()), []string{"tab-0-2", "tab-0", "all-2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	if sec, ok := s.Get("tab-0"); !ok || sec.Label != "Work" {
		t.Errorf("explicit tab-0 = %+v, %v", sec, ok)
	}
	for _, sec := range s.List() {
		if err := store.CheckSectionID(sec.ID); err != nil {
			t.Errorf("loaded reserved id: %v", err)
		}
	}
}
