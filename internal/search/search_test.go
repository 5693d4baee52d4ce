package search

import (
	"reflect"
	"testing"

	"github.com/cliptray/cliptray/internal/store"
)

func ids(clips []store.Clip) []string {
	out := make([]string, 0, len(clips))
	for _, c := range clips {
		out = append(out, c.ID)
	}
	return out
}

func sampleClips() []store.Clip {
	return []store.Clip{
		{ID: "c1", Title: "Alpha", Text: "hello world", SectionID: "inbox", Tags: []string{"a"}, CapturedAt: 100},
		{ID: "c2", Title: "beta", Notes: "Remember THIS", SectionID: "work", Tags: []string{"A", "b", "c"}, CapturedAt: 300},
		{ID: "c3", Title: "Gamma", SectionID: "inbox", Tags: []string{"b"}, CapturedAt: 200, UpdatedAt: 50},
		{ID: "c4", Title: "delta", SectionID: "gone", CreatedAt: 400},
	}
}

func TestFilter_TagsAreANDed(t *testing.T) {
	clips := []store.Clip{
		{ID: "only-a", Tags: []string{"a"}},
		{ID: "abc", Tags: []string{"a", "b", "c"}},
	}
	got := Filter(clips, BuildIndex(clips), Criteria{SectionID: "all", TagFilter: "a,b"})
	if want := []string{"abc"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Filter = %v, want %v", ids(got), want)
	}
}

func TestFilter(t *testing.T) {
	clips := sampleClips()
	idx := BuildIndex(clips)

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"all", Criteria{SectionID: "all"}, []string{"c1", "c2", "c3", "c4"}},
		{"empty_section_is_all", Criteria{}, []string{"c1", "c2", "c3", "c4"}},
		{"section", Criteria{SectionID: "inbox"}, []string{"c1", "c3"}},
		{"dangling_excluded", Criteria{SectionID: "work"}, []string{"c2"}},
		{"search_text_case", Criteria{SectionID: "all", SearchText: "HELLO"}, []string{"c1"}},
		{"search_notes", Criteria{SearchText: "remember this"}, []string{"c2"}},
		{"search_tags", Criteria{SearchText: "b"}, []string{"c2", "c3"}},
		{"tag_case_insensitive", Criteria{TagFilter: " a "}, []string{"c1", "c2"}},
		{"tag_exact", Criteria{TagFilter: "al"}, []string{}},
		{"combined", Criteria{SectionID: "inbox", TagFilter: "b"}, []string{"c3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(clips, idx, tt.c))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestFilter_UnindexedClip(t *testing.T) {
	clips := []store.Clip{{ID: "late", Text: "Fresh"}}
	got := Filter(clips, Index{}, Criteria{SearchText: "fresh"})
	if len(got) != 1 {
		t.Fatalf("got %d clips, want 1", len(got))
	}
}

func TestSort_DefaultUsesClipOrder(t *testing.T) {
	clips := []store.Clip{
		{ID: "new-unlisted", SectionID: "s", CapturedAt: 999},
		{ID: "old-listed", SectionID: "s", CapturedAt: 1},
		{ID: "other-unlisted", SectionID: "s", CapturedAt: 5},
		{ID: "first-listed", SectionID: "s", CapturedAt: 2},
	}
	section := &store.Section{ID: "s", ClipOrder: []string{"first-listed", "missing", "old-listed"}}

	got := ids(Sort(clips, SortDefault, section))
	want := []string{"first-listed", "old-listed", "new-unlisted", "other-unlisted"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort default = %v, want %v", got, want)
	}
}

func TestSort_Modes(t *testing.T) {
	clips := sampleClips()
	tests := []struct {
		mode string
		want []string
	}{
		// timestamps: c1=100 (captured), c2=300, c3=50 (updated wins), c4=400 (created)
		{SortNewest, []string{"c4", "c2", "c1", "c3"}},
		{SortOldest, []string{"c3", "c1", "c2", "c4"}},
		{SortTitle, []string{"c1", "c2", "c4", "c3"}},
		{SortDefault, []string{"c1", "c2", "c3", "c4"}},
		{"unknown", []string{"c1", "c2", "c3", "c4"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got := ids(Sort(clips, tt.mode, nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sort(%s) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
	if clips[0].ID != "c1" {
		t.Error("Sort mutated its input")
	}
}

func TestSort_MissingTimestampsAreZero(t *testing.T) {
	clips := []store.Clip{{ID: "none"}, {ID: "some", CapturedAt: 1}}
	if got := ids(Sort(clips, SortOldest, nil)); !reflect.DeepEqual(got, []string{"none", "some"}) {
		t.Errorf("Sort oldest = %v", got)
	}
}

func TestMoveBefore(t *testing.T) {
	tests := []struct {
		name   string
		order  []string
		id     string
		before string
		want   []string
	}{
		{"move_up", []string{"a", "b", "c"}, "c", "a", []string{"c", "a", "b"}},
		{"move_down", []string{"a", "b", "c"}, "a", "c", []string{"b", "a", "c"}},
		{"to_end", []string{"a", "b", "c"}, "a", "", []string{"b", "c", "a"}},
		{"unknown_before", []string{"a", "b"}, "a", "zzz", []string{"b", "a"}},
		{"new_id", []string{"a", "b"}, "x", "b", []string{"a", "x", "b"}},
		{"self", []string{"a", "b"}, "a", "a", []string{"b", "a"}},
		{"empty", nil, "a", "", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveBefore(tt.order, tt.id, tt.before)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MoveBefore = %v, want %v", got, tt.want)
			}
		})
	}
}
