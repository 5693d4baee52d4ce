package normalize

import (
	"path/filepath"
	"testing"
)

func TestNormalizeExportPath(t *testing.T) {
	p := ExportPolicy{
		DataRoot:   "/home/u/.cliptray",
		ExportBase: "/home/u/Documents/ClipTray",
	}
	canonical := filepath.Join("/home/u/Documents/ClipTray", "my-tab")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"data_root", "/home/u/.cliptray", canonical},
		{"data_root_case_slash", `\HOME\u\.ClipTray\`, canonical},
		{"data_dir", "/home/u/.cliptray/data/", canonical},
		{"screenshots_dir", "/home/u/.cliptray/screenshots", canonical},
		{"bare_base", "/home/u/Documents/ClipTray", canonical},
		{"explicit", "/home/u/Desktop/exports", "/home/u/Desktop/exports"},
		{"inside_root_other", "/home/u/.cliptray/exports/work", "/home/u/.cliptray/exports/work"},
		{"s3", "s3://bucket/clips", "s3://bucket/clips"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.NormalizeExportPath(tt.in, "My Tab"); got != tt.want {
				t.Errorf("NormalizeExportPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeExportPath_CustomDataDir(t *testing.T) {
	p := ExportPolicy{
		DataRoot:       "/home/u/.cliptray",
		DataDir:        "/srv/cliptray-data",
		ScreenshotsDir: "/srv/cliptray-data/screenshots",
		ExportBase:     "/home/u/Documents/ClipTray",
	}
	canonical := filepath.Join("/home/u/Documents/ClipTray", "work")

	for _, in := range []string{"/srv/cliptray-data", "/SRV/cliptray-data/", "/srv/cliptray-data/screenshots"} {
		if got := p.NormalizeExportPath(in, "Work"); got != canonical {
			t.Errorf("NormalizeExportPath(%q) = %q, want %q", in, got, canonical)
		}
	}
	if got := p.NormalizeExportPath("/srv/cliptray-data/exports", "Work"); got != "/srv/cliptray-data/exports" {
		t.Errorf("explicit sibling rewritten to %q", got)
	}
}

func TestCanonicalExportPath_Fallback(t *testing.T) {
	p := ExportPolicy{ExportBase: "/x"}
	if got, want := p.CanonicalExportPath(""), filepath.Join("/x", FallbackSlug); got != want {
		t.Errorf("CanonicalExportPath(\"\") = %q, want %q", got, want)
	}
}
