package normalize

import (
	"path"
	"path/filepath"
	"strings"
)

// ExportPolicy decides where section mirrors may be written. Paths that point
// at the application's own data directories are rewritten to a per-section
// folder under ExportBase so mirrors never land next to the primary store.
type ExportPolicy struct {
	// DataRoot is the application root (e.g. ~/.cliptray).
	DataRoot string
	// DataDir and ScreenshotsDir are the configured primary data folders.
	// They may live outside DataRoot.
	DataDir        string
	ScreenshotsDir string
	// ExportBase is the parent of canonical per-section export folders.
	ExportBase string
}

// ambiguousSubdirs are DataRoot children that hold primary data, not exports.
var ambiguousSubdirs = []string{"data", "screenshots"}

// CanonicalExportPath returns <ExportBase>/<slug(name)>.
func (p ExportPolicy) CanonicalExportPath(name string) string {
	return filepath.Join(p.ExportBase, Slugify(name))
}

// NormalizeExportPath keeps explicit user paths verbatim and rewrites the
// data root, its data/screenshots children and the bare export base to the
// canonical export path for name. The configured data and screenshots
// folders are rewritten the same way wherever they live. Empty input stays empty (mirroring off).
func (p ExportPolicy) NormalizeExportPath(exportPath, name string) string {
	if strings.TrimSpace(exportPath) == "" {
		return ""
	}
	key := pathKey(exportPath)
	for _, candidate := range p.ambiguous() {
		if key == candidate {
			return p.CanonicalExportPath(name)
		}
	}
	return exportPath
}

func (p ExportPolicy) ambiguous() []string {
	var out []string
	if strings.TrimSpace(p.DataRoot) != "" {
		root := pathKey(p.DataRoot)
		out = append(out, root)
		for _, sub := range ambiguousSubdirs {
			out = append(out, path.Join(root, sub))
		}
	}
	for _, dir := range []string{p.DataDir, p.ScreenshotsDir, p.ExportBase} {
		if strings.TrimSpace(dir) != "" {
			out = append(out, pathKey(dir))
		}
	}
	return out
}

// pathKey is the comparison form of a path: forward slashes, cleaned,
// lowercased, no trailing slash.
func pathKey(p string) string {
	s := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	s = path.Clean(s)
	if len(s) > 1 {
		s = strings.TrimRight(s, "/")
	}
	return strings.ToLower(s)
}
