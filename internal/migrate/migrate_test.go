package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cliptray/cliptray/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.DataDir = filepath.Join(root, "data")
	return cfg
}

func TestRunMovesLegacyData(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, filepath.Join(root, "clips.json"), `[{"id":"a"}]`)
	writeFile(t, filepath.Join(root, "screenshots", "shot.png"), "png")
	writeFile(t, filepath.Join(root, "tabs.json"), `{"tabs":[]}`)
	writeFile(t, filepath.Join(root, "data", "tabs.json"), `{"tabs":[{"id":"keep"}]}`)

	report := Run(context.Background(), DefaultMoves(cfg))

	if report.Moved() != 2 {
		t.Errorf("Moved = %d, want 2: %+v", report.Moved(), report.Results)
	}
	if err := report.Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
	if got := readFile(t, filepath.Join(root, "data", "clips.json")); got != `[{"id":"a"}]` {
		t.Errorf("clips.json = %q", got)
	}
	if got := readFile(t, filepath.Join(root, "data", "screenshots", "shot.png")); got != "png" {
		t.Errorf("screenshot = %q", got)
	}
	if got := readFile(t, filepath.Join(root, "data", "tabs.json")); got != `{"tabs":[{"id":"keep"}]}` {
		t.Errorf("existing destination overwritten: %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "tabs.json")); err != nil {
		t.Errorf("legacy file with existing destination should stay: %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, filepath.Join(root, "settings.json"), `{}`)

	first := Run(context.Background(), DefaultMoves(cfg))
	second := Run(context.Background(), DefaultMoves(cfg))

	if first.Moved() != 1 || second.Moved() != 0 {
		t.Errorf("moved = %d then %d, want 1 then 0", first.Moved(), second.Moved())
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), "a")
	writeFile(t, filepath.Join(root, "b.json"), "b")
	writeFile(t, filepath.Join(root, "blocker"), "file")

	moves := []Move{
		{From: filepath.Join(root, "a.json"), To: filepath.Join(root, "blocker", "a.json")},
		{From: filepath.Join(root, "b.json"), To: filepath.Join(root, "out", "b.json")},
		{From: filepath.Join(root, "b.json"), To: filepath.Join(root, "out", "dir"), Dir: true},
	}
	report := Run(context.Background(), moves)

	want := []Outcome{Failed, Moved, SkippedAbsent}
	for i, res := range report.Results {
		if res.Outcome != want[i] {
			t.Errorf("result %d = %s (%v), want %s", i, res.Outcome, res.Err, want[i])
		}
	}
	if report.Err() == nil {
		t.Error("Err = nil, want the failed move")
	}
}

func TestDefaultMovesSameDir(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Root = root
	cfg.DataDir = root
	if moves := DefaultMoves(cfg); moves != nil {
		t.Errorf("DefaultMoves = %v, want nil when root is the data dir", moves)
	}
}
