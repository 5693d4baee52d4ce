// Package migrate relocates data files left behind by older releases into
// the canonical data directory. It runs on every startup and only acts when
// the destination does not exist yet.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cliptray/cliptray/internal/config"
)

// Move relocates From to To.
type Move struct {
	From string
	To   string
	Dir  bool // From is a directory (screenshots)
}

// Outcome of a single move.
type Outcome string

const (
	Moved         Outcome = "moved"
	SkippedAbsent Outcome = "absent" // nothing at From
	SkippedExists Outcome = "exists" // To already present
	Failed        Outcome = "failed"
)

// Result records what happened to one Move.
type Result struct {
	Move    Move
	Outcome Outcome
	Err     error
}

// Report summarizes a run.
type Report struct {
	Results []Result
}

// Moved returns the number of entries relocated.
func (r Report) Moved() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == Moved {
			n++
		}
	}
	return n
}

// Err joins every per-entry failure.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// DefaultMoves lists the legacy locations: documents and the screenshots
// directory kept directly under the application root.
func DefaultMoves(cfg *config.Config) []Move {
	root := cfg.RootPath()
	data := cfg.DataPath()
	if filepath.Clean(root) == filepath.Clean(data) {
		return nil
	}

	var moves []Move
	for _, name := range []string{"clips.json", "sections.json", "tabs.json", "settings.json"} {
		moves = append(moves, Move{From: filepath.Join(root, name), To: filepath.Join(data, name)})
	}
	moves = append(moves, Move{From: filepath.Join(root, "screenshots"), To: filepath.Join(data, "screenshots"), Dir: true})
	return moves
}

// Run applies each move independently. A failure is logged and recorded;
// it never stops the remaining moves.
func Run(ctx context.Context, moves []Move) Report {
	var report Report
	for _, m := range moves {
		if ctx.Err() != nil {
			break
		}
		res := apply(m)
		switch res.Outcome {
		case Moved:
			slog.Info("migrate: relocated legacy data", "from", m.From, "to", m.To)
		case Failed:
			slog.Warn("migrate: relocation failed", "from", m.From, "to", m.To, "error", res.Err)
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func apply(m Move) Result {
	info, err := os.Stat(m.From)
	if errors.Is(err, os.ErrNotExist) {
		return Result{Move: m, Outcome: SkippedAbsent}
	}
	if err != nil {
		return Result{Move: m, Outcome: Failed, Err: fmt.Errorf("stat %s: %w", m.From, err)}
	}
	if info.IsDir() != m.Dir {
		return Result{Move: m, Outcome: Failed, Err: fmt.Errorf("%s: unexpected file type", m.From)}
	}

	if _, err := os.Lstat(m.To); err == nil {
		return Result{Move: m, Outcome: SkippedExists}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Result{Move: m, Outcome: Failed, Err: fmt.Errorf("stat %s: %w", m.To, err)}
	}

	if err := os.MkdirAll(filepath.Dir(m.To), 0755); err != nil {
		return Result{Move: m, Outcome: Failed, Err: fmt.Errorf("create %s: %w", filepath.Dir(m.To), err)}
	}
	if err := os.Rename(m.From, m.To); err != nil {
		return Result{Move: m, Outcome: Failed, Err: fmt.Errorf("rename %s: %w", m.From, err)}
	}
	return Result{Move: m, Outcome: Moved}
}
