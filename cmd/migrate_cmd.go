package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cliptray/cliptray/internal/migrate"
)

func migrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move data files from the old application root into the data directory",
		Long: `Older releases kept clips.json, sections.json, tabs.json, settings.json and
screenshots/ directly in the application root. This runs automatically on every
start; the command shows what happens and lets you run it on demand.
Existing files in the data directory are never overwritten.`,
		Run: func(cmd *cobra.Command, args []string) {
			_, cfg := loadConfig()
			moves := migrate.DefaultMoves(cfg)
			if len(moves) == 0 {
				fmt.Println("Root and data directory are the same; nothing to migrate.")
				return
			}

			if dryRun {
				t := newTable(os.Stdout, "FROM", "TO")
				for _, m := range moves {
					if _, err := os.Stat(m.From); err == nil {
						t.row(m.From, m.To)
					}
				}
				t.flush()
				return
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			report := migrate.Run(ctx, moves)

			t := newTable(os.Stdout, "FROM", "TO", "RESULT")
			for _, r := range report.Results {
				t.row(r.Move.From, r.Move.To, string(r.Outcome))
			}
			t.flush()
			fmt.Printf("\n%d moved\n", report.Moved())
			exitOnError(report.Err())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list legacy files that would move")
	return cmd
}
