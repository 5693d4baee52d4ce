package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cliptray/cliptray/internal/search"
	"github.com/cliptray/cliptray/internal/store"
)

func clipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "View and manage clips",
	}
	cmd.AddCommand(clipsListCmd())
	cmd.AddCommand(clipsAddCmd())
	cmd.AddCommand(clipsDeleteCmd())
	cmd.AddCommand(clipsMoveCmd())
	return cmd
}

func clipsListCmd() *cobra.Command {
	var (
		out      outputFlags
		section  string
		query    string
		tags     string
		sortMode string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clips, filtered and sorted like the app does",
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			clips := env.lib.Query(search.Criteria{
				SectionID:  section,
				SearchText: query,
				TagFilter:  tags,
			}, sortMode, nil)
			if out.structured(os.Stdout, clips) {
				return
			}

			t := newTable(os.Stdout, "ID", "SECTION", "TITLE", "TAGS", "CAPTURED")
			for _, c := range clips {
				title := c.Title
				if title == "" {
					title = c.Text
				}
				t.row(c.ID, c.SectionID, title, strings.Join(c.Tags, ", "), formatMillis(c.CapturedAt))
			}
			t.flush()
			fmt.Printf("\n%d clip(s)\n", len(clips))
		},
	}
	out.register(cmd)
	cmd.Flags().StringVarP(&section, "section", "s", store.AllSectionsID, "section id, or \"all\"")
	cmd.Flags().StringVarP(&query, "search", "q", "", "case-insensitive text search")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma-separated tags; clips must carry all of them")
	cmd.Flags().StringVar(&sortMode, "sort", search.SortDefault, "default, newest, oldest or title")
	return cmd
}

func clipsAddCmd() *cobra.Command {
	var (
		title     string
		text      string
		notes     string
		tags      string
		section   string
		sourceURL string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a clip (text may be piped on stdin)",
		Run: func(cmd *cobra.Command, args []string) {
			if text == "-" || (text == "" && !term.IsTerminal(int(os.Stdin.Fd()))) {
				data, err := io.ReadAll(os.Stdin)
				exitOnError(err)
				text = string(data)
			}

			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			raw := map[string]any{
				"title":     title,
				"text":      text,
				"notes":     notes,
				"tags":      tags,
				"sectionId": section,
			}
			if sourceURL != "" {
				raw["sourceUrl"] = sourceURL
			}
			clip, _, err := env.lib.Ingest(cliContext(cmd.Context()), raw)
			exitOnError(err)
			fmt.Printf("Added clip %s to %s\n", clip.ID, clip.SectionID)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "clip title")
	cmd.Flags().StringVar(&text, "text", "", `clip text ("-" reads stdin)`)
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma-separated tags")
	cmd.Flags().StringVarP(&section, "section", "s", "", "section id (default inbox)")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "page the clip came from")
	return cmd
}

func clipsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete clips (clips in locked sections are refused)",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
				ok, err := promptConfirm(fmt.Sprintf("Delete %d clip(s)?", len(args)), false)
				if err != nil || !ok {
					fmt.Println("Cancelled.")
					return
				}
			}

			removed, err := env.lib.DeleteClips(cliContext(cmd.Context()), args)
			for _, id := range removed {
				fmt.Printf("Deleted clip: %s\n", id)
			}
			exitOnError(err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func clipsMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <section-id> <clip-id>...",
		Short: "Move clips to another section",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			moved, err := env.lib.MoveClips(cliContext(cmd.Context()), args[1:], args[0])
			if len(moved) > 0 {
				fmt.Printf("Moved %d clip(s) to %s\n", len(moved), args[0])
			}
			exitOnError(err)
		},
	}
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
