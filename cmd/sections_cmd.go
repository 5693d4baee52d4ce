package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/store"
)

func sectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sections",
		Aliases: []string{"tabs"},
		Short:   "View and manage sections",
	}
	cmd.AddCommand(sectionsListCmd())
	cmd.AddCommand(sectionsCreateCmd())
	cmd.AddCommand(sectionsRenameCmd())
	cmd.AddCommand(sectionsDeleteCmd())
	cmd.AddCommand(sectionsLockCmd(true))
	cmd.AddCommand(sectionsLockCmd(false))
	cmd.AddCommand(sectionsMoveCmd())
	cmd.AddCommand(sectionsExportPathCmd())
	cmd.AddCommand(sectionsSchemaCmd())
	return cmd
}

func sectionsListCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sections in display order",
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			sections := env.lib.Sections()
			if out.structured(os.Stdout, sections) {
				return
			}

			counts := make(map[string]int)
			for _, c := range env.lib.Clips() {
				counts[c.SectionID]++
			}
			active := env.lib.ListAll().ActiveTabID

			t := newTable(os.Stdout, "ID", "LABEL", "CLIPS", "LOCKED", "EXPORT PATH")
			for _, s := range sections {
				id := s.ID
				if id == active {
					id += " *"
				}
				locked := ""
				if s.Locked {
					locked = "yes"
				}
				t.row(id, s.Label, strconv.Itoa(counts[s.ID]), locked, s.ExportPath)
			}
			t.flush()
		},
	}
	out.register(cmd)
	return cmd
}

func sectionsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a section (its id is derived from the name)",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			sec, err := env.lib.CreateSection(cliContext(cmd.Context()), strings.Join(args, " "))
			exitOnError(err)
			fmt.Printf("Created section %q (id: %s)\n", sec.Label, sec.ID)
		},
	}
}

func sectionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Change a section's label (the id stays the same)",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			sec, err := env.lib.RenameSection(cliContext(cmd.Context()), args[0], strings.Join(args[1:], " "))
			exitOnError(err)
			fmt.Printf("Renamed %s to %q\n", sec.ID, sec.Label)
		},
	}
}

func sectionsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a section (its clips are kept)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
				ok, err := promptConfirm(fmt.Sprintf("Delete section %s?", args[0]), false)
				if err != nil || !ok {
					fmt.Println("Cancelled.")
					return
				}
			}
			exitOnError(env.lib.DeleteSection(cliContext(cmd.Context()), args[0]))
			fmt.Printf("Deleted section: %s\n", args[0])
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func sectionsLockCmd(lock bool) *cobra.Command {
	use, short, done := "lock <id>", "Protect a section and its clips from deletion", "Locked"
	if !lock {
		use, short, done = "unlock <id>", "Allow a section and its clips to be deleted", "Unlocked"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			sec, err := env.lib.SetLocked(cliContext(cmd.Context()), args[0], lock)
			exitOnError(err)
			fmt.Printf("%s section: %s\n", done, sec.ID)
		},
	}
}

func sectionsMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> [before-id]",
		Short: "Move a section before another one (or to the end)",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			warnIfServerRunning(env.cfg)

			target := ""
			if len(args) == 2 {
				target = args[1]
			}
			sections, err := env.lib.ReorderSections(cliContext(cmd.Context()), args[0], target)
			exitOnError(err)

			ids := make([]string, len(sections))
			for i, s := range sections {
				ids[i] = s.ID
			}
			fmt.Printf("Order: %s\n", strings.Join(ids, ", "))
		},
	}
}

func sectionsExportPathCmd() *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "export-path <id> [path]",
		Short: "Set the folder (or s3://bucket/prefix) clips are mirrored to",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())

			if len(args) == 1 && !clear {
				sec, ok := env.lib.Section(args[0])
				if !ok {
					exitOnError(fmt.Errorf("section %q: %w", args[0], store.ErrNotFound))
				}
				fmt.Println(sec.ExportPath)
				return
			}

			warnIfServerRunning(env.cfg)
			path := ""
			if !clear {
				path = args[1]
			}
			sec, err := env.lib.SetExportPath(cliContext(cmd.Context()), args[0], path)
			exitOnError(err)
			if sec.ExportPath == "" {
				fmt.Printf("Mirroring disabled for %s\n", sec.ID)
				return
			}
			fmt.Printf("Mirroring %s to %s\n", sec.ID, sec.ExportPath)
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "disable mirroring for the section")
	return cmd
}

func sectionsSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <id> [field...]",
		Short: "Choose which clip fields a section shows (" + strings.Join(normalize.SchemaFields, ", ") + ")",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := mustOpenApp(cmd.Context())
			sec, ok := env.lib.Section(args[0])
			if !ok {
				exitOnError(fmt.Errorf("section %q: %w", args[0], store.ErrNotFound))
			}

			fields := args[1:]
			if len(fields) == 0 {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					fmt.Println(strings.Join(sec.Schema, ", "))
					return
				}
				options := make([]SelectOption[string], len(normalize.SchemaFields))
				for i, f := range normalize.SchemaFields {
					options[i] = SelectOption[string]{Label: f, Value: f}
				}
				picked, err := promptMultiSelect("Visible fields", "Fields shown in the clip editor for "+sec.Label, options, sec.Schema)
				if err != nil {
					fmt.Println("Cancelled.")
					return
				}
				fields = picked
			}

			warnIfServerRunning(env.cfg)
			updated, err := env.lib.SetSchema(cliContext(cmd.Context()), sec.ID, fields)
			exitOnError(err)
			fmt.Printf("Schema for %s: %s\n", updated.ID, strings.Join(updated.Schema, ", "))
		},
	}
}
