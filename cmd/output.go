package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// outputFlags selects how list commands print.
type outputFlags struct {
	json bool
	yaml bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&o.yaml, "yaml", false, "output as YAML")
}

// structured prints v as JSON or YAML when requested and reports whether it
// did; otherwise the caller prints a table.
func (o *outputFlags) structured(w io.Writer, v any) bool {
	switch {
	case o.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return true
	case o.yaml:
		if err := writeYAML(w, v); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return true
	}
	return false
}

// writeYAML round-trips v through JSON so that the json tags name the keys.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}

// table writes aligned columns. Cells are flattened to one line and cut to
// maxCell display columns.
type table struct {
	tw      *tabwriter.Writer
	maxCell int
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0), maxCell: 48}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...string) {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = truncateCell(c, t.maxCell)
	}
	fmt.Fprintln(t.tw, strings.Join(out, "\t"))
}

func (t *table) flush() { t.tw.Flush() }

// truncateCell collapses whitespace and cuts s to width display columns,
// counting wide (CJK, emoji) runes as two.
func truncateCell(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	return runewidth.Truncate(s, width, "…")
}
