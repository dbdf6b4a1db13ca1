package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"qdc/internal/compile"
	"qdc/internal/format"
)

var schemaMarkdown bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the compiled dataset's column contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := format.ASCII
		if schemaMarkdown {
			mode = format.Markdown
		}

		tb := format.NewTable(mode)
		tb.Header("Source", "Target", "Kind", "Missing", "Vocabulary")
		tb.Row(compile.KeySource, compile.KeyTarget, "identity", "", "")
		for _, c := range compile.Columns() {
			sentinel := ""
			if c.Kind != compile.Passthrough {
				sentinel = fmt.Sprintf("%d", c.Sentinel)
			}
			tb.Row(c.Source, c.Target, c.Kind.String(), sentinel, vocabString(c))
		}
		tb.Columns(format.ColumnConfig{Number: 5, MaxWidth: 60})

		fmt.Fprintln(cmd.OutOrStdout(), tb.String())
		return nil
	},
}

// vocabString renders a column's vocabulary sorted by code so the
// output is stable across runs.
func vocabString(c compile.Column) string {
	vocab := c.Vocabulary
	if c.Kind == compile.YesNo {
		vocab = map[string]int{"Yes": 1, "No": 0}
	}
	if len(vocab) == 0 {
		return ""
	}

	names := make([]string, 0, len(vocab))
	for name := range vocab {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if vocab[names[i]] != vocab[names[j]] {
			return vocab[names[i]] < vocab[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, len(names))
	for i, name := range names {
		if c.Kind == compile.BitField {
			parts[i] = fmt.Sprintf("%s=bit%d", name, vocab[name])
		} else {
			parts[i] = fmt.Sprintf("%s=%d", name, vocab[name])
		}
	}
	return strings.Join(parts, ", ")
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaMarkdown, "markdown", false, "Render as a Markdown table")
}
