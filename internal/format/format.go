// Package format renders terminal tables for the schema and status
// subcommands, in either fixed-width ASCII or GitHub-flavoured Markdown.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ColumnConfig controls per-column formatting.
type ColumnConfig struct {
	Number   int         // 1-based column index
	Align    ColumnAlign // horizontal alignment
	MaxWidth int         // wrap content beyond this width (0 = unlimited)
}

// TableBuilder accumulates a table once and renders it in the Mode set
// at creation.
type TableBuilder interface {
	// Header sets the column headers.
	Header(cols ...string)
	// Row appends a data row. Values are converted via fmt Sprint.
	Row(vals ...any)
	// Columns applies per-column configuration.
	Columns(cfgs ...ColumnConfig)
	// String renders the table in the configured Mode.
	String() string
}

// NewTable returns a TableBuilder that renders in the given Mode.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &prettyAdapter{writer: w, mode: m}
}

// BoolMark returns "yes" for true and "-" for false, for artifact
// presence columns.
func BoolMark(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}

// prettyAdapter wraps go-pretty/v6/table.Writer behind the TableBuilder interface.
type prettyAdapter struct {
	writer table.Writer
	mode   Mode
}

func (a *prettyAdapter) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	a.writer.AppendHeader(row)
}

func (a *prettyAdapter) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	a.writer.AppendRow(row)
}

func (a *prettyAdapter) Columns(cfgs ...ColumnConfig) {
	goCfgs := make([]table.ColumnConfig, len(cfgs))
	for i, c := range cfgs {
		goCfgs[i] = table.ColumnConfig{
			Number:   c.Number,
			Align:    toTextAlign(c.Align),
			WidthMax: c.MaxWidth,
		}
	}
	a.writer.SetColumnConfigs(goCfgs)
}

func (a *prettyAdapter) String() string {
	if a.mode == Markdown {
		return a.writer.RenderMarkdown()
	}
	return a.writer.Render()
}

func toTextAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
