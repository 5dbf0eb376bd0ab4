// Package format renders the CLI's tabular output (catalog listings,
// plan layers, run status) on top of go-pretty.
package format

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Style selects the rendering of a table.
type Style int

const (
	Terminal Style = iota // box-drawing table for interactive use
	Markdown              // GitHub-flavoured table for report embedding
)

// Table collects rows and renders them in one of the supported styles.
type Table struct {
	style  Style
	writer table.Writer
	cols   []table.ColumnConfig
}

// NewTable returns an empty table in the given style.
func NewTable(style Style) *Table {
	w := table.NewWriter()
	if style == Terminal {
		w.SetStyle(table.StyleLight)
	}
	return &Table{style: style, writer: w}
}

// Header sets the column headers.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.writer.AppendHeader(row)
}

// Row appends one data row.
func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendRow(row)
}

// Footer appends a totals row.
func (t *Table) Footer(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendFooter(row)
}

// WrapColumn limits a 1-based column to the given width, wrapping longer
// content.
func (t *Table) WrapColumn(number, width int) {
	t.cols = append(t.cols, table.ColumnConfig{Number: number, WidthMax: width, Align: text.AlignLeft})
	t.writer.SetColumnConfigs(t.cols)
}

// String renders the table.
func (t *Table) String() string {
	if t.style == Markdown {
		return t.writer.RenderMarkdown()
	}
	return t.writer.Render()
}

// Tokens renders a token count with a K/M suffix.
func Tokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000.0)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", float64(n)/1000.0)
	}
	return fmt.Sprintf("%d", n)
}

// Duration renders a duration as "Xm Ys" or "Ys".
func Duration(d time.Duration) string {
	s := int(d.Seconds())
	if s >= 60 {
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}

// Truncate shortens s to max characters, appending "..." when cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
