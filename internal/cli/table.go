package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// Table writes aligned columns: a styled header, a rule, then rows.
type Table struct {
	w     *tabwriter.Writer
	err   error
	width int
}

// NewTable starts a table with the given headers.
func NewTable(w io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0), width: len(headers)}

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = headerStyle.Render(h)
		rules[i] = strings.Repeat("─", max(utf8.RuneCountInString(h), 4))
	}
	t.write(styled)
	t.write(rules)
	return t
}

// Row appends a row; missing cells are left blank.
func (t *Table) Row(cells ...string) {
	for len(cells) < t.width {
		cells = append(cells, "")
	}
	t.write(cells)
}

func (t *Table) write(cells []string) {
	if t.err != nil {
		return
	}
	if _, err := fmt.Fprintln(t.w, strings.Join(cells, "\t")); err != nil {
		t.err = fmt.Errorf("failed to write table row: %w", err)
	}
}

// Flush writes the table out and reports the first error.
func (t *Table) Flush() error {
	if t.err != nil {
		return t.err
	}
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table writer: %w", err)
	}
	return nil
}
