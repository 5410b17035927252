package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
)

// Table lines up several stats of the same kind by ID, one column each.
type Table struct {
	Kind    Kind
	Columns []string
	IDs     []ID
	Rows    [][]any
}

// NewTable joins stats on the IDs of the first one. IDs missing from a later
// stat get a nil cell.
func NewTable(stats ...*Stat) (*Table, error) {
	if len(stats) == 0 {
		return nil, ErrEmpty
	}
	kind := stats[0].Kind
	for _, s := range stats[1:] {
		if s.Kind != kind {
			return nil, fmt.Errorf("%w: %s and %s", ErrKindMismatch, stats[0].Name, s.Name)
		}
	}
	t := &Table{
		Kind:    kind,
		Columns: lo.Map(stats, func(s *Stat, _ int) string { return s.Name }),
		IDs:     stats[0].IDs(),
	}
	maps := lo.Map(stats, func(s *Stat, _ int) map[ID]any { return s.AsMap() })
	for _, id := range t.IDs {
		row := make([]any, len(stats))
		for j, m := range maps {
			row[j] = m[id]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV writes a header row (the kind, then column names) followed by one
// row per ID.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{t.Kind.String()}, t.Columns...)); err != nil {
		return err
	}
	for i, id := range t.IDs {
		rec := make([]string, 0, len(t.Columns)+1)
		rec = append(rec, id)
		for _, v := range t.Rows[i] {
			rec = append(rec, formatCell(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	idStyle     = cellStyle.Foreground(lipgloss.Color("8"))
)

// Render draws the table for the terminal. limit caps the number of rows
// shown; zero shows all.
func (t *Table) Render(limit int) string {
	rows := make([][]string, 0, len(t.IDs))
	for i, id := range t.IDs {
		if limit > 0 && i >= limit {
			break
		}
		row := []string{id}
		for _, v := range t.Rows[i] {
			row = append(row, formatCell(v))
		}
		rows = append(rows, row)
	}
	tb := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(append([]string{t.Kind.String()}, t.Columns...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return idStyle
			}
			return cellStyle
		})
	out := tb.String()
	if limit > 0 && len(t.IDs) > limit {
		out += fmt.Sprintf("\n… %d more rows", len(t.IDs)-limit)
	}
	return out
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', 6, 32)
	}
	return fmt.Sprint(v)
}
