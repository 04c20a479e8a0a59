package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the terminal renderer.
type Styles struct {
	Title  lipgloss.Style
	Bold   lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Notice lipgloss.Style
}

// DefaultStyles returns the colour scheme for interactive terminals.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Bold:   lipgloss.NewStyle().Bold(true),
		Body:   lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Notice: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// PlainStyles renders without colour or emphasis.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Title: s, Bold: s, Body: s, Muted: s, Error: s, Notice: s}
}

// Table is a titled grid of pre-formatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render draws the table. An empty table renders as nothing.
func (t *Table) Render(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	cols := len(t.Headers)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	header := styles.Bold.Padding(0, 1)
	cell := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("|")

	writeRow := func(cells []string, style lipgloss.Style) {
		for i := range widths {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(v))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers, header)
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", max(total, 0))))
	sb.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row, cell)
	}
	return sb.String()
}

// Terminal writes views as text.
type Terminal struct {
	Out    io.Writer
	Styles Styles
}

// Write renders v with iteration page p. Pages outside the range are reported,
// not fatal.
func (t *Terminal) Write(v View, p int) error {
	var sb strings.Builder
	st := t.Styles

	if v.RunID != "" {
		sb.WriteString(st.Muted.Render("run " + v.RunID))
		sb.WriteString("\n")
	}
	if v.Advice != nil {
		sb.WriteString(st.Error.Render(v.Advice.Title))
		sb.WriteString("\n")
		sb.WriteString(v.Advice.Message)
		sb.WriteString("\n\n")
	}

	switch v.State {
	case StateError:
		sb.WriteString(st.Error.Render(v.Message))
		sb.WriteString("\n")
	case StateNoResults:
		sb.WriteString(v.Message)
		sb.WriteString("\n")
	case StateSimple:
		writeRecommendation(&sb, st, v.Recommendation)
	case StateMinimization, StateRawTableau:
		if v.Cost != "" {
			sb.WriteString(st.Bold.Render(v.Cost))
			sb.WriteString("\n\n")
		}
		if len(v.Breakdown) > 0 {
			bt := Table{Title: "Breakdown", Headers: []string{"Project", "Units", "Cost"}}
			for _, b := range v.Breakdown {
				bt.AddRow(Sanitize(b.Name), FmtFloat(b.Units), FmtFloat(b.Cost))
			}
			sb.WriteString(bt.Render(st))
			sb.WriteString("\n")
		}
		if err := writePage(&sb, st, v, p); err != nil {
			sb.WriteString(st.Notice.Render(err.Error()))
			sb.WriteString("\n")
		}
	}

	for _, d := range v.Diagnostics {
		sb.WriteString(st.Notice.Render("note: " + d))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(t.Out, sb.String())
	return err
}

func writeRecommendation(sb *strings.Builder, st Styles, r *Recommendation) {
	if r == nil {
		return
	}
	rt := Table{Title: "Recommended project", Headers: []string{"Project", "Total cost", "Total CO2"}}
	rt.AddRow(r.Name, r.TotalCost, r.TotalCO2)
	sb.WriteString(rt.Render(st))
}

func writePage(sb *strings.Builder, st Styles, v View, p int) error {
	if len(v.Iterations) == 0 {
		return nil
	}
	page, err := v.Page(p)
	if err != nil {
		return err
	}
	for _, it := range page.Items {
		sb.WriteString(st.Title.Render(it.Heading))
		sb.WriteString("\n")
		if it.NoData {
			sb.WriteString(st.Muted.Render(NoTableauMessage))
			sb.WriteString("\n\n")
			continue
		}
		tt := Table{Headers: append([]string{""}, it.Columns...)}
		for _, r := range it.Rows {
			tt.AddRow(append([]string{r.Name}, r.Cells...)...)
		}
		sb.WriteString(tt.Render(st))
		if len(it.Basic) > 0 {
			bs := Table{Title: "Basic solution", Headers: []string{"Variable", "Value"}}
			for _, b := range it.Basic {
				bs.AddRow(b.Name, b.Cells[0])
			}
			sb.WriteString(bs.Render(st))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(st.Muted.Render(fmt.Sprintf("page %d of %d", page.Index+1, page.TotalPages)))
	sb.WriteString("\n")
	return nil
}
