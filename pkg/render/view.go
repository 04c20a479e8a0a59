// Package render turns a result document into what the user sees: the display
// mode, the filtered breakdown, paged iteration tableaus and formatted numbers.
package render

import (
	"fmt"

	"github.com/ChicagoDave/klaro/pkg/optimize"
	"github.com/ChicagoDave/klaro/pkg/tableau"
)

// State is the renderer's position in its fetch/display cycle.
type State string

const (
	StateFetching     State = "FETCHING"
	StateMinimization State = "SHOWING_MINIMIZATION"
	StateSimple       State = "SHOWING_SIMPLE"
	StateRawTableau   State = "SHOWING_RAW_TABLEAU"
	StateNoResults    State = "SHOWING_NO_RESULTS"
	StateError        State = "SHOWING_ERROR"
)

// Messages shown in the non-data states.
const (
	NoResultsMessage = "No results found."
	NoTableauMessage = "No tableau data for this iteration."
	errorPrefix      = "Error reading results: "
)

// View is a fully-decided rendering of one document.
type View struct {
	State   State  `json:"state"`
	RunID   string `json:"run_id,omitempty"`
	Message string `json:"message,omitempty"`

	Cost           string                   `json:"cost,omitempty"`
	Breakdown      []optimize.BreakdownItem `json:"breakdown,omitempty"`
	Recommendation *Recommendation          `json:"recommendation,omitempty"`
	Advice         *Advice                  `json:"advice,omitempty"`
	Diagnostics    []string                 `json:"diagnostics,omitempty"`

	// Iterations holds every iteration; use Page to select the visible ones.
	Iterations []optimize.Iteration `json:"-"`
}

// Recommendation summarises a fallback result.
type Recommendation struct {
	Name      string `json:"name"`
	TotalCost string `json:"total_cost"`
	TotalCO2  string `json:"total_co2"`
}

// IterationView is one rendered iteration block.
type IterationView struct {
	Heading string    `json:"heading"`
	Columns []string  `json:"columns,omitempty"`
	Rows    []RowView `json:"rows,omitempty"`
	Basic   []RowView `json:"basic_solution,omitempty"`
	NoData  bool      `json:"no_data,omitempty"`
}

// RowView is a named row of formatted cells.
type RowView struct {
	Name  string   `json:"name"`
	Cells []string `json:"cells"`
}

// PageView is the visible slice of iterations.
type PageView struct {
	Index      int             `json:"index"`
	TotalPages int             `json:"total_pages"`
	Items      []IterationView `json:"items"`
}

// Failed is the view for an unreadable document.
func Failed(err error) View {
	return View{State: StateError, Message: Sanitize(errorPrefix + err.Error())}
}

// NoResults is the view when no document exists yet.
func NoResults() View {
	return View{State: StateNoResults, Message: NoResultsMessage}
}

// Build chooses the display mode for a document: minimization, then the fallback
// result, then a bare tableau, then nothing.
func Build(doc *optimize.Document) View {
	if doc == nil {
		return NoResults()
	}
	v := View{RunID: doc.RunID, Diagnostics: sanitizeAll(doc.Diagnostics)}
	if doc.Error != "" {
		a := Guidance(doc.Error)
		v.Advice = &a
	}

	switch {
	case doc.Minimization != nil:
		m := doc.Minimization
		v.State = StateMinimization
		if m.Z.Valid {
			v.Cost = CostLine(m.Z.Value)
		}
		v.Breakdown = FilterBreakdown(m.Breakdown)
		v.Iterations = m.Iterations
	case doc.Result != nil:
		v.State = StateSimple
		v.Recommendation = recommend(doc.Result)
	case len(doc.Tableau) > 0:
		v.State = StateRawTableau
		v.Iterations = []optimize.Iteration{{
			Tableau:  doc.Tableau,
			RowNames: doc.RowNames,
			ColNames: doc.ColNames,
		}}
	default:
		v.State = StateNoResults
		v.Message = NoResultsMessage
	}
	return v
}

// FilterBreakdown drops rows whose units and cost are both zero, keeping the
// order of the rest.
func FilterBreakdown(items []optimize.BreakdownItem) []optimize.BreakdownItem {
	out := make([]optimize.BreakdownItem, 0, len(items))
	for _, it := range items {
		if it.Units == 0 && it.Cost == 0 {
			continue
		}
		out = append(out, it)
	}
	return out
}

// TotalPages is the number of iteration pages.
func (v View) TotalPages() int { return TotalPages(len(v.Iterations)) }

// Page renders iteration page p.
func (v View) Page(p int) (PageView, error) {
	its, err := Page(v.Iterations, p)
	if err != nil {
		return PageView{}, err
	}
	pv := PageView{Index: p, TotalPages: v.TotalPages(), Items: make([]IterationView, 0, len(its))}
	for k, it := range its {
		pv.Items = append(pv.Items, RenderIteration(p*PageSize+k, it))
	}
	return pv, nil
}

// RenderIteration formats iteration i (zero-based) for display.
func RenderIteration(i int, it optimize.Iteration) IterationView {
	iv := IterationView{Heading: Heading(i, it)}
	if !it.HasTableau() {
		iv.NoData = true
		return iv
	}
	iv.Columns = tableau.ColNames(it.ColNames, it.Tableau)
	for r, cells := range it.Tableau {
		if cells == nil {
			continue
		}
		row := RowView{Name: tableau.RowName(it.RowNames, r), Cells: make([]string, len(cells))}
		for c, n := range cells {
			row.Cells[c] = FmtNumber(n)
		}
		iv.Rows = append(iv.Rows, row)
	}
	for _, b := range tableau.BasicSolution(it) {
		iv.Basic = append(iv.Basic, RowView{Name: b.Name, Cells: []string{FmtNumber(b.Value)}})
	}
	return iv
}

// Heading joins the iteration number, phase and step, omitting missing parts.
func Heading(i int, it optimize.Iteration) string {
	h := fmt.Sprintf("Iteration %d", i+1)
	if it.Phase != "" {
		h += " — " + Sanitize(it.Phase)
	}
	if it.Step != "" {
		h += fmt.Sprintf(" (step %s)", Sanitize(it.Step))
	}
	return h
}

func recommend(r *optimize.SimpleResult) *Recommendation {
	rec := &Recommendation{Name: Placeholder, TotalCost: Placeholder, TotalCO2: Placeholder}
	if r.Error != "" {
		return rec
	}
	if r.Recommended != nil && r.Recommended.Name != "" {
		rec.Name = Sanitize(r.Recommended.Name)
	}
	rec.TotalCost = FmtFloat(r.Totals.TotalCost)
	rec.TotalCO2 = FmtFloat(r.Totals.TotalCO2)
	return rec
}

func sanitizeAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Sanitize(s)
	}
	return out
}
