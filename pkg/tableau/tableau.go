package tableau

import (
	"github.com/ChicagoDave/klaro/pkg/catalogue"
	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// RHS is the name of the right-hand-side column.
const RHS = "RHS"

// Objective is the name of the objective row of a transposed request.
const Objective = "Cost"

// Table is a named coefficient matrix. The last column of every row is the
// right-hand side.
type Table struct {
	Orientation string
	RowNames    []string
	ColNames    []string
	Rows        [][]optimize.Number
}

// Transpose lays a request out as constraints-as-rows: one row per pollutant, then
// the cost objective row; one column per project, then a zero RHS column.
func Transpose(req *optimize.Request) Table {
	var projects []optimize.ProjectInput
	if req != nil {
		projects = req.Projects
	}

	t := Table{
		Orientation: optimize.OrientationConstraintsAsRows,
		RowNames:    append(catalogue.Pollutants(), Objective),
		ColNames:    make([]string, 0, len(projects)+1),
	}
	for _, p := range projects {
		t.ColNames = append(t.ColNames, p.Label())
	}
	t.ColNames = append(t.ColNames, RHS)

	for col := catalogue.CO2; col < catalogue.MetricCount; col++ {
		t.Rows = append(t.Rows, row(projects, col))
	}
	t.Rows = append(t.Rows, row(projects, catalogue.Cost))
	return t
}

func row(projects []optimize.ProjectInput, metric int) []optimize.Number {
	out := make([]optimize.Number, 0, len(projects)+1)
	for _, p := range projects {
		if metric < len(p.Data) {
			out = append(out, optimize.N(p.Data[metric]))
		} else {
			out = append(out, optimize.Number{})
		}
	}
	return append(out, optimize.N(0))
}

// Apply copies the table into the bare tableau fields of a document.
func (t Table) Apply(doc *optimize.Document) {
	doc.Orientation = t.Orientation
	doc.RowNames = t.RowNames
	doc.ColNames = t.ColNames
	doc.Tableau = t.Rows
}
