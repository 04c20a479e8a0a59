package tableau

import (
	"fmt"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// Variable is one entry of a basic solution: a row's name and its RHS value.
type Variable struct {
	Name  string
	Value optimize.Number
}

// BasicSolution reads the basic solution off an iteration tableau: each row's
// name paired with its last column. Rows without cells are skipped; missing row
// names fall back to r1, r2, ...
func BasicSolution(it optimize.Iteration) []Variable {
	out := make([]Variable, 0, len(it.Tableau))
	for r, cells := range it.Tableau {
		if len(cells) == 0 {
			continue
		}
		out = append(out, Variable{
			Name:  RowName(it.RowNames, r),
			Value: cells[len(cells)-1],
		})
	}
	return out
}

// RowName returns names[i], or a synthetic "r<i+1>" when absent.
func RowName(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("r%d", i+1)
}

// ColNames returns names extended with synthetic "c<k>" headers up to the widest
// row, so every cell including the RHS has a column. Blank names are filled the
// same way.
func ColNames(names []string, rows [][]optimize.Number) []string {
	width := len(names)
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return nil
	}
	out := make([]string, width)
	for i := range out {
		if i < len(names) && names[i] != "" {
			out[i] = names[i]
			continue
		}
		out[i] = fmt.Sprintf("c%d", i+1)
	}
	return out
}
