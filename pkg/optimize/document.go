package optimize

import (
	"encoding/json"
	"math"
	"time"
)

// OrientationConstraintsAsRows labels a tableau whose rows are constraints
// (pollutants) followed by the objective row.
const OrientationConstraintsAsRows = "constraints_as_rows"

// Document is the persisted result of the latest run. Minimization is the
// authoritative solver output; Result is the fallback summary, present next to
// Minimization or alone when the solver failed; Error is set when neither could be
// produced. The whole document is replaced on every run.
type Document struct {
	RunID        string        `json:"run_id,omitempty"`
	Minimization *Minimization `json:"minimization,omitempty"`
	Result       *SimpleResult `json:"result,omitempty"`
	Error        string        `json:"error,omitempty"`

	// Bare tableau written by the fallback path.
	Orientation string     `json:"orientation,omitempty"`
	RowNames    []string   `json:"row_names,omitempty"`
	ColNames    []string   `json:"col_names,omitempty"`
	Tableau     [][]Number `json:"tableau,omitempty"`

	Diagnostics []string `json:"diagnostics,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// Empty reports whether the document carries nothing displayable.
func (d *Document) Empty() bool {
	return d == nil || (d.Minimization == nil && d.Result == nil && d.Error == "" && len(d.Tableau) == 0)
}

// Minimization is the authoritative LP output.
type Minimization struct {
	Z          Number          `json:"Z"`
	Breakdown  []BreakdownItem `json:"breakdown"`
	Iterations []Iteration     `json:"iterations"`
}

// BreakdownItem is one project's contribution to the optimal solution.
type BreakdownItem struct {
	Name  string  `json:"name"`
	Units float64 `json:"units"`
	Cost  float64 `json:"cost"`
}

// Iteration is one solver step. Each tableau row ends with its right-hand side.
type Iteration struct {
	Phase    string     `json:"phase,omitempty"`
	Step     string     `json:"step,omitempty"`
	Tableau  [][]Number `json:"tableau,omitempty"`
	RowNames []string   `json:"row_names,omitempty"`
	ColNames []string   `json:"col_names,omitempty"`
}

// HasTableau reports whether the iteration carries any tableau data.
func (it Iteration) HasTableau() bool { return it.Tableau != nil }

// SimpleResult is the fallback heuristic's summary. When Error is set the result
// is serialized as {"error": ...} alone.
type SimpleResult struct {
	Timestamp   time.Time       `json:"timestamp"`
	Ranking     []RankedProject `json:"ranking"`
	Recommended *RankedProject  `json:"recommended"`
	Selection   []string        `json:"selection"`
	Totals      Totals          `json:"totals"`
	Error       string          `json:"error,omitempty"`
}

// Totals mirror the recommended selection's cost and CO2.
type Totals struct {
	TotalCost float64 `json:"totalCost"`
	TotalCO2  float64 `json:"totalCO2"`
}

// RankedProject is one ranking entry. Ratio is +Inf for projects with no CO2
// reduction and is written as null.
type RankedProject struct {
	Name  string  `json:"name"`
	Cost  float64 `json:"cost"`
	CO2   float64 `json:"co2"`
	Ratio float64 `json:"ratio"`
}

type simpleResultJSON SimpleResult

func (r SimpleResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	if r.Ranking == nil {
		r.Ranking = []RankedProject{}
	}
	if r.Selection == nil {
		r.Selection = []string{}
	}
	return json.Marshal(simpleResultJSON(r))
}

type rankedProjectJSON struct {
	Name  string  `json:"name"`
	Cost  float64 `json:"cost"`
	CO2   float64 `json:"co2"`
	Ratio *Number `json:"ratio"`
}

func (p RankedProject) MarshalJSON() ([]byte, error) {
	ratio := N(p.Ratio)
	return json.Marshal(rankedProjectJSON{Name: p.Name, Cost: p.Cost, CO2: p.CO2, Ratio: &ratio})
}

func (p *RankedProject) UnmarshalJSON(data []byte) error {
	var raw rankedProjectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = RankedProject{Name: raw.Name, Cost: raw.Cost, CO2: raw.CO2, Ratio: math.Inf(1)}
	if raw.Ratio != nil && raw.Ratio.Valid {
		p.Ratio = raw.Ratio.Value
	}
	return nil
}
