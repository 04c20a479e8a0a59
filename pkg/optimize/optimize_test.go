package optimize

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/klaro/pkg/catalogue"
)

func TestNewRequest(t *testing.T) {
	reg := catalogue.MustDefault()
	ps, err := reg.Select([]int{1, 9})
	require.NoError(t, err)

	req, err := NewRequest(ps, make([]float64, catalogue.GoalCount))
	require.NoError(t, err)
	require.Len(t, req.Projects, 2)
	assert.Equal(t, "Large Solar Park", req.Projects[0].Name)
	assert.Equal(t, 4000.0, req.Projects[0].Cost())
	assert.Equal(t, 2.0, req.Projects[1].CO2())
}

func TestNewRequestRejectsEmptySelection(t *testing.T) {
	_, err := NewRequest(nil, make([]float64, catalogue.GoalCount))
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestRequestCheckGoals(t *testing.T) {
	req := &Request{
		Projects: []ProjectInput{{Name: "a", Data: make([]float64, catalogue.MetricCount)}},
		Goals:    []float64{1, 2, 3},
	}
	err := req.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.Contains(t, err.Error(), "3 goals")
}

func TestRequestSerializationIsStable(t *testing.T) {
	req := &Request{
		Projects: []ProjectInput{{Name: "Wind Farm", Data: []float64{3800, 55, 0, 0, 0, 0, 0, 0, 0, 0, 0}}},
		Goals:    []float64{1000, 35, 25, 20, 60, 45, 80, 12, 6, 10},
	}
	b, err := json.Marshal(req)
	require.NoError(t, err)
	want := `{"projects":[{"name":"Wind Farm","data":[3800,55,0,0,0,0,0,0,0,0,0]}],"goals":[1000,35,25,20,60,45,80,12,6,10]}`
	assert.Equal(t, want, string(b))
}

func TestParseDocumentAliases(t *testing.T) {
	raw := `{
	  "minimization": {
	    "z": [5380],
	    "Breakdown": [["Large Solar Park", 1, 4000], {"name": "Stove", "units": "0", "cost": 0}],
	    "iterations": [
	      {"ph": "Phase 1", "st": 2, "tableau_body": [[1, 2.5, null], "bad"], "rowNames": ["CO2"], "colNames": ["x1", "x2", "RHS"]},
	      {"phase": ["Phase 2"], "table": [[0]], "rowname": ["Z"], "col_name": ["RHS"]},
	      {"phase": "Phase 2"}
	    ]
	  },
	  "error_message": "nothing"
	}`
	doc, err := ParseDocument([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, doc.Minimization)

	m := doc.Minimization
	assert.Equal(t, N(5380), m.Z)
	assert.Equal(t, []BreakdownItem{
		{Name: "Large Solar Park", Units: 1, Cost: 4000},
		{Name: "Stove", Units: 0, Cost: 0},
	}, m.Breakdown)
	require.Len(t, m.Iterations, 3)

	first := m.Iterations[0]
	assert.Equal(t, "Phase 1", first.Phase)
	assert.Equal(t, "2", first.Step)
	assert.Equal(t, []string{"CO2"}, first.RowNames)
	assert.Equal(t, []string{"x1", "x2", "RHS"}, first.ColNames)
	want := [][]Number{{N(1), N(2.5), {}}, nil}
	if diff := cmp.Diff(want, first.Tableau); diff != "" {
		t.Errorf("tableau mismatch (-want +got):\n%s", diff)
	}

	second := m.Iterations[1]
	assert.Equal(t, "Phase 2", second.Phase)
	assert.Equal(t, []string{"Z"}, second.RowNames)
	assert.True(t, second.HasTableau())
	assert.False(t, m.Iterations[2].HasTableau())

	assert.Equal(t, "nothing", doc.Error)
}

func TestParseDocumentFallbackShape(t *testing.T) {
	raw := `{
	  "orientation": "constraints_as_rows",
	  "row_names": ["CO2", "Cost"],
	  "col_names": ["A", "RHS"],
	  "tableau": [[60, 0], [4000, 0]],
	  "diagnostics": ["solver failed"],
	  "result": {"timestamp": "2026-01-02T03:04:05Z", "ranking": [{"name": "A", "cost": 1, "co2": 0, "ratio": null}],
	             "recommended": {"name": "A", "cost": 1, "co2": 0, "ratio": null}, "selection": ["A"],
	             "totals": {"totalCost": 1, "totalCO2": 0}}
	}`
	doc, err := ParseDocument([]byte(raw))
	require.NoError(t, err)
	assert.Nil(t, doc.Minimization)
	require.NotNil(t, doc.Result)
	assert.True(t, math.IsInf(doc.Result.Ranking[0].Ratio, 1))
	assert.True(t, math.IsInf(doc.Result.Recommended.Ratio, 1))
	assert.Equal(t, OrientationConstraintsAsRows, doc.Orientation)
	assert.Equal(t, []string{"CO2", "Cost"}, doc.RowNames)
	assert.Len(t, doc.Tableau, 2)
	assert.Equal(t, []string{"solver failed"}, doc.Diagnostics)
}

func TestParseDocumentMalformed(t *testing.T) {
	_, err := ParseDocument([]byte("{not json"))
	assert.Error(t, err)
}

func TestSimpleResultErrorShape(t *testing.T) {
	b, err := json.Marshal(SimpleResult{Error: "boom"})
	require.NoError(t, err)
	assert.Equal(t, `{"error":"boom"}`, string(b))
}

func TestInfiniteRatioWritesNull(t *testing.T) {
	b, err := json.Marshal(RankedProject{Name: "x", Cost: 5, Ratio: math.Inf(1)})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"ratio":null`), string(b))
}

func TestEmptyDocument(t *testing.T) {
	var d *Document
	assert.True(t, d.Empty())
	assert.True(t, (&Document{RunID: "x", Diagnostics: []string{"d"}}).Empty())
	assert.False(t, (&Document{Error: "infeasible"}).Empty())
}

func TestParseDocumentKeepsRowsWithBadCells(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"tableau": [[1, true, 3], [4, [5, 6], "7"], "x"]}`))
	require.NoError(t, err)
	require.Len(t, doc.Tableau, 3)

	want := [][]Number{
		{N(1), {}, N(3)},
		{N(4), {}, N(7)},
		nil,
	}
	if diff := cmp.Diff(want, doc.Tableau); diff != "" {
		t.Errorf("tableau mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectLabel(t *testing.T) {
	assert.Equal(t, "Solar", ProjectInput{Name: "Solar"}.Label())
	assert.Equal(t, UnnamedProject, ProjectInput{}.Label())
}
