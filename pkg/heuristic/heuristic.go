// Package heuristic is the deterministic fallback used when the LP solver cannot
// run. It ranks projects by cost per unit of CO2 reduced and recommends the single
// cheapest one. It is a display aid, not a substitute for the LP: it never
// recommends more than one project, whatever the goals.
package heuristic

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// Clock supplies the result timestamp.
type Clock func() time.Time

// Solve ranks the request's projects. It never panics: any internal failure comes
// back as a SimpleResult with only Error set.
func Solve(req *optimize.Request) optimize.SimpleResult {
	return SolveAt(req, time.Now)
}

// SolveAt is Solve with an explicit clock.
func SolveAt(req *optimize.Request, now Clock) (res optimize.SimpleResult) {
	defer func() {
		if r := recover(); r != nil {
			res = optimize.SimpleResult{Error: fmt.Sprint(r)}
		}
	}()

	var projects []optimize.ProjectInput
	if req != nil {
		projects = req.Projects
	}

	ranking := Rank(projects)
	res = optimize.SimpleResult{
		Timestamp: now().UTC(),
		Ranking:   ranking,
		Selection: []string{},
	}
	if len(ranking) > 0 {
		best := ranking[0]
		res.Recommended = &best
		res.Selection = []string{best.Name}
		res.Totals = optimize.Totals{TotalCost: best.Cost, TotalCO2: best.CO2}
	}
	return res
}

// Rank returns projects ordered by ascending cost/CO2 ratio. Projects with no
// CO2 reduction get an infinite ratio and sort last; ties keep input order.
func Rank(projects []optimize.ProjectInput) []optimize.RankedProject {
	out := make([]optimize.RankedProject, 0, len(projects))
	for _, p := range projects {
		out = append(out, optimize.RankedProject{
			Name:  p.Label(),
			Cost:  p.Cost(),
			CO2:   p.CO2(),
			Ratio: Ratio(p.Cost(), p.CO2()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ratio < out[j].Ratio })
	return out
}

// Ratio is cost per unit of CO2, or +Inf when co2 is not positive.
func Ratio(cost, co2 float64) float64 {
	if co2 > 0 {
		return cost / co2
	}
	return math.Inf(1)
}
