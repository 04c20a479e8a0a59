package validation

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/klaro/pkg/catalogue"
	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// ValidateRequest checks a request before it is handed to a solver. Schema
// findings are errors, except an unnamed project, which only warns; analytical
// findings are warnings about goals the selection cannot reach.
func ValidateRequest(req *optimize.Request) *Report {
	r := NewReport()
	if req == nil {
		r.AddError(Result{Level: LevelSchema, Message: "request is empty", Path: ""})
		return r
	}

	validateProjects(req, r)
	validateGoals(req, r)
	if r.Valid {
		validateReachability(req, r)
	}
	return r
}

func validateProjects(req *optimize.Request, r *Report) {
	if len(req.Projects) == 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "projects must contain at least one project",
			Path:        "projects",
			Expected:    "at least 1 project",
			Suggestions: []string{"Select at least one project before running the optimizer"},
		})
		return
	}

	seen := make(map[string]int, len(req.Projects))
	for i, p := range req.Projects {
		path := fmt.Sprintf("projects[%d]", i)
		if p.Name == "" {
			r.AddWarning(Result{
				Level:    LevelSchema,
				Message:  fmt.Sprintf("%s has no name and is labelled %q", path, optimize.UnnamedProject),
				Path:     path + ".name",
				Expected: "a project name",
			})
		}
		if len(p.Data) != catalogue.MetricCount {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): data must hold %d metrics", path, p.Label(), catalogue.MetricCount),
				Path:        path + ".data",
				ActualValue: len(p.Data),
				Expected:    fmt.Sprintf("%d", catalogue.MetricCount),
			})
			continue
		}
		for j, v := range p.Data {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				r.AddError(Result{
					Level:       LevelSchema,
					Message:     fmt.Sprintf("%s (%s): %s must be a finite non-negative number", path, p.Label(), catalogue.Columns[j]),
					Path:        fmt.Sprintf("%s.data[%d]", path, j),
					ActualValue: v,
					Expected:    ">= 0",
				})
			}
		}
		if first, dup := seen[p.Label()]; dup {
			r.AddWarning(Result{
				Level:   LevelSchema,
				Message: fmt.Sprintf("%s duplicates projects[%d] (%s)", path, first, p.Label()),
				Path:    path + ".name",
			})
		} else {
			seen[p.Label()] = i
		}
		if p.CO2() == 0 {
			r.AddInfo(Result{
				Level:   LevelAnalytical,
				Message: fmt.Sprintf("%s has no CO2 reduction and ranks last in the fallback ranking", p.Label()),
				Path:    fmt.Sprintf("%s.data[%d]", path, catalogue.CO2),
			})
		}
	}
}

func validateGoals(req *optimize.Request, r *Report) {
	if len(req.Goals) != catalogue.GoalCount {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("goals must hold one target per pollutant (got %d)", len(req.Goals)),
			Path:        "goals",
			ActualValue: len(req.Goals),
			Expected:    fmt.Sprintf("%d", catalogue.GoalCount),
		})
		return
	}
	for i, g := range req.Goals {
		if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("goal for %s must be a finite non-negative number", catalogue.Columns[i+1]),
				Path:        fmt.Sprintf("goals[%d]", i),
				ActualValue: g,
				Expected:    ">= 0",
			})
		}
	}
}

// validateReachability flags positive goals that no selected project contributes
// to. Units are unbounded, so any other goal is reachable by scaling.
func validateReachability(req *optimize.Request, r *Report) {
	for i, g := range req.Goals {
		if g <= 0 {
			continue
		}
		col := i + 1
		total := 0.0
		for _, p := range req.Projects {
			total += p.Data[col]
		}
		if total == 0 {
			r.AddWarning(Result{
				Level:       LevelAnalytical,
				Message:     fmt.Sprintf("no selected project reduces %s; the goal of %v cannot be met", catalogue.Columns[col], g),
				Path:        fmt.Sprintf("goals[%d]", i),
				ActualValue: g,
				Suggestions: []string{fmt.Sprintf("Select a project that reduces %s or lower the target to 0", catalogue.Columns[col])},
			})
		}
	}
}
