package optimize

import (
	"errors"
	"fmt"

	"github.com/ChicagoDave/klaro/pkg/catalogue"
)

// ErrInvalidRequest marks a request that must never reach the gateway.
var ErrInvalidRequest = errors.New("invalid request")

// ProjectInput is one selected project as transmitted: its name and full metric
// vector in catalogue column order.
type ProjectInput struct {
	Name string    `json:"name"`
	Data []float64 `json:"data" binding:"required,len=11"`
}

// Request is the solver input. Field order is fixed so the serialized form is
// reproducible.
type Request struct {
	Projects []ProjectInput `json:"projects" binding:"required,min=1,dive"`
	Goals    []float64      `json:"goals" binding:"required,len=10"`
}

// NewRequest builds a request from catalogue projects and a goals vector.
func NewRequest(projects []catalogue.Project, goals []float64) (*Request, error) {
	req := &Request{
		Projects: make([]ProjectInput, 0, len(projects)),
		Goals:    append([]float64(nil), goals...),
	}
	for _, p := range projects {
		data := make([]float64, catalogue.MetricCount)
		copy(data, p.Metrics)
		req.Projects = append(req.Projects, ProjectInput{Name: p.Name, Data: data})
	}
	if err := req.Check(); err != nil {
		return nil, err
	}
	return req, nil
}

// Check enforces what a request must satisfy: at least one project, every metric
// vector complete, exactly one goal per pollutant.
func (r *Request) Check() error {
	if r == nil || len(r.Projects) == 0 {
		return fmt.Errorf("%w: no projects selected", ErrInvalidRequest)
	}
	for i, p := range r.Projects {
		if len(p.Data) != catalogue.MetricCount {
			return fmt.Errorf("%w: project %d (%q) has %d metrics, want %d",
				ErrInvalidRequest, i, p.Name, len(p.Data), catalogue.MetricCount)
		}
	}
	if len(r.Goals) != catalogue.GoalCount {
		return fmt.Errorf("%w: %d goals, want %d", ErrInvalidRequest, len(r.Goals), catalogue.GoalCount)
	}
	return nil
}

// UnnamedProject labels a project sent without a name.
const UnnamedProject = "proj"

// Label returns the project name, or UnnamedProject when it is empty.
func (p ProjectInput) Label() string {
	if p.Name == "" {
		return UnnamedProject
	}
	return p.Name
}

// Cost returns the project's cost metric.
func (p ProjectInput) Cost() float64 { return p.metric(catalogue.Cost) }

// CO2 returns the project's CO2 reduction metric.
func (p ProjectInput) CO2() float64 { return p.metric(catalogue.CO2) }

func (p ProjectInput) metric(i int) float64 {
	if i >= len(p.Data) {
		return 0
	}
	return p.Data[i]
}
