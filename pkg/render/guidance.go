package render

import "strings"

// AdviceKind classifies a solver or gateway error message for the user.
type AdviceKind string

const (
	AdviceInfeasible AdviceKind = "SOLVER_REPORTED_INFEASIBLE"
	AdviceUnbounded  AdviceKind = "SOLVER_REPORTED_UNBOUNDED"
	AdviceGeneric    AdviceKind = "SERVER_ERROR"
)

// Advice is the user-facing explanation of an error message.
type Advice struct {
	Kind    AdviceKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Guidance maps a raw error message to advice. Infeasible and unbounded problems
// get specific guidance; anything else is shown sanitized.
func Guidance(msg string) Advice {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "infeasible"):
		return Advice{
			Kind:    AdviceInfeasible,
			Title:   "Infeasible problem",
			Message: "The optimizer reports the problem is infeasible (no feasible solution meets the goals). Please adjust targets or project selection.",
		}
	case strings.Contains(lower, "unbounded"):
		return Advice{
			Kind:    AdviceUnbounded,
			Title:   "Unbounded solution",
			Message: "The optimizer reports an unbounded solution. This usually means objectives or constraints need more limits. Check your inputs.",
		}
	default:
		return Advice{Kind: AdviceGeneric, Title: "Server error", Message: Sanitize(msg)}
	}
}
