package gateway

import (
	"context"
	"errors"

	"github.com/ChicagoDave/klaro/internal/locator"
	"github.com/ChicagoDave/klaro/internal/runner"
	"github.com/ChicagoDave/klaro/internal/store"
	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// Kind is the error taxonomy reported by runs, metrics and the HTTP surface.
type Kind string

const (
	KindNone           Kind = ""
	KindInvalidRequest Kind = "INVALID_REQUEST"
	KindIOWrite        Kind = "IO_WRITE_FAILURE"
	KindSolverNotFound Kind = "SOLVER_NOT_FOUND"
	KindSolverExec     Kind = "SOLVER_EXEC_FAILURE"
	KindCancelled      Kind = "CANCELLED"
	KindUnknown        Kind = "UNKNOWN"
)

// ErrSolverOutput means the solver exited cleanly but left no readable result
// document.
var ErrSolverOutput = errors.New("solver output unreadable")

// Classify maps an error to its kind using sentinel values only.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, runner.ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, optimize.ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, store.ErrWrite):
		return KindIOWrite
	case errors.Is(err, locator.ErrNotFound):
		return KindSolverNotFound
	case errors.Is(err, runner.ErrExec), errors.Is(err, ErrSolverOutput):
		return KindSolverExec
	}
	return KindUnknown
}
