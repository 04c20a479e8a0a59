// Package gateway runs one optimization: it persists the request, invokes the
// external LP solver, and reconciles success or failure into a single result
// document. When the solver is missing, fails, times out or leaves unreadable
// output, the fallback heuristic fills the document instead.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ChicagoDave/klaro/internal/locator"
	"github.com/ChicagoDave/klaro/internal/metrics"
	"github.com/ChicagoDave/klaro/internal/runner"
	"github.com/ChicagoDave/klaro/internal/store"
	"github.com/ChicagoDave/klaro/pkg/heuristic"
	"github.com/ChicagoDave/klaro/pkg/optimize"
	"github.com/ChicagoDave/klaro/pkg/tableau"
)

// DefaultScript is the solver script, relative to the store root.
const DefaultScript = "R/Minimization.R"

// Fallback document text.
const (
	FallbackNote    = "Generated by the gateway fallback because the solver was unavailable."
	fallbackMessage = "solver failed; used fallback to generate the result document"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeDegraded  Outcome = "DEGRADED"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeCancelled Outcome = "CANCELLED"
)

// Executor runs the solver subprocess.
type Executor interface {
	Run(ctx context.Context, cmd runner.Command) (*runner.Result, error)
}

// Options wires a Gateway.
type Options struct {
	Store    *store.Store
	Locator  locator.Locator
	Executor Executor
	Script   string
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Clock    heuristic.Clock
	NewID    func() string
}

// Gateway serializes runs; at most one is in flight.
type Gateway struct {
	store   *store.Store
	locate  locator.Locator
	exec    Executor
	script  string
	log     *zap.Logger
	metrics *metrics.Metrics
	clock   heuristic.Clock
	newID   func() string
	sem     *semaphore.Weighted
}

// Run is the outcome of one submission.
type Run struct {
	ID          string
	Outcome     Outcome
	Kind        Kind
	Output      string
	Message     string
	Diagnostics []string
	Err         error
}

// New checks opts and fills defaults.
func New(opts Options) (*Gateway, error) {
	if opts.Store == nil {
		return nil, errors.New("gateway: store is required")
	}
	if opts.Locator == nil {
		return nil, errors.New("gateway: locator is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("gateway: executor is required")
	}
	g := &Gateway{
		store:   opts.Store,
		locate:  opts.Locator,
		exec:    opts.Executor,
		script:  opts.Script,
		log:     opts.Logger,
		metrics: opts.Metrics,
		clock:   opts.Clock,
		newID:   opts.NewID,
		sem:     semaphore.NewWeighted(1),
	}
	if g.script == "" {
		g.script = DefaultScript
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	if g.clock == nil {
		g.clock = time.Now
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	return g, nil
}

// Store returns the document store the gateway writes to.
func (g *Gateway) Store() *store.Store { return g.store }

// Submit performs one run. It blocks while another run is in flight; a ctx
// cancelled while waiting ends the run as cancelled without touching any file.
func (g *Gateway) Submit(ctx context.Context, req *optimize.Request) *Run {
	start := time.Now()
	run := g.submit(ctx, req)
	g.metrics.ObserveRun(string(run.Outcome), string(run.Kind), time.Since(start))

	fields := []zap.Field{
		zap.String("run_id", run.ID),
		zap.String("outcome", string(run.Outcome)),
		zap.Duration("duration", time.Since(start)),
	}
	if run.Kind != KindNone {
		fields = append(fields, zap.String("kind", string(run.Kind)))
	}
	switch run.Outcome {
	case OutcomeSuccess:
		g.log.Info("run finished", fields...)
	case OutcomeFailed:
		g.log.Error("run failed", append(fields, zap.Error(run.Err))...)
	default:
		g.log.Warn("run degraded", append(fields, zap.Error(run.Err))...)
	}
	return run
}

func (g *Gateway) submit(ctx context.Context, req *optimize.Request) *Run {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return failed(OutcomeCancelled, "", err)
	}
	defer g.sem.Release(1)
	defer g.metrics.Acquired()()

	if err := req.Check(); err != nil {
		return failed(OutcomeFailed, "", err)
	}
	id := g.newID()
	if err := g.store.WriteRequest(ctx, req); err != nil {
		return failed(OutcomeFailed, id, err)
	}

	path, err := g.locate.Locate()
	if err != nil {
		g.metrics.ObserveSolver("not_found", 0)
		return g.fallback(ctx, id, req, err, "")
	}

	cmd := runner.Command{Binary: path, Args: []string{g.script}, Dir: g.store.Root()}
	g.log.Debug("running solver", zap.String("run_id", id), zap.String("solver", cmd.String()))
	res, err := g.exec.Run(ctx, cmd)
	if res != nil {
		g.metrics.ObserveSolver(solverLabel(err), res.Duration)
	}
	if err != nil {
		detail := ""
		if res != nil {
			detail = res.Combined()
		}
		return g.fallback(ctx, id, req, err, detail)
	}

	raw, err := g.readSolverDocument()
	if err != nil {
		return g.fallback(ctx, id, req, err, res.Combined())
	}
	summary := heuristic.SolveAt(req, g.clock)
	raw["result"] = summary
	raw["run_id"] = id
	if err := g.store.WriteResult(ctx, raw); err != nil {
		return failed(OutcomeFailed, id, err)
	}
	return &Run{ID: id, Outcome: OutcomeSuccess, Output: res.Stdout}
}

// readSolverDocument loads what the solver wrote. Documents written by the
// gateway carry a run_id and the solver's never do, so one that has it is left
// over from an earlier run.
func (g *Gateway) readSolverDocument() (map[string]any, error) {
	data, err := g.store.ReadResult()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverOutput, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: result document is not a JSON object", ErrSolverOutput)
	}
	if _, stale := raw["run_id"]; stale {
		return nil, fmt.Errorf("%w: no result document written", ErrSolverOutput)
	}
	return raw, nil
}

// fallback writes the heuristic document. The run is degraded, or cancelled
// when cause is a timeout; it only fails when the document cannot be written.
func (g *Gateway) fallback(ctx context.Context, id string, req *optimize.Request, cause error, detail string) *Run {
	kind := Classify(cause)
	diags := []string{"Solver failed; used fallback to build tableau.", cause.Error()}
	if detail != "" {
		diags = append(diags, detail)
	}

	res := heuristic.SolveAt(req, g.clock)
	doc := &optimize.Document{
		RunID:       id,
		Result:      &res,
		Diagnostics: diags,
		Note:        FallbackNote,
	}
	tableau.Transpose(req).Apply(doc)

	// A cancelled request context must not stop the fallback from landing.
	if err := g.store.WriteResult(context.WithoutCancel(ctx), doc); err != nil {
		run := failed(OutcomeFailed, id, err)
		if kind == KindSolverNotFound {
			run.Message = cause.Error()
		}
		return run
	}

	outcome := OutcomeDegraded
	if kind == KindCancelled {
		outcome = OutcomeCancelled
	}
	return &Run{
		ID:          id,
		Outcome:     outcome,
		Kind:        kind,
		Message:     fallbackMessage,
		Diagnostics: diags,
		Err:         cause,
	}
}

func failed(outcome Outcome, id string, err error) *Run {
	return &Run{ID: id, Outcome: outcome, Kind: Classify(err), Message: err.Error(), Err: err}
}

func solverLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, runner.ErrCancelled):
		return "cancelled"
	}
	return "failed"
}
