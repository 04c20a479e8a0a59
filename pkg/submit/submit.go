// Package submit turns a catalogue selection into a solver request and posts it
// to the gateway.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ChicagoDave/klaro/pkg/catalogue"
	"github.com/ChicagoDave/klaro/pkg/optimize"
	"github.com/ChicagoDave/klaro/pkg/render"
)

// SavePath is the gateway's submission endpoint.
const SavePath = "/save"

// DefaultGoals are the reduction targets, in pollutant column order, used when
// the caller supplies none.
var DefaultGoals = []float64{1000, 35, 25, 20, 60, 45, 80, 12, 6, 10}

var (
	// ErrInvalidRequest is optimize.ErrInvalidRequest, re-exported for callers
	// that only import this package.
	ErrInvalidRequest = optimize.ErrInvalidRequest
	// ErrNetwork means the gateway could not be reached or its reply could not
	// be read. The result document is unchanged.
	ErrNetwork = errors.New("network error")
)

// Selection is an ordered set of catalogue ids.
type Selection []int

// Contains reports whether id is selected.
func (s Selection) Contains(id int) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle returns a new selection with id added at the end, or removed if
// already present. The receiver is not modified.
func (s Selection) Toggle(id int) Selection {
	out := make(Selection, 0, len(s)+1)
	found := false
	for _, v := range s {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// Outcome classifies a gateway response.
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeDegraded Outcome = "DEGRADED"
	OutcomeFailed   Outcome = "FAILED"
)

// Response is the classified reply to a submission.
type Response struct {
	Outcome Outcome
	Status  int
	Output  string
	Message string
	Advice  *render.Advice
}

type reply struct {
	Success  *bool  `json:"success"`
	Fallback bool   `json:"fallback"`
	Output   string `json:"output"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

// Client submits selections to a gateway.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	Catalogue *catalogue.Registry
	Logger    *zap.Logger
}

// New returns a client for the gateway at baseURL.
func New(baseURL string, reg *catalogue.Registry, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      &http.Client{Timeout: 10 * time.Minute},
		Catalogue: reg,
		Logger:    logger,
	}
}

// Build resolves the selection against the catalogue. Nil goals mean
// DefaultGoals.
func (c *Client) Build(sel Selection, goals []float64) (*optimize.Request, error) {
	if len(sel) == 0 {
		return nil, fmt.Errorf("%w: please pick at least one project", ErrInvalidRequest)
	}
	if goals == nil {
		goals = DefaultGoals
	}
	projects, err := c.Catalogue.Select(sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return optimize.NewRequest(projects, goals)
}

// Submit builds the request and posts it. Invalid selections fail before any
// network traffic. A reachable gateway always yields a Response, even for
// non-2xx replies; the error return is reserved for ErrInvalidRequest and
// ErrNetwork.
func (c *Client) Submit(ctx context.Context, sel Selection, goals []float64) (*Response, error) {
	req, err := c.Build(sel, goals)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+SavePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		c.Logger.Error("submitting request", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("reading gateway reply", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	out := Classify(resp.StatusCode, raw)
	c.Logger.Info("submitted request",
		zap.Int("projects", len(req.Projects)),
		zap.Int("status", resp.StatusCode),
		zap.String("outcome", string(out.Outcome)))
	return out, nil
}

// Classify maps a gateway status and body to a Response. An unparseable body
// on a non-2xx status still classifies as Failed.
func Classify(status int, body []byte) *Response {
	var r reply
	_ = json.Unmarshal(body, &r)

	if status < 200 || status > 299 {
		msg := r.Error
		if msg == "" {
			msg = fmt.Sprintf("Server error: %d", status)
		}
		advice := render.Guidance(msg)
		return &Response{Outcome: OutcomeFailed, Status: status, Message: msg, Advice: &advice}
	}
	if r.Fallback || (r.Success != nil && !*r.Success) {
		return &Response{Outcome: OutcomeDegraded, Status: status, Output: r.Output, Message: r.Message}
	}
	return &Response{Outcome: OutcomeSuccess, Status: status, Output: r.Output, Message: r.Message}
}

// Inspect fetches the latest document after a submit and returns guidance when
// it carries an infeasible or unbounded error. Other states return nil.
func (c *Client) Inspect(ctx context.Context) (*render.Advice, error) {
	f := render.NewFetcher(c.BaseURL)
	f.Client = c.HTTP
	doc, err := f.Fetch(ctx)
	if errors.Is(err, render.ErrNoResults) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Error == "" {
		return nil, nil
	}
	a := render.Guidance(doc.Error)
	if a.Kind == render.AdviceGeneric {
		return nil, nil
	}
	return &a, nil
}

// SelectionSummary is the running total shown while choosing projects.
type SelectionSummary struct {
	Count     int     `json:"count"`
	TotalCost float64 `json:"total_cost"`
	TotalCO2  float64 `json:"total_co2"`
}

// Summarize totals cost and CO2 over the selection. Unknown ids are counted
// but contribute nothing.
func Summarize(reg *catalogue.Registry, sel Selection) SelectionSummary {
	s := SelectionSummary{Count: len(sel)}
	for _, id := range sel {
		p, ok := reg.Lookup(id)
		if !ok {
			continue
		}
		s.TotalCost += p.Metric(catalogue.Cost)
		s.TotalCO2 += p.Metric(catalogue.CO2)
	}
	return s
}
