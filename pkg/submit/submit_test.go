package submit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/klaro/pkg/catalogue"
	"github.com/ChicagoDave/klaro/pkg/optimize"
	"github.com/ChicagoDave/klaro/pkg/render"
)

func newClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, catalogue.MustDefault(), nil), &calls
}

func TestSubmitEmptySelection(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Submit(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
	_, err = c.Submit(context.Background(), Selection{}, nil)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.Zero(t, atomic.LoadInt32(calls), "nothing may be sent for an empty selection")
}

func TestSubmitInvalidInputs(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Submit(context.Background(), Selection{1}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = c.Submit(context.Background(), Selection{999}, nil)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.True(t, errors.Is(err, catalogue.ErrUnknownProject))
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestSubmitSendsRequest(t *testing.T) {
	var got optimize.Request
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, SavePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success": true, "output": "done"}`))
	})

	sel := Selection{9, 1}
	resp, err := c.Submit(context.Background(), sel, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, resp.Outcome)
	assert.Equal(t, "done", resp.Output)

	require.Len(t, got.Projects, 2)
	assert.Equal(t, "Low-Emission Stove Program", got.Projects[0].Name)
	assert.Equal(t, "Large Solar Park", got.Projects[1].Name)
	assert.Len(t, got.Projects[0].Data, catalogue.MetricCount)
	assert.Equal(t, DefaultGoals, got.Goals)
	assert.Equal(t, Selection{9, 1}, sel, "selection must not be mutated")
}

func TestSubmitNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, catalogue.MustDefault(), nil)
	_, err := c.Submit(context.Background(), Selection{1}, nil)
	assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome Outcome
		advice  render.AdviceKind
	}{
		{"success", 200, `{"success":true,"output":"ok"}`, OutcomeSuccess, ""},
		{"bare output", 200, `{"output":"ok"}`, OutcomeSuccess, ""},
		{"degraded", 200, `{"success":false,"fallback":true,"message":"R failed"}`, OutcomeDegraded, ""},
		{"infeasible", 500, `{"success":false,"error":"Problem is infeasible"}`, OutcomeFailed, render.AdviceInfeasible},
		{"unbounded", 500, `{"error":"UNBOUNDED"}`, OutcomeFailed, render.AdviceUnbounded},
		{"generic", 503, `{"error":"cancelled"}`, OutcomeFailed, render.AdviceGeneric},
		{"no body", 502, ``, OutcomeFailed, render.AdviceGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.status, []byte(tt.body))
			assert.Equal(t, tt.outcome, r.Outcome)
			if tt.advice == "" {
				assert.Nil(t, r.Advice)
				return
			}
			require.NotNil(t, r.Advice)
			assert.Equal(t, tt.advice, r.Advice.Kind)
		})
	}
	assert.Equal(t, "Server error: 502", Classify(502, nil).Message)
}

func TestInspect(t *testing.T) {
	docs := map[string]string{
		"/a": `{"error": "LP infeasible"}`,
		"/b": `{"minimization": {"Z": 1}}`,
		"/c": `{"error": "something else"}`,
	}
	for prefix, body := range docs {
		body := body
		mux := http.NewServeMux()
		mux.HandleFunc(render.DocumentPath, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		srv := httptest.NewServer(mux)
		c := New(srv.URL, catalogue.MustDefault(), nil)
		a, err := c.Inspect(context.Background())
		require.NoError(t, err, prefix)
		if prefix == "/a" {
			require.NotNil(t, a)
			assert.Equal(t, render.AdviceInfeasible, a.Kind)
		} else {
			assert.Nil(t, a, prefix)
		}
		srv.Close()
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	a, err := New(srv.URL, catalogue.MustDefault(), nil).Inspect(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestSelection(t *testing.T) {
	s := Selection{3, 1}
	s2 := s.Toggle(2)
	assert.Equal(t, Selection{3, 1, 2}, s2)
	assert.Equal(t, Selection{3, 1}, s)
	assert.Equal(t, Selection{1, 2}, s2.Toggle(3))
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))
}

func TestSummarize(t *testing.T) {
	reg := catalogue.MustDefault()
	got := Summarize(reg, Selection{1, 9, 999})
	assert.Equal(t, SelectionSummary{Count: 3, TotalCost: 4180, TotalCO2: 62}, got)
	assert.Equal(t, SelectionSummary{}, Summarize(reg, nil))
}
