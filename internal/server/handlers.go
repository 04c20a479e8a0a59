package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ChicagoDave/klaro/internal/gateway"
	"github.com/ChicagoDave/klaro/internal/store"
	"github.com/ChicagoDave/klaro/pkg/catalogue"
	"github.com/ChicagoDave/klaro/pkg/optimize"
	"github.com/ChicagoDave/klaro/pkg/render"
	"github.com/ChicagoDave/klaro/pkg/submit"
	"github.com/ChicagoDave/klaro/pkg/validation"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// SaveResponse is the body of a 2xx reply to POST /save.
type SaveResponse struct {
	Success     bool     `json:"success"`
	Fallback    bool     `json:"fallback,omitempty"`
	Output      string   `json:"output,omitempty"`
	Message     string   `json:"message,omitempty"`
	RunID       string   `json:"run_id"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// CatalogueResponse lists the catalogue with its column order.
type CatalogueResponse struct {
	Columns  []string            `json:"columns"`
	Projects []catalogue.Project `json:"projects"`
}

// ResultsResponse is the server-rendered view of the latest document.
type ResultsResponse struct {
	View render.View      `json:"view"`
	Page *render.PageView `json:"page,omitempty"`
}

func (s *Server) handleSave(c *gin.Context) {
	var req optimize.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.log.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error(), Code: string(gateway.KindInvalidRequest)})
		return
	}
	report := validation.ValidateRequest(&req)
	if err := report.Err(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: string(gateway.KindInvalidRequest)})
		return
	}
	warnings := report.WarningMessages()
	for _, w := range warnings {
		s.log.Info("request warning", zap.String("warning", w))
	}

	run := s.gw.Submit(c.Request.Context(), &req)
	switch run.Outcome {
	case gateway.OutcomeSuccess:
		c.JSON(http.StatusOK, SaveResponse{Success: true, Output: run.Output, RunID: run.ID, Warnings: warnings})
	case gateway.OutcomeDegraded:
		c.JSON(http.StatusOK, SaveResponse{
			Fallback:    true,
			Message:     run.Message,
			RunID:       run.ID,
			Diagnostics: run.Diagnostics,
			Warnings:    warnings,
		})
	default:
		c.JSON(statusFor(run.Kind), ErrorResponse{Error: run.Message, Code: string(run.Kind), RunID: run.ID})
	}
}

func statusFor(k gateway.Kind) int {
	switch k {
	case gateway.KindInvalidRequest:
		return http.StatusBadRequest
	case gateway.KindCancelled:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) handleDocument(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	data, err := s.gw.Store().ReadResult()
	if errors.Is(err, store.ErrNoResult) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: render.NoResultsMessage})
		return
	}
	if err != nil {
		s.log.Error("reading result document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) handleCatalogue(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogueResponse{Columns: catalogue.Columns[:], Projects: s.cat.All()})
}

// handleSummary totals a selection given as ?ids=1,2,3.
func (s *Server) handleSummary(c *gin.Context) {
	var sel submit.Selection
	for _, part := range strings.Split(c.Query("ids"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ids must be integers"})
			return
		}
		sel = append(sel, id)
	}
	c.JSON(http.StatusOK, submit.Summarize(s.cat, sel))
}

func (s *Server) handleResults(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "page must be an integer"})
		return
	}
	c.Header("Cache-Control", "no-store")

	view := render.ViewFile(s.gw.Store().ResultPath())
	resp := ResultsResponse{View: view}
	if view.TotalPages() > 0 {
		pv, err := view.Page(page)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		resp.Page = &pv
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
