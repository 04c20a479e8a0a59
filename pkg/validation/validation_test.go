package validation

import (
	"errors"
	"testing"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

func TestNewReport(t *testing.T) {
	r := NewReport()
	if !r.Valid {
		t.Error("new report should be valid")
	}
	if len(r.Findings) != 0 {
		t.Errorf("new report should have no findings, got %+v", r.Findings)
	}
	if r.Summary != "0 errors, 0 warnings, 0 notes" {
		t.Errorf("summary = %q", r.Summary)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestAddError(t *testing.T) {
	r := NewReport()
	r.AddError(Result{Level: LevelSchema, Message: "bad value"})
	if r.Valid {
		t.Error("report with error should be invalid")
	}
	if len(r.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(r.Errors()))
	}
	if r.Errors()[0].Severity != SeverityError {
		t.Error("AddError should set severity to error")
	}
	if r.Summary != "1 error, 0 warnings, 0 notes" {
		t.Errorf("summary = %q", r.Summary)
	}
	if !errors.Is(r.Err(), optimize.ErrInvalidRequest) {
		t.Errorf("Err() = %v, want wrapped ErrInvalidRequest", r.Err())
	}
}

func TestAddWarning(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelAnalytical, Message: "heads up"})
	if !r.Valid {
		t.Error("warnings should not invalidate report")
	}
	if got := r.WarningMessages(); len(got) != 1 || got[0] != "heads up" {
		t.Errorf("WarningMessages() = %v", got)
	}
	if len(r.Errors()) != 0 || len(r.Info()) != 0 {
		t.Error("a warning should not show up under errors or info")
	}
}

func TestMergeTagsSource(t *testing.T) {
	r1 := NewReport()
	r1.AddWarning(Result{Level: LevelSchema, Message: "warn1"})

	r2 := NewReport()
	r2.AddError(Result{Level: LevelSchema, Message: "err1"})
	r2.AddInfo(Result{Level: LevelAnalytical, Message: "info1", Source: "kept.json"})

	r1.Merge("b.json", r2)

	if r1.Valid {
		t.Error("merged report should be invalid when other has errors")
	}
	if r1.Summary != "1 error, 1 warning, 1 note" {
		t.Errorf("summary = %q", r1.Summary)
	}
	if len(r1.Findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(r1.Findings))
	}
	if r1.Findings[0].Source != "" {
		t.Errorf("own finding source = %q, want empty", r1.Findings[0].Source)
	}
	if r1.Findings[1].Source != "b.json" {
		t.Errorf("merged source = %q, want b.json", r1.Findings[1].Source)
	}
	if r1.Findings[2].Source != "kept.json" {
		t.Errorf("existing source = %q, want kept.json", r1.Findings[2].Source)
	}
}
