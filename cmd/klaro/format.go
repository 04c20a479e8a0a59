package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChicagoDave/klaro/pkg/catalogue"
	"github.com/ChicagoDave/klaro/pkg/render"
	"github.com/ChicagoDave/klaro/pkg/validation"
)

// printValidationReport lists findings as one table, errors first, followed by
// any suggestions and the verdict line.
func printValidationReport(w io.Writer, r *validation.Report, styles render.Styles) {
	findings := &render.Table{Title: "Findings", Headers: []string{"Severity", "Where", "Message"}}
	var hints []string
	for _, sev := range []validation.Severity{validation.SeverityError, validation.SeverityWarning, validation.SeverityInfo} {
		for _, f := range r.Findings {
			if f.Severity != sev {
				continue
			}
			findings.AddRow(string(sev), findingLocation(f), findingText(f))
			for _, s := range f.Suggestions {
				hints = append(hints, fmt.Sprintf("%s: %s", findingLocation(f), s))
			}
		}
	}
	fmt.Fprint(w, findings.Render(styles))
	for _, h := range hints {
		fmt.Fprintln(w, styles.Notice.Render("hint "+h))
	}

	verdict := styles.Bold.Render("VALID")
	if !r.Valid {
		verdict = styles.Error.Render("INVALID")
	}
	fmt.Fprintf(w, "%s (%s)\n", verdict, r.Summary)
}

func findingLocation(f validation.Result) string {
	switch {
	case f.Source != "" && f.Path != "":
		return f.Source + ":" + f.Path
	case f.Source != "":
		return f.Source
	case f.Path != "":
		return f.Path
	}
	return "request"
}

func findingText(f validation.Result) string {
	var extra []string
	if f.ActualValue != nil {
		extra = append(extra, fmt.Sprintf("got %v", f.ActualValue))
	}
	if f.Expected != "" {
		extra = append(extra, "want "+f.Expected)
	}
	if len(extra) == 0 {
		return f.Message
	}
	return fmt.Sprintf("%s (%s)", f.Message, strings.Join(extra, ", "))
}

func printAdvice(a *render.Advice) {
	fmt.Printf("%s: %s\n", a.Title, a.Message)
}

// catalogueTable lays out every project with its full metric vector.
func catalogueTable(reg *catalogue.Registry) *render.Table {
	t := &render.Table{
		Title:   fmt.Sprintf("Catalogue (%d projects)", reg.Len()),
		Headers: append([]string{"ID", "Project"}, catalogue.Columns[:]...),
	}
	for _, p := range reg.All() {
		row := []string{strconv.Itoa(p.ID), render.Sanitize(p.Name)}
		for i := 0; i < catalogue.MetricCount; i++ {
			row = append(row, render.FmtFloat(p.Metric(i)))
		}
		t.AddRow(row...)
	}
	return t
}
