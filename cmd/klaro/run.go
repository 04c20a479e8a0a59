package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/ChicagoDave/klaro/internal/config"
	"github.com/ChicagoDave/klaro/internal/gateway"
	"github.com/ChicagoDave/klaro/internal/locator"
	"github.com/ChicagoDave/klaro/internal/metrics"
	"github.com/ChicagoDave/klaro/internal/runner"
	"github.com/ChicagoDave/klaro/internal/server"
	"github.com/ChicagoDave/klaro/internal/store"
	"github.com/ChicagoDave/klaro/pkg/catalogue"
	"github.com/ChicagoDave/klaro/pkg/optimize"
	"github.com/ChicagoDave/klaro/pkg/render"
	"github.com/ChicagoDave/klaro/pkg/submit"
	"github.com/ChicagoDave/klaro/pkg/validation"
)

// loadCatalogue returns the configured catalogue, or the embedded one.
func loadCatalogue(cfg *config.Config) (*catalogue.Registry, error) {
	if cfg.Catalogue.File == "" {
		return catalogue.Default()
	}
	reg, err := catalogue.Load(cfg.Catalogue.File)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	return reg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.New(cfg.Data.Dir, cfg.Data.RequestFile, cfg.Data.ResultFile)
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg
	reg, err := loadCatalogue(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	exec, err := runner.New(cfg.Solver.Timeout, cfg.Solver.OutputEncoding)
	if err != nil {
		return err
	}
	m := metrics.New()
	gw, err := gateway.New(gateway.Options{
		Store:    st,
		Locator:  locator.Default(cfg.Solver.EnvVar, cfg.Solver.SearchRoots),
		Executor: exec,
		Script:   cfg.Solver.Script,
		Logger:   a.log,
		Metrics:  m,
	})
	if err != nil {
		return err
	}

	a.log.Info("serving",
		zap.String("data_dir", st.Root()),
		zap.String("script", cfg.Solver.Script),
		zap.Duration("solver_timeout", cfg.Solver.Timeout),
		zap.Int("projects", reg.Len()))

	srv := server.New(server.Options{
		Addr:         cfg.Server.Addr,
		PortAttempts: cfg.Server.PortAttempts,
		Gateway:      gw,
		Catalogue:    reg,
		Metrics:      m,
		Logger:       a.log,
	})
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}

func runSubmit(ctx context.Context, a *app, url string, args []string, goalList string) error {
	reg, err := loadCatalogue(a.cfg)
	if err != nil {
		return err
	}
	sel, err := parseSelection(args)
	if err != nil {
		return err
	}
	goals, err := parseGoals(goalList)
	if err != nil {
		return err
	}

	sum := submit.Summarize(reg, sel)
	fmt.Printf("Selected %d projects: total cost %s, total CO2 %s\n",
		sum.Count, render.USD(sum.TotalCost), render.FmtFloat(sum.TotalCO2))

	client := submit.New(url, reg, a.log)
	resp, err := client.Submit(ctx, sel, goals)
	if errors.Is(err, submit.ErrInvalidRequest) {
		return fmt.Errorf("%w (please pick first)", err)
	}
	if err != nil {
		return err
	}

	switch resp.Outcome {
	case submit.OutcomeFailed:
		if resp.Advice != nil {
			printAdvice(resp.Advice)
		}
		return fmt.Errorf("submission failed: %s", resp.Message)
	case submit.OutcomeDegraded:
		fmt.Println("Solver unavailable; a fallback result was generated.")
		if resp.Message != "" {
			fmt.Println(resp.Message)
		}
	default:
		fmt.Println("Optimization complete.")
		if out := strings.TrimSpace(resp.Output); out != "" {
			fmt.Println(out)
		}
	}

	advice, err := client.Inspect(ctx)
	if err != nil {
		a.log.Warn("fetching result document", zap.Error(err))
		return nil
	}
	if advice != nil {
		printAdvice(advice)
	}
	return nil
}

func parseSelection(args []string) (submit.Selection, error) {
	var sel submit.Selection
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("project id %q is not an integer", part)
			}
			if !sel.Contains(id) {
				sel = sel.Toggle(id)
			}
		}
	}
	return sel, nil
}

// parseGoals reads a comma-separated goal list. Empty input means the
// built-in goals.
func parseGoals(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("goal %q: %w", part, err)
		}
		out = append(out, v)
	}
	if len(out) != catalogue.GoalCount {
		return nil, fmt.Errorf("expected %d goals (%s), got %d",
			catalogue.GoalCount, strings.Join(catalogue.Pollutants(), ", "), len(out))
	}
	return out, nil
}

type resultsOptions struct {
	url   string
	file  string
	page  int
	watch bool
	plain bool
}

func runResults(ctx context.Context, a *app, opts resultsOptions) error {
	term := &render.Terminal{Out: os.Stdout, Styles: render.DefaultStyles()}
	if opts.plain {
		term.Styles = render.PlainStyles()
	}
	page := opts.page - 1

	if opts.url != "" {
		if opts.watch {
			return errors.New("--watch needs a local document; drop --url")
		}
		return term.Write(render.NewFetcher(opts.url).View(ctx), page)
	}

	path := opts.file
	if path == "" {
		st, err := openStore(a.cfg)
		if err != nil {
			return err
		}
		path = st.ResultPath()
	}
	if err := term.Write(render.ViewFile(path), page); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchDocument(ctx, a.log, path, func() error {
		fmt.Fprintln(os.Stdout)
		return term.Write(render.ViewFile(path), page)
	})
}

func runCatalogue(a *app, plain bool) error {
	reg, err := loadCatalogue(a.cfg)
	if err != nil {
		return err
	}
	styles := render.DefaultStyles()
	if plain {
		styles = render.PlainStyles()
	}
	fmt.Print(catalogueTable(reg).Render(styles))
	return nil
}

func runValidate(a *app, paths []string, plain bool) error {
	if len(paths) == 0 {
		st, err := openStore(a.cfg)
		if err != nil {
			return err
		}
		paths = []string{st.RequestPath()}
	}

	report := validation.NewReport()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading request: %w", err)
		}
		var req optimize.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("parsing %s: %w", p, err)
		}
		report.Merge(p, validation.ValidateRequest(&req))
	}

	styles := render.DefaultStyles()
	if plain {
		styles = render.PlainStyles()
	}
	printValidationReport(os.Stdout, report, styles)
	if !report.Valid {
		return errors.New("request has validation errors")
	}
	return nil
}
