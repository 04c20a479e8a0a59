package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChicagoDave/klaro/internal/config"
	"github.com/ChicagoDave/klaro/internal/logging"
)

// app carries the state every subcommand shares once the root has run.
type app struct {
	dir        string
	configPath string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:               "klaro",
		Short:             "Mitigation portfolio optimizer gateway and client",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "project directory holding klaro.yaml, R/ and Data/")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default <dir>/klaro.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(submitCmd(a))
	rootCmd.AddCommand(resultsCmd(a))
	rootCmd.AddCommand(catalogueCmd(a))
	rootCmd.AddCommand(validateCmd(a))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(*cobra.Command, []string) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.LoadProject(a.dir)
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	return nil
}

func serveCmd(a *app) *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway: accept requests, run the solver, publish results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("timeout") {
				a.cfg.Solver.Timeout = timeout
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":3000", "listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "solver timeout, e.g. 2m (0 disables)")
	return cmd
}

func submitCmd(a *app) *cobra.Command {
	var (
		url   string
		goals string
	)
	cmd := &cobra.Command{
		Use:   "submit <project-id>...",
		Short: "Submit a selection of catalogue projects for optimization",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), a, url, args, goals)
		},
	}
	cmd.Flags().StringVarP(&url, "url", "u", "http://localhost:3000", "gateway base URL")
	cmd.Flags().StringVarP(&goals, "goals", "g", "", "comma-separated pollutant goals (default built-in goals)")
	return cmd
}

func resultsCmd(a *app) *cobra.Command {
	var opts resultsOptions
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Render the latest result document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResults(cmd.Context(), a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "fetch from a gateway instead of reading the local document")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "result document path (default from config)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "iteration page to show")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render whenever the local document changes")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colour")
	return cmd
}

func catalogueCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "catalogue",
		Aliases: []string{"catalog"},
		Short:   "List the candidate projects",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runCatalogue(a, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colour")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "validate [request.json]...",
		Short: "Validate request documents without running the solver",
		Long:  "Validate request documents without running the solver. With no arguments the configured request file is checked.",
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(a, args, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colour")
	return cmd
}
