// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slukits/gospec"
	"github.com/slukits/gospec/internal/logging"
	"github.com/slukits/gospec/pkg/config"
	"github.com/slukits/gospec/pkg/path"
	"github.com/slukits/gospec/pkg/prop"
	"github.com/slukits/gospec/pkg/report"
	"github.com/slukits/gospec/pkg/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrRunFailed is returned by the run command if a test failed or a
// suite aborted.
var ErrRunFailed = errors.New("run failed")

type runOptions struct {
	config      string
	include     []string
	exclude     []string
	db          string
	metricsFile string
	workers     int
	verbose     bool
}

func newRunCmd(env *environment) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [patterns]",
		Short: "Run suites and report their tests",
		Long: `Runs the suites matching given doublestar patterns, the configured
suites if none is given, concurrently and reports their tests on the
console.  Flags override the values of the configuration file.  The
command fails if a test failed or a suite aborted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.configuration(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd, env, cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.config, "config", "c", "gospec.yaml", "configuration file")
	flags.StringSliceVarP(&opts.include, "include", "i", nil, "run only tests with one of these tags")
	flags.StringSliceVarP(&opts.exclude, "exclude", "e", nil, "skip tests with one of these tags")
	flags.StringVar(&opts.db, "db", "", "sqlite database recording the run")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "file the run's prometheus metrics are written to")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "number of suites run concurrently")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print infos of all tests and log at debug level")
	return cmd
}

func (o *runOptions) configuration(
	cmd *cobra.Command, args []string,
) (config.Config, error) {
	cfg, err := config.Load(o.config)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("include") {
		cfg.Include = o.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = o.exclude
	}
	if flags.Changed("db") {
		cfg.Database = o.db
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("verbose") {
		cfg.Console.Verbose = o.verbose
	}
	if len(args) > 0 {
		cfg.Suites = args
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, env *environment, cfg config.Config) error {
	if cfg.Console.Verbose {
		env.logger.SetLevel(logging.LevelDebug)
	}
	if err := prop.Configure(cfg.Property); err != nil {
		return err
	}
	specs, err := env.catalog.Select(cfg.Suites...)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No suites found.")
		return nil
	}

	reg := prometheus.NewRegistry()
	console := report.NewConsole(cmd.OutOrStdout())
	console.Verbose = cfg.Console.Verbose
	console.Plain = !cfg.Console.Color
	reporters := report.Multi{console, report.NewMetrics(reg)}
	if cfg.Database != "" {
		db, err := report.NewSQLite(cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Err(); err != nil {
				env.logger.Error("run not recorded", "err", err)
			}
			if err := db.Close(); err != nil {
				env.logger.Error("failed to close history", "err", err)
			}
		}()
		reporters = append(reporters, db)
	}
	observe(specs, telemetry.Observers{
		telemetry.New(reg), logObserver{env.logger}}, env.logger)

	args := gospec.Args{
		Reporter: reporters,
		Filter:   cfg.Filter(),
		RunID:    gospec.NewRunID(),
	}
	env.logger.Info("starting run", "run", args.RunID,
		"suites", len(specs), "workers", cfg.Workers)
	status, err := runAll(cmd.Context(), specs, args, cfg.Workers, env.logger)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			env.logger.Error("failed to write metrics",
				"file", cfg.MetricsFile, "err", err)
		}
	}
	if err != nil {
		return err
	}
	if !status.OK() {
		return fmt.Errorf("%w: %d failed, aborted: %t",
			ErrRunFailed, status.Failed, status.Aborted)
	}
	return nil
}

// observer is implemented by path suites.
type observer interface {
	Observe(path.Observer) error
}

func observe(specs []gospec.Spec, o path.Observer, l *logging.Logger) {
	for _, s := range specs {
		if ob, ok := s.(observer); ok {
			if err := ob.Observe(o); err != nil {
				l.Debug("suite not observed",
					"suite", s.SuiteName(), "err", err)
			}
		}
	}
}

// runAll runs given specs with at most given number of them running
// concurrently.  A suite whose run returns an error is reported aborted
// while the others keep running; a run-aborting panic stops the start
// of further suites.
func runAll(
	ctx context.Context, specs []gospec.Spec, args gospec.Args,
	workers int, l *logging.Logger,
) (gospec.Status, error) {
	var (
		mutex sync.Mutex
		total gospec.Status
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, s := range specs {
		g.Go(func() (err error) {
			if ctx.Err() != nil {
				return nil
			}
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if !gospec.IsRunAborting(r) {
					panic(r)
				}
				err = fmt.Errorf("%s: %w", s.SuiteName(), gospec.ErrAbortRun)
			}()
			status, err := s.Run("", args)
			if err != nil {
				l.Warn("suite aborted", "suite", s.SuiteName(), "err", err)
				status.Aborted = true
			}
			mutex.Lock()
			defer mutex.Unlock()
			total.Add(status)
			return nil
		})
	}
	err := g.Wait()
	return total, err
}

// logObserver logs the discoveries of path suites; single constructions
// are logged at debug level.
type logObserver struct{ l *logging.Logger }

func (o logObserver) ConstructionStarted(suite string, n int, target path.Path) {
	o.l.Debug("construction started",
		"suite", suite, "construction", n, "target", target)
}

func (o logObserver) ConstructionFinished(suite string, n int, err error) {
	if err != nil {
		o.l.Warn("construction failed",
			"suite", suite, "construction", n, "err", err)
		return
	}
	o.l.Debug("construction finished", "suite", suite, "construction", n)
}

func (o logObserver) DiscoveryFinished(suite string, n int, err error) {
	if err != nil {
		o.l.Warn("discovery failed",
			"suite", suite, "constructions", n, "err", err)
		return
	}
	o.l.Info("discovery finished", "suite", suite, "constructions", n)
}
