// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/slukits/gospec/pkg/report"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	db    string
	limit int
	run   string
}

func newHistoryCmd() *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Lists the runs recorded in a sqlite database by "gospec run --db",
latest first.  With --run the events of the run with given id are
listed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.db == "" {
				return errors.New("history: --db is required")
			}
			db, err := report.NewSQLite(opts.db)
			if err != nil {
				return err
			}
			defer db.Close()
			if opts.run != "" {
				return showRun(cmd, db, opts.run)
			}
			return listRuns(cmd, db, opts.limit)
		},
	}
	cmd.Flags().StringVar(&opts.db, "db", "", "sqlite database with recorded runs (required)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum number of listed runs")
	cmd.Flags().StringVar(&opts.run, "run", "", "id of the run whose events are listed")
	return cmd
}

func listRuns(cmd *cobra.Command, db *report.SQLite, limit int) error {
	runs, err := db.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-26s  %-19s  %6s  %9s  %6s  %s\n",
		"RUN", "STARTED", "SUITES", "SUCCEEDED", "FAILED", "STATUS")
	for _, r := range runs {
		fmt.Fprintf(w, "%-26s  %-19s  %6d  %9d  %6d  %s\n",
			r.ID, r.Started.Local().Format("2006-01-02 15:04:05"),
			r.Suites, r.Status.Succeeded, r.Status.Failed, verdict(r))
	}
	return nil
}

func verdict(r report.Run) string {
	switch {
	case r.Status.Aborted:
		return "aborted"
	case !r.Status.OK():
		return "failed"
	}
	return "ok"
}

func showRun(cmd *cobra.Command, db *report.SQLite, id string) error {
	ee, err := db.Events(cmd.Context(), id)
	if err != nil {
		return err
	}
	if len(ee) == 0 {
		return fmt.Errorf("history: no run %q recorded", id)
	}
	w := cmd.OutOrStdout()
	for _, e := range ee {
		printStored(w, e)
	}
	return nil
}

func printStored(w io.Writer, e report.Stored) {
	switch e.Kind {
	case "SuiteStarting", "TestStarting":
		return
	case "SuiteCompleted":
		fmt.Fprintf(w, "%s: completed\n", e.Suite)
		return
	case "SuiteAborted":
		fmt.Fprintf(w, "%s: aborted: %s\n", e.Suite, e.Error)
		return
	}
	fmt.Fprintf(w, "%s: %s: %s", e.Suite, e.Kind, e.Test)
	if e.Duration > 0 {
		fmt.Fprintf(w, " (%s)", e.Duration)
	}
	fmt.Fprintln(w)
	if e.Error != "" {
		fmt.Fprintf(w, "    %s\n", e.Error)
	}
}
