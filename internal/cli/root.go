// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the commands of the gospec binary which lists
// and runs the specs registered in a catalog.
package cli

import (
	"io"
	"os"

	"github.com/slukits/gospec/internal/logging"
	"github.com/slukits/gospec/pkg/catalog"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

// environment provides the commands with the specs they work on and
// the logger of the binary.  Tests replace it.
type environment struct {
	catalog *catalog.Catalog
	logger  *logging.Logger
}

func newRootCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gospec",
		Short: "List and run the specs of a gospec binary",
		Long: `gospec lists and runs the specification suites registered in its
catalog.  Suites are selected by doublestar patterns on their names,
tests by the include and exclude tags of a run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	cmd.SetVersionTemplate("gospec version {{.Version}}\n")
	cmd.AddCommand(newListCmd(env), newRunCmd(env), newHistoryCmd())
	return cmd
}

// Execute runs the gospec command on the default catalog.
func Execute() error {
	return execute(os.Args[1:], os.Stdout, &environment{
		catalog: catalog.Default(),
		logger:  logging.New(os.Stderr),
	})
}

func execute(args []string, out io.Writer, env *environment) error {
	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd.Execute()
}
