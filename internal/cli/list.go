// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/slukits/gospec"
	"github.com/spf13/cobra"
)

func newListCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "list [patterns]",
		Short: "List suites with their tests and tags",
		Long: `Lists the suites matching given doublestar patterns, all suites if
none is given, with the names of their tests and the tests' tags.
Listing a path suite runs its discovery.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := env.catalog.Select(args...)
			if err != nil {
				return err
			}
			if len(specs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No suites found.")
				return nil
			}
			for _, s := range specs {
				if err := list(cmd.OutOrStdout(), s, ""); err != nil {
					return fmt.Errorf("failed to list %s: %w",
						s.SuiteName(), err)
				}
			}
			return nil
		},
	}
}

func list(w io.Writer, s gospec.Spec, indent string) error {
	names, err := s.TestNames()
	if err != nil {
		return err
	}
	tags, err := s.Tags()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s%s\n", indent, s.SuiteName())
	for _, n := range names {
		if tt := tags[n]; len(tt) > 0 {
			fmt.Fprintf(w, "%s  %s [%s]\n", indent, n, strings.Join(tt, ", "))
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", indent, n)
	}
	for _, nested := range s.NestedSuites() {
		if err := list(w, nested, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}
