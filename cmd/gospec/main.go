// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command gospec lists and runs the example specs of this module:
//
//	gospec list
//	gospec run --include unit stack/*
//	gospec run --db runs.db && gospec history --db runs.db
package main

import (
	"fmt"
	"os"

	_ "github.com/slukits/gospec/examples/stack"
	"github.com/slukits/gospec/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
