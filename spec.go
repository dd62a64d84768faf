// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"strings"
	"testing"
)

// Spec is implemented by the suites of the spec styles, e.g. the ones
// of the path and spec packages.  It is what runners, IDEs and the
// gospec command use to query and run a suite.
type Spec interface {
	// SuiteName is the name of the spec which is reported with each
	// of its events.
	SuiteName() string

	// TestNames returns the names of the spec's tests in the order
	// they are written.
	TestNames() ([]string, error)

	// Tags maps test names to their tags.
	Tags() (map[string][]string, error)

	// ExpectedTestCount returns the number of tests a Run with given
	// filter reports as executed.
	ExpectedTestCount(Filter) (int, error)

	// Run reports all tests passing args' filter or the test with
	// given name if not zero.
	Run(testName string, args Args) (Status, error)

	// RunTest reports the test with given name.
	RunTest(testName string, args Args) (Status, error)

	// NestedSuites returns the specs nested in a spec.
	NestedSuites() []Spec
}

// RunSpec runs given spec with given filter and reports each of its
// tests as sub-test of given testing.T.  Canceled, pending and ignored
// tests are reported as skipped sub-tests.
func RunSpec(t *testing.T, s Spec, f ...Filter) Status {
	t.Helper()
	args := Args{Reporter: goReporter{t: t}}
	if len(f) > 0 {
		args.Filter = f[0]
	}
	status, err := s.Run("", args)
	if err != nil {
		t.Fatalf("gospec: %s: %v", s.SuiteName(), err)
	}
	return status
}

// goReporter maps the events of a spec run to sub-tests of a
// testing.T.
type goReporter struct{ t *testing.T }

func (r goReporter) Report(e Event) {
	switch e.Kind {
	case SuiteAborted:
		r.t.Errorf("gospec: %s: aborted: %v", e.Suite, e.Err)
		return
	case TestStarting, SuiteStarting, SuiteCompleted:
		return
	}
	r.t.Run(e.Test, func(t *testing.T) {
		for _, info := range e.Infos {
			t.Log(info)
		}
		if len(e.Markups) > 0 {
			t.Log(strings.Join(e.Markups, "\n"))
		}
		switch e.Kind {
		case TestFailed:
			if e.Location != "" {
				t.Errorf("%s: %v", e.Location, e.Err)
				return
			}
			t.Error(e.Err)
		case TestCanceled:
			t.Skip(e.Err)
		case TestPending:
			t.Skip(e.Outcome)
		case TestIgnored:
			t.Skip("ignored")
		}
	})
}
