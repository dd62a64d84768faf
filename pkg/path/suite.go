// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package path

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/slukits/gospec"
	"github.com/slukits/gospec/internal/engine"
)

// Observer is informed about the constructions of a path suite's
// discovery, see [WithObserver].
type Observer = engine.Observer

// Path identifies a branch or leaf of a suite by the child indices
// leading to it.
type Path = engine.Path

// Option configures a path suite.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver makes given observer receive a suite's construction
// notifications.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// Suite is the initial instance of a path-style suite.  It owns the
// registry all results of the suite's constructions are merged into and
// implements [gospec.Spec] reporting these results.  The first call of
// any of its query or run methods triggers the discovery which executes
// every test exactly once; later calls report the registered results
// without executing anything.
type Suite struct {
	name string
	eng  *engine.Engine
}

func newSuite(
	name string, construct func(*engine.Tracker), oo []Option,
) *Suite {
	opts := &options{}
	for _, o := range oo {
		o(opts)
	}
	return &Suite{name: name, eng: engine.New(name, construct, opts.observer)}
}

// SuiteName returns the name the suite was created with.
func (s *Suite) SuiteName() string { return s.name }

// Observe makes given observer receive the suite's construction
// notifications.  It fails with a [gospec.NotAllowedError] if the
// discovery was already triggered.
func (s *Suite) Observe(o Observer) error { return s.eng.Observe(o) }

// Constructions returns the number of constructions the discovery
// needed so far.
func (s *Suite) Constructions() int { return s.eng.Constructions() }

// TestNames returns the names of the suite's tests in the order they
// are written.
func (s *Suite) TestNames() ([]string, error) {
	if err := s.eng.Ensure(); err != nil {
		return nil, err
	}
	return s.eng.Registry().Names(), nil
}

// Tags maps the names of tagged tests to their tags.
func (s *Suite) Tags() (map[string][]string, error) {
	if err := s.eng.Ensure(); err != nil {
		return nil, err
	}
	return s.eng.Registry().Tags(), nil
}

// ExpectedTestCount returns the number of tests which are neither
// ignored nor filtered out by given filter.
func (s *Suite) ExpectedTestCount(f gospec.Filter) (int, error) {
	if err := s.eng.Ensure(); err != nil {
		return 0, err
	}
	return s.eng.Registry().ExpectedTestCount(f), nil
}

// Run reports the registered results of all tests not filtered out by
// args' filter in the order they are written.  Is a test name given
// only that test is reported regardless of the filter's include tags.
// Reporting doesn't execute any test.
func (s *Suite) Run(testName string, args gospec.Args) (gospec.Status, error) {
	em := gospec.NewEmitter(s.name, args)
	em.SuiteStarting()
	if err := s.eng.Ensure(); err != nil {
		em.SuiteAborted(err)
		return em.Status(), err
	}
	reg := s.eng.Registry()
	if testName != "" {
		e, ok := reg.Get(testName)
		if !ok {
			err := fmt.Errorf("%w: %s", gospec.ErrNoSuchTest, testName)
			em.SuiteAborted(err)
			return em.Status(), err
		}
		report(em, e)
		em.SuiteCompleted()
		return em.Status(), nil
	}
	reg.For(func(e *gospec.Entry) {
		if args.Filter.Excludes(e.Tags) {
			return
		}
		report(em, e)
	})
	em.SuiteCompleted()
	return em.Status(), nil
}

// RunTest reports the registered result of the test with given name.
func (s *Suite) RunTest(
	testName string, args gospec.Args,
) (gospec.Status, error) {
	if err := s.eng.Ensure(); err != nil {
		return gospec.Status{}, err
	}
	e, ok := s.eng.Registry().Get(testName)
	if !ok {
		return gospec.Status{}, fmt.Errorf(
			"%w: %s", gospec.ErrNoSuchTest, testName)
	}
	em := gospec.NewEmitter(s.name, args)
	report(em, e)
	return em.Status(), nil
}

func report(em *gospec.Emitter, e *gospec.Entry) {
	if e.Ignored {
		em.Ignored(e)
		return
	}
	em.Completed(e, e.Result())
}

// RunTests is disabled for path suites whose tests run during their
// discovery.
func (s *Suite) RunTests(string, gospec.Args) (gospec.Status, error) {
	return gospec.Status{}, fmt.Errorf(
		"%w: %s: RunTests of a path suite", gospec.ErrUnsupported, s.name)
}

// RunNestedSuites is disabled since path suites can't have nested
// suites.
func (s *Suite) RunNestedSuites(gospec.Args) (gospec.Status, error) {
	return gospec.Status{}, fmt.Errorf(
		"%w: %s: RunNestedSuites of a path suite",
		gospec.ErrUnsupported, s.name)
}

// NestedSuites returns nil; path suites can't have nested suites.
func (s *Suite) NestedSuites() []gospec.Spec { return nil }

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
