// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package spec provides the shared-fixture spec styles FunSpec, FreeSpec
and PropSpec.  Other than the styles of the path package a suite's
builder is called exactly once: it registers the suite's tests whose
bodies are executed later by [Suite.Run] or [Suite.RunTest].  All tests
of a suite share the fixtures of its builder and see each other's side
effects in the order they are run.

	suite := spec.NewFunSpec("config", func(s *spec.FunSpec) {
	    cfg := config.Default()
	    s.Describe("the default config", func() {
	        s.It("runs one suite at a time", func(t *gospec.T) {
	            t.Eq(1, cfg.Workers)
	        })
	    })
	})

Tag filters decide which tests are executed.
*/
package spec

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/slukits/gospec"
)

type state uint8

const (
	idle state = iota
	building
	built
	aborted
)

// Option configures a spec suite.
type Option func(*Suite)

// WithNested makes given specs nested suites of a spec suite which are
// run after its own tests.
func WithNested(ss ...gospec.Spec) Option {
	return func(s *Suite) { s.nested = append(s.nested, ss...) }
}

// Suite is a spec suite whose tests are registered by a single call of
// its builder and executed at run time.  Runs of a suite must not
// overlap, a run started while an other is going on fails with a
// [gospec.NotAllowedError].
type Suite struct {
	mutex   sync.Mutex
	name    string
	build   func(*registrar)
	state   state
	err     error
	reg     gospec.Registry
	running bool
	nested  []gospec.Spec
}

func newSuite(name string, build func(*registrar), oo []Option) *Suite {
	s := &Suite{name: name, build: build}
	for _, o := range oo {
		o(s)
	}
	return s
}

// registrar is the registration context the DSL values of a suite call
// into.  Test bodies run after the registration was closed, i.e. a test
// or branch nested inside a test fails with a
// [gospec.TestRegistrationClosedError].
type registrar struct {
	s     *Suite
	texts []string
}

func (r *registrar) ensureOpen(text, location string) {
	if r.s.reg.IsClosed() {
		panic(&gospec.TestRegistrationClosedError{
			Name: text, Location: location})
	}
}

func (r *registrar) branch(text, location string, body func()) {
	r.ensureOpen(text, location)
	r.texts = append(r.texts, text)
	defer func() { r.texts = r.texts[:len(r.texts)-1] }()
	body()
}

func (r *registrar) leaf(
	text string, body func(*gospec.T), tags []string, ignored bool,
	location string,
) {
	r.ensureOpen(text, location)
	name := text
	if len(r.texts) > 0 {
		name = strings.Join(r.texts, " ") + " " + text
	}
	err := r.s.reg.Register(gospec.Entry{
		Name:     name,
		Text:     text,
		Tags:     tags,
		Ignored:  ignored,
		Location: location,
		Body:     body,
	})
	if err != nil {
		panic(err)
	}
}

// ensure calls the builder if it wasn't called yet and returns the
// error of its registration phase.
func (s *Suite) ensure() error {
	s.mutex.Lock()
	switch s.state {
	case building:
		s.mutex.Unlock()
		return &gospec.NotAllowedError{Msg: fmt.Sprintf(
			"%s: registration is already running", s.name)}
	case built:
		defer s.mutex.Unlock()
		return s.err
	case aborted:
		s.mutex.Unlock()
		return fmt.Errorf("%w: %s", gospec.ErrDiscoveryAborted, s.name)
	}
	s.state = building
	s.mutex.Unlock()

	err := s.register()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.state, s.err = built, err
	return err
}

func (s *Suite) register() (err error) {
	r := &registrar{s: s}
	defer func() {
		s.reg.Close()
		v := recover()
		if v == nil {
			return
		}
		if gospec.IsRunAborting(v) {
			s.mutex.Lock()
			s.state = aborted
			s.mutex.Unlock()
			panic(v)
		}
		if vErr, ok := v.(error); ok && errors.Is(vErr, gospec.ErrNotAllowed) {
			err = vErr
			return
		}
		err = &gospec.ConstructionError{Suite: s.name, Cause: v}
	}()
	s.build(r)
	return nil
}

// SuiteName returns the name the suite was created with.
func (s *Suite) SuiteName() string { return s.name }

// TestNames returns the suite's test names in registration order.
func (s *Suite) TestNames() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.reg.Names(), nil
}

// Tags maps the names of tagged tests to their tags.
func (s *Suite) Tags() (map[string][]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.reg.Tags(), nil
}

// ExpectedTestCount returns the number of tests a run with given filter
// executes.
func (s *Suite) ExpectedTestCount(f gospec.Filter) (int, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	return s.reg.ExpectedTestCount(f), nil
}

// NestedSuites returns the suites nested with [WithNested].
func (s *Suite) NestedSuites() []gospec.Spec { return s.nested }

func (s *Suite) start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.running {
		return &gospec.NotAllowedError{Msg: fmt.Sprintf(
			"%s: suite is already running", s.name)}
	}
	s.running = true
	return nil
}

func (s *Suite) stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.running = false
}

// Run executes the tests passing args' filter followed by the nested
// suites.  Is a test name given only that test is executed regardless
// of the filter's include tags and nested suites are not run.
func (s *Suite) Run(testName string, args gospec.Args) (gospec.Status, error) {
	em := gospec.NewEmitter(s.name, args)
	em.SuiteStarting()
	if err := s.ensure(); err != nil {
		em.SuiteAborted(err)
		return em.Status(), err
	}
	var nested gospec.Status
	err := s.runTests(em, testName)
	if err == nil && testName == "" {
		nested, err = s.RunNestedSuites(em.Args())
	}
	if err != nil {
		em.SuiteAborted(err)
	} else {
		em.SuiteCompleted()
	}
	status := em.Status()
	status.Add(nested)
	return status, err
}

// RunTests executes the suite's tests passing args' filter or the test
// with given name if not zero.  No suite events are reported.
func (s *Suite) RunTests(
	testName string, args gospec.Args,
) (gospec.Status, error) {
	if err := s.ensure(); err != nil {
		return gospec.Status{}, err
	}
	em := gospec.NewEmitter(s.name, args)
	err := s.runTests(em, testName)
	return em.Status(), err
}

// RunTest executes the test with given name.
func (s *Suite) RunTest(
	testName string, args gospec.Args,
) (gospec.Status, error) {
	if testName == "" {
		return gospec.Status{}, fmt.Errorf(
			"%w: empty test name", gospec.ErrNoSuchTest)
	}
	return s.RunTests(testName, args)
}

// RunNestedSuites runs the nested suites in the order they were given.
func (s *Suite) RunNestedSuites(args gospec.Args) (gospec.Status, error) {
	var status gospec.Status
	for _, n := range s.nested {
		st, err := n.Run("", args)
		status.Add(st)
		if err != nil {
			return status, fmt.Errorf("%s: nested: %w", s.name, err)
		}
	}
	return status, nil
}

func (s *Suite) runTests(em *gospec.Emitter, testName string) error {
	if err := s.start(); err != nil {
		return err
	}
	defer s.stop()
	if testName != "" {
		e, ok := s.reg.Get(testName)
		if !ok {
			return fmt.Errorf("%w: %s", gospec.ErrNoSuchTest, testName)
		}
		return s.exec(em, e)
	}
	var err error
	s.reg.For(func(e *gospec.Entry) {
		if err != nil || em.Args().Filter.Excludes(e.Tags) {
			return
		}
		err = s.exec(em, e)
	})
	return err
}

// exec executes given entry's body and reports its result.  A DSL
// misuse inside the body is returned as error.
func (s *Suite) exec(em *gospec.Emitter, e *gospec.Entry) (err error) {
	if e.Ignored {
		em.Ignored(e)
		return nil
	}
	if e.Body == nil {
		em.Completed(e, gospec.Result{Outcome: gospec.Pending{}})
		return nil
	}
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		vErr, ok := v.(error)
		if !ok || !errors.Is(vErr, gospec.ErrNotAllowed) {
			panic(v)
		}
		err = vErr
	}()
	em.Completed(e, gospec.Exec(e.Body))
	return nil
}

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
