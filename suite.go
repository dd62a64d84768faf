// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"reflect"
	"strings"
	"testing"
)

// Suite implements the private methods of the SuiteEmbedder interface.
// I.e. to run the tests of a method suite using [Run] embed this type:
//
//	type MySuite struct { gospec.Suite }
//
//	// optional Init(*gospec.S)
//	// optional SetUp(*gospec.T)
//	// optional TearDown(*gospec.T)
//
//	// ... the suite-tests as methods of *MySuite ...
//
//	// optional Finalize(*gospec.S)
//
//	func TestMySuite(t *testing.T) { gospec.Run(&MySuite{}, t) }
type Suite struct {
	self            interface{}
	value           reflect.Value
	rtype           reflect.Type
	setUp, tearDown *reflect.Method
}

const special = "SetUpTearDownInitFinalize"

// SuiteEmbedder is automatically implemented by embedding a
// Suite-instance.
type SuiteEmbedder interface {
	init(interface{}, *testing.T) *Suite
}

// SuiteLogging implementation of a suite-embedder overwrites the
// logging of T and S instances passed to its methods with the function
// returned by Logger.
type SuiteLogging interface {
	Logger() func(args ...interface{})
}

// SuiteErrorer overwrites default test-error handling which defaults to
// an Error-call of the wrapped testing.T-instance.
type SuiteErrorer interface {
	Error() func(...interface{})
}

// SuiteCanceler overwrites default test-cancellation handling which
// defaults to a FailNow-call of the wrapped testing.T-instance.
type SuiteCanceler interface {
	Cancel() func()
}

// init reflects given suite once and executes its Init-method while its
// Finalize-method is registered as cleanup of given testing.T.
func (s *Suite) init(self interface{}, t *testing.T) *Suite {
	s.self = self
	s.value = reflect.ValueOf(self)
	s.rtype = reflect.TypeOf(self)
	for i := 0; i < s.rtype.NumMethod(); i++ {
		m := s.rtype.Method(i)
		switch m.Name {
		case "SetUp":
			s.setUp = &m
		case "TearDown":
			s.tearDown = &m
		case "Init":
			s.call(&m, reflect.ValueOf(s.newS(t, InitPrefix)))
		case "Finalize":
			fs := reflect.ValueOf(s.newS(t, FinalPrefix))
			t.Cleanup(func() { s.call(&m, fs) })
		}
	}
	return s
}

func (s *Suite) call(m *reflect.Method, arg reflect.Value) {
	m.Func.Call([]reflect.Value{s.value, arg})
}

func (s *Suite) newS(t *testing.T, prefix string) *S {
	ss := &S{t: t, prefix: prefix, logger: t.Log, canceler: t.FailNow}
	if l, ok := s.self.(SuiteLogging); ok {
		ss.logger = l.Logger()
	}
	if c, ok := s.self.(SuiteCanceler); ok {
		ss.canceler = c.Cancel()
	}
	return ss
}

func (s *Suite) newT(t *testing.T) *T {
	st := newGoT(t)
	if l, ok := s.self.(SuiteLogging); ok {
		st.logger = l.Logger()
	}
	if e, ok := s.self.(SuiteErrorer); ok {
		st.errorer = e.Error()
	}
	if c, ok := s.self.(SuiteCanceler); ok {
		st.canceler = c.Cancel()
	}
	if s.tearDown != nil {
		st.tearDown = func(t *T) { s.call(s.tearDown, reflect.ValueOf(t)) }
	}
	return st
}

// Run sets up the embedded Suite-instance and runs all methods of given
// suite embedder as sub-tests of given testing.T which are public, have
// exactly one argument and are not special:
//
//   - Init(*gospec.S): run before any other method of a suite
//   - SetUp(*gospec.T): run before every suite-test
//   - TearDown(*gospec.T): run after every suite-test
//   - Finalize(*gospec.S): run after any other method of a suite
func Run(suite SuiteEmbedder, t *testing.T) {
	s := suite.init(suite, t)
	for i := 0; i < s.rtype.NumMethod(); i++ {
		method := s.rtype.Method(i)
		if method.Type.NumIn() != 2 {
			continue
		}
		if strings.Contains(special, method.Name) {
			continue
		}
		t.Run(method.Name, s.subTest(method))
	}
}

func (s *Suite) subTest(test reflect.Method) func(*testing.T) {
	return func(t *testing.T) {
		st := s.newT(t)
		stv := reflect.ValueOf(st)
		if s.setUp != nil {
			s.call(s.setUp, stv)
		}
		test.Func.Call([]reflect.Value{s.value, stv})
		if st.tearDown != nil {
			st.tearDown(st)
		}
	}
}
