// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gospec augments the go testing framework with specification
// styles aiding its user on matter of:
//   - naming
//   - isolation
//   - documenting/specifying
//   - reporting
//
// gospec offers two families of suites.  Method suites embed
// [gospec.Suite] and are run by [gospec.Run] from a go test function:
//
//	import github.com/slukits/gospec
//
//	type TestedSubject struct{ gospec.Suite }
//
//	func (s *TestedSubject) Should_have_tested_behavior(t *gospec.T) {
//	    // test implementation
//	}
//
//	func TestTestedSubject(t *testing.T) {
//	    gospec.Run(&TestedSubject{}, t)
//	}
//
// A suite test is a method of a gospec.Suite-embedder which is public,
// not special, and has exactly one argument of type *gospec.T.  Special
// methods are Init, SetUp, TearDown, Finalize.  Init and Finalize are
// executed before respectively after any other method and get a
// *gospec.S.  SetUp and TearDown are executed before respectively after
// each test.  If all tests of a suite should run concurrently:
//
//	func (s *TestedSubject) SetUp(t *gospec.T) {
//	    t.Parallel()
//	}
//
// Spec suites on the other hand are built from nested descriptions,
// e.g. with the FunSpec of the path package:
//
//	var StackSpec = path.NewFunSpec("stack", func(s *path.FunSpec) {
//	    s.Describe("A Stack", func() {
//	        stack := New()
//	        s.It("is empty when created", func(t *gospec.T) {
//	            t.True(stack.Empty())
//	        })
//	        s.Describe("after a push", func() {
//	            stack.Push(9)
//	            s.It("has size 1", func(t *gospec.T) {
//	                t.Eq(1, stack.Size())
//	            })
//	        })
//	    })
//	})
//
// The suites of the path package isolate their tests by rebuilding the
// suite for each test and executing only the descriptions on the path
// to that test, i.e. every test sees fresh instances of the variables
// its enclosing descriptions declare.  The suites of the spec package
// register their tests once and execute them later without isolation.
// Both implement [gospec.Spec] which is what [gospec.RunSpec], the
// catalog package and the gospec command use to list, filter and run a
// suite.
//
// A test ends with an [Outcome]: [Succeeded], [Failed], [Canceled] or
// [Pending].  [Exec] executes a test body with a recording T and
// classifies its panics into outcomes while run-aborting errors (see
// [AbortRun]) and DSL misuse errors (see [ErrNotAllowed]) propagate.  A
// [FutureOutcome] is the asynchronous variant of an outcome whose
// combinators derive new futures without ever changing the original.
//
// The outcomes of a run are reported as [Event]s to a [Reporter] whose
// implementations live in the report package.  A [Filter] decides by
// tags which tests are reported; it never decides which tests are
// executed.
package gospec
