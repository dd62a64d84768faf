// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package path provides the isolating spec styles FunSpec and FreeSpec.

A path suite is declared by a builder function which holds the suite's
fixtures as local variables.  Instead of constructing the suite once and
running its tests against the same fixtures later, the builder is called
once per test: each call enters only the branches on the way to its
target test, executes that test and remembers which test comes next.
Every test therefore sees freshly initialized fixtures and only the side
effects of the branches which lexically enclose it.

Tests are executed while the suite is discovered, i.e. at the first call
of [Suite.TestNames], [Suite.Tags], [Suite.ExpectedTestCount],
[Suite.Run] or [Suite.RunTest].  Their results are registered in the
order the tests are written and each later call reports these results
without executing any test again.  Tag filters only decide what is
reported.

A builder must declare the same branches and tests in the same order on
every call; a suite whose structure changes between calls, e.g. a
branch found where a test was before, fails with a
[gospec.NotAllowedError].  Nesting a test or branch inside a test, using
a DSL value after its builder returned and duplicate test names are
reported as errors of the triggering call.

	func TestStack(t *testing.T) {
	    gospec.RunSpec(t, path.NewFunSpec("stack", func(s *path.FunSpec) {
	        stack := NewStack()
	        s.Describe("A Stack", func() {
	            s.It("is empty when created", func(t *gospec.T) {
	                t.True(stack.Empty())
	            })
	        })
	    }))
	}
*/
package path
