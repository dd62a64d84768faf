// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package path

import (
	"github.com/slukits/gospec"
	"github.com/slukits/gospec/internal/engine"
)

// FunSpec is the DSL handed to a path FunSpec's builder.  Each
// construction of the suite gets its own FunSpec which must not be used
// after the builder returned.
type FunSpec struct{ tr *engine.Tracker }

// NewFunSpec returns the initial instance of a path FunSpec with given
// name whose constructions call given builder:
//
//	path.NewFunSpec("stack", func(s *path.FunSpec) {
//	    s.Describe("A Stack", func() {
//	        stack := NewStack()
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
// Both tests see a new stack; the push isn't observed by the first.
func NewFunSpec(name string, build func(*FunSpec), oo ...Option) *Suite {
	return newSuite(name, func(tr *engine.Tracker) {
		build(&FunSpec{tr: tr})
	}, oo)
}

// Describe declares a branch with given description.  Its body is only
// executed by constructions whose target is inside it.
func (s *FunSpec) Describe(description string, body func()) {
	s.tr.Branch(description, caller(), body)
}

// It declares a test with given text and tags whose full name is the
// concatenation of its enclosing descriptions and given text.
func (s *FunSpec) It(text string, body func(*gospec.T), tags ...string) {
	s.tr.Leaf(engine.Leaf{
		Text: text, Body: body, Tags: tags, Location: caller()})
}

// They is It for texts in plural.
func (s *FunSpec) They(text string, body func(*gospec.T), tags ...string) {
	s.tr.Leaf(engine.Leaf{
		Text: text, Body: body, Tags: tags, Location: caller()})
}

// Ignore declares a test which is reported as ignored; its body is
// never executed.
func (s *FunSpec) Ignore(text string, body func(*gospec.T), tags ...string) {
	s.tr.Leaf(engine.Leaf{Text: text, Body: body, Tags: tags,
		Ignored: true, Location: caller()})
}
