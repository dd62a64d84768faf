// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package path

import (
	"github.com/slukits/gospec"
	"github.com/slukits/gospec/internal/engine"
)

// FreeSpec is the DSL handed to a path FreeSpec's builder.  Sections
// nest freely and each section's text becomes part of the names of the
// tests inside it:
//
//	path.NewFreeSpec("stack", func(s *path.FreeSpec) {
//	    s.Section("A Stack", func() {
//	        stack := NewStack()
//	        s.Section("when empty", func() {
//	            s.In("should have size 0", func(t *gospec.T) {
//	                t.Eq(0, stack.Size())
//	            })
//	            s.Is("should complain on pop")
//	        })
//	    })
//	})
type FreeSpec struct{ tr *engine.Tracker }

// NewFreeSpec returns the initial instance of a path FreeSpec with
// given name whose constructions call given builder.
func NewFreeSpec(name string, build func(*FreeSpec), oo ...Option) *Suite {
	return newSuite(name, func(tr *engine.Tracker) {
		build(&FreeSpec{tr: tr})
	}, oo)
}

// Section declares a branch with given text.
func (s *FreeSpec) Section(text string, body func()) {
	s.tr.Branch(text, caller(), body)
}

// In declares a test with given text and tags.
func (s *FreeSpec) In(text string, body func(*gospec.T), tags ...string) {
	s.tr.Leaf(engine.Leaf{
		Text: text, Body: body, Tags: tags, Location: caller()})
}

// Is declares a pending test, i.e. a test which is written down but not
// implemented yet.
func (s *FreeSpec) Is(text string, tags ...string) {
	s.tr.Leaf(engine.Leaf{
		Text: text, Body: pending, Tags: tags, Location: caller()})
}

func pending(t *gospec.T) { t.Pending() }

// Ignore declares a test which is reported as ignored; its body is
// never executed.
func (s *FreeSpec) Ignore(text string, body func(*gospec.T), tags ...string) {
	s.tr.Leaf(engine.Leaf{Text: text, Body: body, Tags: tags,
		Ignored: true, Location: caller()})
}
