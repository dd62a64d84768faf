// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spec

import "github.com/slukits/gospec"

// FunSpec is the DSL handed to the builder of a shared-fixture FunSpec.
type FunSpec struct{ r *registrar }

// NewFunSpec returns a suite with given name whose tests are registered
// by given builder at the first query or run of the suite.
func NewFunSpec(name string, build func(*FunSpec), oo ...Option) *Suite {
	return newSuite(name, func(r *registrar) {
		build(&FunSpec{r: r})
	}, oo)
}

// Describe groups the tests registered by given body under given
// description.  The body is executed at once.
func (s *FunSpec) Describe(description string, body func()) {
	s.r.branch(description, caller(), body)
}

// It registers a test with given text, body and tags.
func (s *FunSpec) It(text string, body func(*gospec.T), tags ...string) {
	s.r.leaf(text, body, tags, false, caller())
}

// They is It for texts in plural.
func (s *FunSpec) They(text string, body func(*gospec.T), tags ...string) {
	s.r.leaf(text, body, tags, false, caller())
}

// Ignore registers a test which is reported as ignored.
func (s *FunSpec) Ignore(text string, body func(*gospec.T), tags ...string) {
	s.r.leaf(text, body, tags, true, caller())
}

// FreeSpec is the DSL handed to the builder of a shared-fixture
// FreeSpec.
type FreeSpec struct{ r *registrar }

// NewFreeSpec returns a suite with given name whose tests are registered
// by given builder at the first query or run of the suite.
func NewFreeSpec(name string, build func(*FreeSpec), oo ...Option) *Suite {
	return newSuite(name, func(r *registrar) {
		build(&FreeSpec{r: r})
	}, oo)
}

// Section groups the tests registered by given body under given text.
func (s *FreeSpec) Section(text string, body func()) {
	s.r.branch(text, caller(), body)
}

// In registers a test with given text, body and tags.
func (s *FreeSpec) In(text string, body func(*gospec.T), tags ...string) {
	s.r.leaf(text, body, tags, false, caller())
}

// Is registers a pending test.
func (s *FreeSpec) Is(text string, tags ...string) {
	s.r.leaf(text, nil, tags, false, caller())
}

// Ignore registers a test which is reported as ignored.
func (s *FreeSpec) Ignore(text string, body func(*gospec.T), tags ...string) {
	s.r.leaf(text, body, tags, true, caller())
}

// PropSpec is the DSL handed to the builder of a PropSpec whose tests
// are properties, typically checked with [prop.ForAll]:
//
//	spec.NewPropSpec("sum", func(s *spec.PropSpec) {
//	    s.Property("is commutative", func(t *gospec.T) {
//	        t.FatalOn(prop.ForAll(prop.Default(), prop.IntPairs(),
//	            func(p [2]int) bool { return p[0]+p[1] == p[1]+p[0] }))
//	    })
//	})
type PropSpec struct{ r *registrar }

// NewPropSpec returns a suite with given name whose properties are
// registered by given builder at the first query or run of the suite.
func NewPropSpec(name string, build func(*PropSpec), oo ...Option) *Suite {
	return newSuite(name, func(r *registrar) {
		build(&PropSpec{r: r})
	}, oo)
}

// Property registers a property with given name, body and tags.
func (s *PropSpec) Property(
	name string, body func(*gospec.T), tags ...string,
) {
	s.r.leaf(name, body, tags, false, caller())
}

// IgnoreProperty registers a property which is reported as ignored.
func (s *PropSpec) IgnoreProperty(
	name string, body func(*gospec.T), tags ...string,
) {
	s.r.leaf(name, body, tags, true, caller())
}
