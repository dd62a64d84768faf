// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"time"

	"golang.org/x/exp/slices"
)

// IgnoreTag is carried by every registered test which is ignored.
const IgnoreTag = "gospec.Ignore"

// Entry is a registered test.  Outcome, Duration, Infos and Markups are
// only set for tests which were executed at registration, i.e. by the
// path styles.
type Entry struct {
	Name     string
	Text     string
	Tags     []string
	Ignored  bool
	Location string
	Outcome  Outcome
	Duration time.Duration
	Infos    []string
	Markups  []string

	// Body is the test function of a test which runs at run time.
	Body func(*T)
}

// Registry is an append-only, insertion-ordered collection of a
// suite's tests.  Registering is not concurrency save; once closed a
// registry is read-only and may be read concurrently.
type Registry struct {
	entries []*Entry
	index   map[string]int
	closed  bool
}

// Register appends given entry failing with a [DuplicateTestNameError]
// if its name is already registered or with a
// [TestRegistrationClosedError] if the registry was closed.
func (r *Registry) Register(e Entry) error {
	if r.closed {
		return &TestRegistrationClosedError{
			Name: e.Name, Location: e.Location}
	}
	if r.index == nil {
		r.index = map[string]int{}
	}
	if _, ok := r.index[e.Name]; ok {
		return &DuplicateTestNameError{Name: e.Name, Location: e.Location}
	}
	if e.Ignored && !slices.Contains(e.Tags, IgnoreTag) {
		e.Tags = append(slices.Clone(e.Tags), IgnoreTag)
	}
	r.index[e.Name] = len(r.entries)
	r.entries = append(r.entries, &e)
	return nil
}

// Has reports if a test with given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Close ends the registration phase.
func (r *Registry) Close() { r.closed = true }

// IsClosed reports if the registration phase has ended.
func (r *Registry) IsClosed() bool { return r.closed }

// Len returns the number of registered tests.
func (r *Registry) Len() int { return len(r.entries) }

// Get returns the entry registered for given name.
func (r *Registry) Get(name string) (*Entry, bool) {
	idx, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[idx], true
}

// Names returns the registered test names in registration order.
func (r *Registry) Names() []string {
	nn := make([]string, len(r.entries))
	for i, e := range r.entries {
		nn[i] = e.Name
	}
	return nn
}

// Tags maps the names of tests having tags to their tags.
func (r *Registry) Tags() map[string][]string {
	tt := map[string][]string{}
	for _, e := range r.entries {
		if len(e.Tags) == 0 {
			continue
		}
		tt[e.Name] = slices.Clone(e.Tags)
	}
	return tt
}

// For calls back for each registered entry in registration order.
func (r *Registry) For(cb func(*Entry)) {
	for _, e := range r.entries {
		cb(e)
	}
}

// ExpectedTestCount returns the number of registered tests which are
// not ignored and not filtered out by given filter.
func (r *Registry) ExpectedTestCount(f Filter) int {
	n := 0
	for _, e := range r.entries {
		if f.Excludes(e.Tags) || e.Ignored {
			continue
		}
		n++
	}
	return n
}

// Result returns the recorded result of an executed entry.
func (e *Entry) Result() Result {
	return Result{
		Outcome:  e.Outcome,
		Duration: e.Duration,
		Infos:    e.Infos,
		Markups:  e.Markups,
	}
}
