// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slices"
)

// EventKind discriminates the events a reporter receives.
type EventKind uint8

const (
	SuiteStarting EventKind = iota + 1
	TestStarting
	TestSucceeded
	TestFailed
	TestCanceled
	TestPending
	TestIgnored
	SuiteCompleted
	SuiteAborted
)

var eventNames = map[EventKind]string{
	SuiteStarting:  "SuiteStarting",
	TestStarting:   "TestStarting",
	TestSucceeded:  "TestSucceeded",
	TestFailed:     "TestFailed",
	TestCanceled:   "TestCanceled",
	TestPending:    "TestPending",
	TestIgnored:    "TestIgnored",
	SuiteCompleted: "SuiteCompleted",
	SuiteAborted:   "SuiteAborted",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is fired to a [Reporter] for each test and each suite of a run.
type Event struct {
	Kind     EventKind
	RunID    string
	Suite    string
	Test     string
	Text     string
	Location string
	Duration time.Duration
	Outcome  Outcome
	Err      error
	Infos    []string
	Markups  []string
	Time     time.Time
}

// Reporter receives the events of a run.  A reporter shared by suites
// running concurrently must be concurrency save.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to a [Reporter].
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// outcomeEvent maps given outcome to the event reporting it.
func outcomeEvent(o Outcome) (EventKind, error) {
	switch o := o.(type) {
	case *Failed:
		return TestFailed, o.Err
	case *Canceled:
		return TestCanceled, o.Err
	case Pending:
		return TestPending, nil
	}
	return TestSucceeded, nil
}

// Filter decides which registered tests are reported, never which are
// executed.  A nil Include accepts any test; otherwise a test needs at
// least one of the included tags.  Tests having any of the excluded
// tags are filtered out.  [IgnoreTag] is ignored by both checks.
type Filter struct {
	Include []string
	Exclude []string
}

// Excludes reports if a test with given tags is filtered out.
func (f Filter) Excludes(tags []string) bool {
	included := f.Include == nil
	for _, t := range tags {
		if t == IgnoreTag {
			continue
		}
		if slices.Contains(f.Exclude, t) {
			return true
		}
		if !included && slices.Contains(f.Include, t) {
			included = true
		}
	}
	return !included
}

// Status sums up the reported outcomes of a run.
type Status struct {
	Succeeded int
	Failed    int
	Canceled  int
	Pending   int
	Ignored   int
	Aborted   bool
}

// OK is true iff no test failed and no suite aborted.
func (s Status) OK() bool { return s.Failed == 0 && !s.Aborted }

// Add sums given status into s.
func (s *Status) Add(o Status) {
	s.Succeeded += o.Succeeded
	s.Failed += o.Failed
	s.Canceled += o.Canceled
	s.Pending += o.Pending
	s.Ignored += o.Ignored
	s.Aborted = s.Aborted || o.Aborted
}

func (s *Status) count(k EventKind) {
	switch k {
	case TestSucceeded:
		s.Succeeded++
	case TestFailed:
		s.Failed++
	case TestCanceled:
		s.Canceled++
	case TestPending:
		s.Pending++
	case TestIgnored:
		s.Ignored++
	}
}

// Args are the arguments of a suite's run.  A zero Args reports to
// nowhere, filters nothing and gets a fresh run id.
type Args struct {
	Reporter Reporter
	Filter   Filter
	RunID    string
}

// NewRunID returns a new lexically sortable run id.
func NewRunID() string { return ulid.Make().String() }

// Emitter fires the events of one suite run to its args' reporter and
// keeps track of the run's status.
type Emitter struct {
	mutex  sync.Mutex
	suite  string
	args   Args
	status Status
}

// NewEmitter returns an emitter for a run of given suite.
func NewEmitter(suite string, args Args) *Emitter {
	if args.RunID == "" {
		args.RunID = NewRunID()
	}
	return &Emitter{suite: suite, args: args}
}

// Args returns the emitter's args with their run id set.
func (e *Emitter) Args() Args { return e.args }

// Status returns the status of the reported events so far.
func (e *Emitter) Status() Status {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.status
}

func (e *Emitter) fire(evt Event) {
	evt.RunID, evt.Suite, evt.Time = e.args.RunID, e.suite, time.Now()
	e.mutex.Lock()
	e.status.count(evt.Kind)
	if evt.Kind == SuiteAborted {
		e.status.Aborted = true
	}
	e.mutex.Unlock()
	if e.args.Reporter != nil {
		e.args.Reporter.Report(evt)
	}
}

// SuiteStarting reports the start of the suite run.
func (e *Emitter) SuiteStarting() { e.fire(Event{Kind: SuiteStarting}) }

// SuiteCompleted reports the end of the suite run.
func (e *Emitter) SuiteCompleted() { e.fire(Event{Kind: SuiteCompleted}) }

// SuiteAborted reports that the suite run ended with given error.
func (e *Emitter) SuiteAborted(err error) {
	e.fire(Event{Kind: SuiteAborted, Err: err})
}

// Ignored reports given test as ignored.
func (e *Emitter) Ignored(entry *Entry) {
	e.fire(Event{
		Kind:     TestIgnored,
		Test:     entry.Name,
		Text:     entry.Text,
		Location: entry.Location,
	})
}

// Completed reports the start of given test followed by given result.
func (e *Emitter) Completed(entry *Entry, r Result) {
	e.fire(Event{
		Kind:     TestStarting,
		Test:     entry.Name,
		Text:     entry.Text,
		Location: entry.Location,
	})
	kind, err := outcomeEvent(r.Outcome)
	e.fire(Event{
		Kind:     kind,
		Test:     entry.Name,
		Text:     entry.Text,
		Location: entry.Location,
		Duration: r.Duration,
		Outcome:  r.Outcome,
		Err:      err,
		Infos:    r.Infos,
		Markups:  r.Markups,
	})
}
