// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec_test

import (
	"errors"
	"sync"
	"testing"

	. "github.com/slukits/gospec"
)

type filter struct{ Suite }

func (s *filter) SetUp(t *T) { t.Parallel() }

func (s *filter) Includes_everything_by_default(t *T) {
	t.False(Filter{}.Excludes(nil))
	t.False(Filter{}.Excludes([]string{"slow"}))
}

func (s *filter) Requires_an_included_tag(t *T) {
	f := Filter{Include: []string{"unit"}}
	t.False(f.Excludes([]string{"slow", "unit"}))
	t.True(f.Excludes([]string{"slow"}))
	t.True(f.Excludes(nil))
	t.True(Filter{Include: []string{}}.Excludes([]string{"unit"}))
}

func (s *filter) Excludes_before_it_includes(t *T) {
	f := Filter{Include: []string{"unit"}, Exclude: []string{"slow"}}
	t.True(f.Excludes([]string{"unit", "slow"}))
}

func (s *filter) Skips_the_ignore_tag(t *T) {
	t.False(Filter{Exclude: []string{IgnoreTag}}.Excludes(
		[]string{IgnoreTag}))
	t.True(Filter{Include: []string{IgnoreTag}}.Excludes(
		[]string{IgnoreTag}))
}

func TestFilter(t *testing.T) { Run(&filter{}, t) }

type status struct{ Suite }

func (s *status) SetUp(t *T) { t.Parallel() }

func (s *status) Is_ok_without_failures_or_aborts(t *T) {
	t.True(Status{Succeeded: 1, Canceled: 1, Pending: 1}.OK())
	t.False(Status{Failed: 1}.OK())
	t.False(Status{Aborted: true}.OK())
}

func (s *status) Adds_up_counts_and_aborts(t *T) {
	st := Status{Succeeded: 1, Aborted: true}
	st.Add(Status{Succeeded: 2, Failed: 1, Ignored: 3})
	t.Eq(Status{Succeeded: 3, Failed: 1, Ignored: 3, Aborted: true}, st)
	st = Status{}
	st.Add(Status{Pending: 1, Aborted: true})
	t.True(st.Aborted)
}

func TestStatus(t *testing.T) { Run(&status{}, t) }

type recorder struct {
	mutex  sync.Mutex
	events []Event
}

func (r *recorder) Report(e Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	kk := make([]EventKind, len(r.events))
	for i, e := range r.events {
		kk[i] = e.Kind
	}
	return kk
}

type emitter struct{ Suite }

func (s *emitter) SetUp(t *T) { t.Parallel() }

func (s *emitter) Fires_the_start_of_a_test_before_its_outcome(t *T) {
	rec := &recorder{}
	e := NewEmitter("suite", Args{Reporter: rec, RunID: "run"})
	e.SuiteStarting()
	e.Completed(&Entry{Name: "a"}, Result{Outcome: Succeeded{}})
	e.Completed(&Entry{Name: "b"}, Result{
		Outcome: &Failed{Err: errors.New("boom")}})
	e.Ignored(&Entry{Name: "c"})
	e.SuiteCompleted()
	t.Eq([]EventKind{SuiteStarting, TestStarting, TestSucceeded,
		TestStarting, TestFailed, TestIgnored, SuiteCompleted}, rec.kinds())
	for _, evt := range rec.events {
		t.Eq("run", evt.RunID)
		t.Eq("suite", evt.Suite)
	}
	t.Eq("boom", rec.events[4].Err.Error())
	t.Eq(Status{Succeeded: 1, Failed: 1, Ignored: 1}, e.Status())
}

func (s *emitter) Maps_outcomes_to_events(t *T) {
	rec := &recorder{}
	e := NewEmitter("suite", Args{Reporter: rec})
	e.Completed(&Entry{Name: "a"}, Result{
		Outcome: &Canceled{Err: errors.New("gone")}})
	e.Completed(&Entry{Name: "b"}, Result{Outcome: Pending{}})
	t.Eq([]EventKind{TestStarting, TestCanceled, TestStarting,
		TestPending}, rec.kinds())
	t.Eq(Status{Canceled: 1, Pending: 1}, e.Status())
}

func (s *emitter) Marks_an_aborted_suite(t *T) {
	e := NewEmitter("suite", Args{})
	e.SuiteAborted(errors.New("stop"))
	t.True(e.Status().Aborted)
	t.False(e.Status().OK())
}

func (s *emitter) Sets_a_run_id_if_missing(t *T) {
	e := NewEmitter("suite", Args{})
	t.Eq(26, len(e.Args().RunID))
	t.Not.Eq(NewRunID(), NewRunID())
}

func (s *emitter) Names_event_kinds(t *T) {
	t.Eq("SuiteStarting", SuiteStarting.String())
	t.Eq("TestPending", TestPending.String())
	t.Eq("EventKind(42)", EventKind(42).String())
}

func TestEmitter(t *testing.T) { Run(&emitter{}, t) }
