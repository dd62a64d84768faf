// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// T instances are passed to tests providing means for logging,
// assertion, failing, cancellation and pending-marking of a test.  A
// T is either wrapping a *testing.T of a method suite's sub-test:
//
//	type MySuite { gospec.Suite }
//
//	func (s *MySuite) A_test(t *gospec.T) { t.Log("A_test run") }
//
//	func TestMySuite(t *testing.T) { gospec.Run(&MySuite{}, t)}
//
// or it is a recording T handed to the body of a spec-style test (see
// [Exec]) in which case GoT returns nil and everything reported is
// recorded for the test's result.
type T struct {
	t        *testing.T
	h        helper
	tearDown func(*T)
	logger   func(...interface{})
	errorer  func(...interface{})
	canceler func()
	skipper  func(pending bool, msg string)
	markuper func(string)

	// Not provides the negations of T's assertions.
	Not Not
}

type helper interface{ Helper() }

type noHelper struct{}

func (noHelper) Helper() {}

func newGoT(t *testing.T) *T {
	gt := &T{
		t:        t,
		h:        t,
		logger:   t.Log,
		errorer:  t.Error,
		canceler: t.FailNow,
		skipper: func(pending bool, msg string) {
			if pending {
				msg = (&PendingError{Reason: msg}).Error()
			}
			t.Skip(msg)
		},
	}
	gt.markuper = func(s string) { gt.logger(s) }
	gt.Not = Not{t: gt}
	return gt
}

// record collects what a spec-mode T reports during its test's single
// execution.
type record struct {
	errs    []string
	infos   []string
	markups []string
}

func (r *record) err() error {
	if len(r.errs) == 0 {
		return errors.New("test failed")
	}
	return errors.New(strings.Join(r.errs, "\n"))
}

func newSpecT(r *record) *T {
	st := &T{
		h: noHelper{},
		logger: func(args ...interface{}) {
			r.infos = append(r.infos, fmt.Sprint(args...))
		},
		errorer: func(args ...interface{}) {
			r.errs = append(r.errs, fmt.Sprint(args...))
		},
		canceler: func() { panic(failNow{err: r.err()}) },
		skipper: func(pending bool, msg string) {
			if pending {
				panic(&PendingError{Reason: msg})
			}
			panic(&CanceledError{Msg: msg})
		},
		markuper: func(s string) { r.markups = append(r.markups, s) },
	}
	st.Not = Not{t: st}
	return st
}

// Result is what a spec-style test body produced during its execution.
type Result struct {
	Outcome  Outcome
	Duration time.Duration
	Infos    []string
	Markups  []string
}

// Exec runs given test body with a recording T and returns its result.
// A body reporting errors through T.Error* is Failed even if it returns
// normally.  Run-aborting panics and DSL misuse errors propagate.
func Exec(body func(*T)) Result {
	rec := &record{}
	t := newSpecT(rec)
	start := time.Now()
	o := Guard(func() { body(t) })
	if o.Kind() == KindSucceeded && len(rec.errs) > 0 {
		o = &Failed{Err: rec.err()}
	}
	return Result{
		Outcome:  o,
		Duration: time.Since(start),
		Infos:    rec.infos,
		Markups:  rec.markups,
	}
}

// GoT returns the wrapped testing.T instance which is nil for the T of
// a spec-style test.
func (t *T) GoT() *testing.T { return t.t }

// Log writes given arguments to set logger which defaults to the logger
// of wrapped *testing.T* instance.  The default may be overwritten by a
// suite-embedder implementing the SuiteLogging interface.  A spec-style
// T records logged arguments as infos of its test.
func (t *T) Log(args ...interface{}) { t.logger(args...) }

// Logf writes given format string leveraging Sprintf to set logger.
func (t *T) Logf(format string, args ...interface{}) {
	t.Log(fmt.Sprintf(format, args...))
}

// Info is Log; it documents that given arguments are meant as
// information provided along with the test's report.
func (t *T) Info(args ...interface{}) { t.Log(args...) }

// Markup records given text as markup of the running test.
func (t *T) Markup(text string) { t.markuper(text) }

// Parallel signals that this test may be run in parallel with other
// parallel flagged tests.  It is a no-op for spec-style tests whose
// bodies always run sequentially.
func (t *T) Parallel() {
	if t.t == nil {
		return
	}
	t.t.Parallel()
}

// Error logs given arguments and flags test as failed but continues its
// execution.  t's errorer defaults to a Error-call of a wrapped
// testing.T instance and may be overwritten for a test-suite by
// implementing *SuiteErrorer*.
func (t *T) Error(args ...interface{}) {
	t.h.Helper()
	t.errorer(args...)
}

// Errorf logs given format-string leveraging fmt.Sprintf and flags test
// as failed but continues its execution.
func (t *T) Errorf(format string, args ...interface{}) {
	t.h.Helper()
	t.errorer(fmt.Sprintf(format, args...))
}

// FailNow cancels the execution of the test after a potential tear-down
// was called.  t's canceler defaults to a FailNow-call of a wrapped
// testing.T instance and may be overwritten for a test-suite by
// implementing *SuiteCanceler*.
func (t *T) FailNow() {
	t.h.Helper()
	if t.tearDown != nil {
		t.tearDown(t)
	}
	t.canceler()
}

// FatalIfNot cancels receiving test (see *FailNow*) if passed argument
// is false and is a no-op otherwise.
func (t *T) FatalIfNot(assertion bool) {
	if assertion {
		return
	}
	t.h.Helper()
	t.FailNow()
}

// FatalOn fails and ends receiving test iff passed error is not nil.
func (t *T) FatalOn(err error) {
	t.h.Helper()
	if err == nil {
		return
	}
	t.Fatal(err.Error())
}

// Fatal reports given arguments as error and ends the test (see
// *FailNow*).
func (t *T) Fatal(args ...interface{}) {
	t.h.Helper()
	t.errorer(args...)
	t.FailNow()
}

// Fatalf reports given format-string leveraging fmt.Sprintf as error
// and ends the test (see *FailNow*).
func (t *T) Fatalf(format string, args ...interface{}) {
	t.h.Helper()
	t.errorer(fmt.Sprintf(format, args...))
	t.FailNow()
}

// Cancel ends the test as canceled, e.g. because a resource it depends
// on is unavailable.  Wrapping a testing.T a canceled test is skipped.
func (t *T) Cancel(args ...interface{}) {
	t.h.Helper()
	if t.tearDown != nil {
		t.tearDown(t)
	}
	t.skipper(false, fmt.Sprint(args...))
}

// Pending ends the test as pending, i.e. not implemented yet.
func (t *T) Pending(reason ...interface{}) {
	t.h.Helper()
	if t.tearDown != nil {
		t.tearDown(t)
	}
	t.skipper(true, fmt.Sprint(reason...))
}

// InitPrefix prefixes logging-messages of the Init-method to enable the
// reporter to discriminate Init-logs and Finalize-logs.
const InitPrefix = "__init__"

// FinalPrefix prefixes logging-messages of the Finalize-method to
// enable the reporter to discriminate Finalize-logs and Init-logs.
const FinalPrefix = "__final__"

// S instances are passed to a method suite's Init and Finalize methods.
// They wrap the testing.T of the test running the suite and prefix
// their logs with [InitPrefix] respectively [FinalPrefix].  NOTE
// implementations of SuiteLogging or SuiteCanceler in a test-suite
// replace the default logging or cancellation behavior of an S.
type S struct {
	t        *testing.T
	prefix   string
	logger   func(...interface{})
	canceler func()
}

// GoT returns a pointer to wrapped testing.T instance of the
// suite-runner's test.
func (s *S) GoT() *testing.T { return s.t }

// Log given arguments to wrapped test-runner's testing.T-logger or its
// replacement provided by a suite's SuiteLogging-implementation.
func (s *S) Log(args ...interface{}) {
	s.t.Helper()
	s.logger(append([]interface{}{s.prefix}, args...)...)
}

// Logf format logs leveraging fmt.Sprintf given arguments.
func (s *S) Logf(format string, args ...interface{}) {
	s.t.Helper()
	s.Log(fmt.Sprintf(format, args...))
}

// Fatal cancels the test-suite's tests-run after given arguments were
// logged.
func (s *S) Fatal(args ...interface{}) {
	s.t.Helper()
	s.Log(args...)
	s.canceler()
}

// Fatalf cancels the test-suite's tests-run after given format string
// was logged leveraging fmt.Sprintf.
func (s *S) Fatalf(format string, args ...interface{}) {
	s.t.Helper()
	s.Fatal(fmt.Sprintf(format, args...))
}

// FatalOn cancels the test-suite's tests-run iff given error is not
// nil.
func (s *S) FatalOn(err error) {
	s.t.Helper()
	if err != nil {
		s.Fatal(err.Error())
	}
}

// Timeout returns a channel which is closed after given duration.
func (t *T) Timeout(d time.Duration) chan struct{} {
	done := make(chan struct{})
	go func() {
		time.Sleep(d)
		close(done)
	}()
	return done
}
