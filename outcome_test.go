// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec_test

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/slukits/gospec"
)

type outcome struct{ Suite }

func (s *outcome) SetUp(t *T) { t.Parallel() }

func (s *outcome) Classifies_pending_errors_as_pending(t *T) {
	o, ok := Classify(&PendingError{Reason: "todo"})
	t.True(ok)
	t.Eq(Pending{Reason: "todo"}, o)
	t.Eq("Pending(todo)", o.String())
	t.Eq("Pending", Pending{}.String())
}

func (s *outcome) Classifies_canceled_errors_as_canceled(t *T) {
	err := &CanceledError{Msg: "no network"}
	o, ok := Classify(err)
	t.True(ok)
	t.Eq(KindCanceled, o.Kind())
	t.True(o.(*Canceled).Err == error(err))
}

func (s *outcome) Classifies_errors_as_failed(t *T) {
	err := errors.New("boom")
	o, ok := Classify(err)
	t.True(ok)
	t.True(o.(*Failed).Err == err)
	t.Eq("Failed(boom)", o.String())
}

func (s *outcome) Wraps_other_panic_values_into_a_panic_error(t *T) {
	o, ok := Classify(42)
	t.True(ok)
	var pe *PanicError
	t.True(errors.As(o.(*Failed).Err, &pe))
	t.Eq(42, pe.Value)
	t.Eq("panic: 42", pe.Error())
}

type aborting struct{}

func (aborting) RunAborting() bool { return true }

func (s *outcome) Has_no_outcome_for_run_aborting_values(t *T) {
	_, ok := Classify(AbortRun(nil))
	t.False(ok)
	_, ok = Classify(fmt.Errorf("wrapped: %w", AbortRun(errors.New("x"))))
	t.False(ok)
	_, ok = Classify(aborting{})
	t.False(ok)
	t.ErrIs(AbortRun(errors.New("x")), ErrAbortRun)
}

func (s *outcome) Guards_functions_into_outcomes(t *T) {
	t.Eq(KindSucceeded, Guard(func() {}).Kind())
	t.Eq(KindFailed, Guard(func() { panic("boom") }).Kind())
	t.Eq(KindPending, Guard(func() {
		panic(&PendingError{})
	}).Kind())
	t.Panics(func() { Guard(func() { panic(aborting{}) }) })
	t.Panics(func() {
		Guard(func() { panic(&DuplicateTestNameError{Name: "dup"}) })
	})
}

func (s *outcome) Names_its_kinds(t *T) {
	t.Eq("succeeded", KindSucceeded.String())
	t.Eq("failed", KindFailed.String())
	t.Eq("canceled", KindCanceled.String())
	t.Eq("pending", KindPending.String())
	t.Eq("outcome(9)", OutcomeKind(9).String())
}

func TestOutcome(t *testing.T) { Run(&outcome{}, t) }

type misuse struct{ Suite }

func (s *misuse) SetUp(t *T) { t.Parallel() }

func (s *misuse) Errors_match_not_allowed(t *T) {
	for _, err := range []error{
		&NotAllowedError{Msg: "nested It"},
		&DuplicateTestNameError{Name: "a"},
		&TestRegistrationClosedError{Name: "b"},
	} {
		t.ErrIs(err, ErrNotAllowed)
	}
	t.Not.True(errors.Is(&ConstructionError{Cause: "x"}, ErrNotAllowed))
}

func (s *misuse) Errors_name_their_location(t *T) {
	t.Eq("gospec: not allowed: nested It (a_test.go:3)",
		(&NotAllowedError{Msg: "nested It", Location: "a_test.go:3"}).Error())
	t.Eq("gospec: not allowed: nested It",
		(&NotAllowedError{Msg: "nested It"}).Error())
	t.Contains(&DuplicateTestNameError{Name: "a", Location: "b.go:1"},
		`"a" (b.go:1)`)
}

func (s *misuse) Construction_errors_unwrap_error_causes(t *T) {
	cause := errors.New("cause")
	t.ErrIs(&ConstructionError{Suite: "s", Cause: cause}, cause)
	t.True(errors.Unwrap(&ConstructionError{Cause: "text"}) == nil)
}

func TestMisuse(t *testing.T) { Run(&misuse{}, t) }
