// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"fmt"
	"runtime/debug"
)

// OutcomeKind discriminates the variants of an [Outcome].
type OutcomeKind uint8

const (
	KindSucceeded OutcomeKind = iota + 1
	KindFailed
	KindCanceled
	KindPending
)

func (k OutcomeKind) String() string {
	switch k {
	case KindSucceeded:
		return "succeeded"
	case KindFailed:
		return "failed"
	case KindCanceled:
		return "canceled"
	case KindPending:
		return "pending"
	}
	return fmt.Sprintf("outcome(%d)", uint8(k))
}

// Outcome is the closed set of results of a completed test: [Succeeded],
// [*Failed], [*Canceled] or [Pending].
type Outcome interface {
	Kind() OutcomeKind
	String() string
	outcome()
}

// Succeeded is the outcome of a test which completed without errors.
type Succeeded struct{}

func (Succeeded) Kind() OutcomeKind { return KindSucceeded }
func (Succeeded) String() string    { return "Succeeded" }
func (Succeeded) outcome()          {}

// Failed is the outcome of a test which reported errors or panicked.
type Failed struct{ Err error }

func (*Failed) Kind() OutcomeKind { return KindFailed }
func (f *Failed) String() string  { return fmt.Sprintf("Failed(%v)", f.Err) }
func (*Failed) outcome()          {}

// Canceled is the outcome of a test which was canceled, e.g. because a
// precondition it depends on isn't met.
type Canceled struct{ Err error }

func (*Canceled) Kind() OutcomeKind { return KindCanceled }
func (c *Canceled) String() string  { return fmt.Sprintf("Canceled(%v)", c.Err) }
func (*Canceled) outcome()          {}

// Pending is the outcome of a test which isn't implemented yet.
type Pending struct{ Reason string }

func (Pending) Kind() OutcomeKind { return KindPending }
func (p Pending) String() string {
	if p.Reason == "" {
		return "Pending"
	}
	return fmt.Sprintf("Pending(%s)", p.Reason)
}
func (Pending) outcome() {}

// PendingError is the panic value signaling that the running test is
// pending.
type PendingError struct{ Reason string }

func (e *PendingError) Error() string {
	if e.Reason == "" {
		return "test pending"
	}
	return "test pending: " + e.Reason
}

// CanceledError is the panic value signaling that the running test is
// canceled.
type CanceledError struct{ Msg string }

func (e *CanceledError) Error() string { return "test canceled: " + e.Msg }

// PanicError carries a panic value which isn't an error together with
// the stack it was recovered from.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// failNow is the panic value of T.FailNow in spec mode; err holds what
// was reported before.
type failNow struct{ err error }

// Classify maps given recovered panic value to its outcome:
//   - a *PendingError is Pending,
//   - a *CanceledError is Canceled carrying that error,
//   - any other value which isn't run-aborting is Failed carrying it,
//
// while run-aborting values (see [IsRunAborting]) have no outcome and
// false is returned; callers must re-panic them.
func Classify(v interface{}) (Outcome, bool) {
	return classify(v, nil)
}

func classify(v interface{}, stack []byte) (Outcome, bool) {
	switch v := v.(type) {
	case *PendingError:
		return Pending{Reason: v.Reason}, true
	case *CanceledError:
		return &Canceled{Err: v}, true
	case failNow:
		return &Failed{Err: v.err}, true
	}
	if IsRunAborting(v) {
		return nil, false
	}
	if err, ok := v.(error); ok {
		return &Failed{Err: err}, true
	}
	return &Failed{Err: &PanicError{Value: v, Stack: stack}}, true
}

// Guard runs given function and classifies how it ended; a function
// returning normally is Succeeded.  Run-aborting panics and DSL misuse
// errors are re-panicked.
func Guard(f func()) (o Outcome) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if isMisuse(r) {
			panic(r)
		}
		var ok bool
		if o, ok = classify(r, debug.Stack()); !ok {
			panic(r)
		}
	}()
	f()
	return Succeeded{}
}
