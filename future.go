// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Completion is the result of a completed [FutureOutcome]: either an
// outcome or, if the computation aborted, a non-nil error wrapping
// [ErrAbortRun] or the run-aborting error itself.
type Completion struct {
	Outcome Outcome
	Err     error
}

// Aborted reports if the computation ended with a run-aborting panic.
func (c Completion) Aborted() bool { return c.Err != nil }

// FutureOutcome is the asynchronous result of a test.  It wraps exactly
// one computation and is immutable: its combinators never change it but
// return a new FutureOutcome completing after the original one and, if
// fired, after the combinator's callback.  Registering a callback never
// blocks; callbacks run on their own goroutine.
type FutureOutcome struct {
	done chan struct{}
	c    Completion
}

func newFuture() *FutureOutcome {
	return &FutureOutcome{done: make(chan struct{})}
}

func (f *FutureOutcome) complete(c Completion) {
	f.c = c
	close(f.done)
}

// NewFutureOutcome runs given computation on a new goroutine.  A panic
// of the computation is classified like a panic of a test body (see
// [Classify]); a nil outcome is [Succeeded].
func NewFutureOutcome(compute func() Outcome) *FutureOutcome {
	f := newFuture()
	go func() {
		f.complete(guarded(func() Completion {
			o := compute()
			if o == nil {
				o = Succeeded{}
			}
			return Completion{Outcome: o}
		}))
	}()
	return f
}

// CompletedFuture returns a future which has already completed with
// given outcome.
func CompletedFuture(o Outcome) *FutureOutcome {
	f := newFuture()
	f.complete(Completion{Outcome: o})
	return f
}

func guarded(f func() Completion) (c Completion) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		o, ok := classify(r, debug.Stack())
		if !ok {
			c = Completion{Err: abortErr(r)}
			return
		}
		c = Completion{Outcome: o}
	}()
	return f()
}

func abortErr(v interface{}) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%w: %v", ErrAbortRun, v)
}

// then returns a future completing with the receiver's completion if
// it doesn't match; otherwise it completes with the completion given
// callback returns or, if the callback panics, with the classification
// of its panic.
func (f *FutureOutcome) then(
	matches func(Completion) bool, cb func(Completion) Completion,
) *FutureOutcome {
	next := newFuture()
	go func() {
		<-f.done
		if !matches(f.c) {
			next.complete(f.c)
			return
		}
		next.complete(guarded(func() Completion { return cb(f.c) }))
	}()
	return next
}

func isKind(k OutcomeKind) func(Completion) bool {
	return func(c Completion) bool {
		return !c.Aborted() && c.Outcome.Kind() == k
	}
}

// OnSucceededThen calls back if the computation succeeded.
func (f *FutureOutcome) OnSucceededThen(cb func()) *FutureOutcome {
	return f.then(isKind(KindSucceeded), func(c Completion) Completion {
		cb()
		return c
	})
}

// OnFailedThen calls back with the failure's error if the computation
// failed.
func (f *FutureOutcome) OnFailedThen(cb func(error)) *FutureOutcome {
	return f.then(isKind(KindFailed), func(c Completion) Completion {
		cb(c.Outcome.(*Failed).Err)
		return c
	})
}

// OnCanceledThen calls back with the cancellation's error if the
// computation was canceled.
func (f *FutureOutcome) OnCanceledThen(cb func(error)) *FutureOutcome {
	return f.then(isKind(KindCanceled), func(c Completion) Completion {
		cb(c.Outcome.(*Canceled).Err)
		return c
	})
}

// OnPendingThen calls back with the pending reason if the computation
// is pending.
func (f *FutureOutcome) OnPendingThen(cb func(reason string)) *FutureOutcome {
	return f.then(isKind(KindPending), func(c Completion) Completion {
		cb(c.Outcome.(Pending).Reason)
		return c
	})
}

// OnOutcomeThen calls back with the outcome if the computation didn't
// abort.
func (f *FutureOutcome) OnOutcomeThen(cb func(Outcome)) *FutureOutcome {
	return f.then(func(c Completion) bool { return !c.Aborted() },
		func(c Completion) Completion {
			cb(c.Outcome)
			return c
		})
}

// OnAbortedThen calls back with the aborting error if the computation
// aborted.  A callback returning normally leaves the result aborted.
func (f *FutureOutcome) OnAbortedThen(cb func(error)) *FutureOutcome {
	return f.then(Completion.Aborted, func(c Completion) Completion {
		cb(c.Err)
		return c
	})
}

// OnCompletedThen calls back with the completion in any case.
func (f *FutureOutcome) OnCompletedThen(cb func(Completion)) *FutureOutcome {
	return f.then(func(Completion) bool { return true },
		func(c Completion) Completion {
			cb(c)
			return c
		})
}

// Change returns a future whose outcome is the one given function maps
// the computation's outcome to.  An aborted computation stays aborted.
func (f *FutureOutcome) Change(fn func(Outcome) Outcome) *FutureOutcome {
	return f.then(func(c Completion) bool { return !c.Aborted() },
		func(c Completion) Completion {
			o := fn(c.Outcome)
			if o == nil {
				o = Succeeded{}
			}
			return Completion{Outcome: o}
		})
}

// IsCompleted reports without blocking if the computation and all
// callbacks it depends on have completed.
func (f *FutureOutcome) IsCompleted() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Value returns without blocking the completion and true if completed;
// the zero Completion and false otherwise.
func (f *FutureOutcome) Value() (Completion, bool) {
	if !f.IsCompleted() {
		return Completion{}, false
	}
	return f.c, true
}

// Done returns a channel which is closed once completed.
func (f *FutureOutcome) Done() <-chan struct{} { return f.done }

// Await blocks until completion or the end of given context.  The
// returned error is the context's error or the aborting error.
func (f *FutureOutcome) Await(ctx context.Context) (Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.c.Outcome, f.c.Err
	}
}
