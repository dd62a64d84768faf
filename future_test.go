// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/slukits/gospec"
)

type future struct{ Suite }

func (s *future) SetUp(t *T) { t.Parallel() }

func await(t *T, f *FutureOutcome) (Outcome, error) {
	t.GoT().Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	o, err := f.Await(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("future didn't complete")
	}
	return o, err
}

func (s *future) Completes_with_the_computed_outcome(t *T) {
	o, err := await(t, NewFutureOutcome(func() Outcome {
		return &Failed{Err: errors.New("boom")}
	}))
	t.FatalOn(err)
	t.Eq(KindFailed, o.Kind())
	o, _ = await(t, NewFutureOutcome(func() Outcome { return nil }))
	t.Eq(KindSucceeded, o.Kind())
}

func (s *future) Classifies_a_panicking_computation(t *T) {
	o, err := await(t, NewFutureOutcome(func() Outcome {
		panic(&PendingError{Reason: "later"})
	}))
	t.FatalOn(err)
	t.Eq(Pending{Reason: "later"}, o)
}

func (s *future) Aborts_on_run_aborting_panics(t *T) {
	f := NewFutureOutcome(func() Outcome { panic(AbortRun(nil)) })
	_, err := await(t, f)
	t.ErrIs(err, ErrAbortRun)
	c, ok := f.Value()
	t.True(ok)
	t.True(c.Aborted())

	var aborted atomic.Bool
	_, err = await(t, NewFutureOutcome(func() Outcome {
		panic("text")
	}).OnAbortedThen(func(error) { aborted.Store(true) }))
	t.FatalOn(err)
	t.False(aborted.Load())
}

func (s *future) Turns_a_canceling_success_callback_into_canceled(t *T) {
	original := NewFutureOutcome(func() Outcome { return Succeeded{} })
	changed := original.OnSucceededThen(func() {
		panic(&CanceledError{Msg: "resource gone"})
	})
	o, err := await(t, changed)
	t.FatalOn(err)
	t.Eq(KindCanceled, o.Kind())
	t.Contains(o.(*Canceled).Err, "resource gone")
	o, _ = await(t, original)
	t.Eq(KindSucceeded, o.Kind())
}

func (s *future) Calls_back_only_on_matching_outcomes(t *T) {
	var calls atomic.Int32
	count := func(...interface{}) { calls.Add(1) }
	f := CompletedFuture(&Failed{Err: errors.New("boom")})
	f = f.OnSucceededThen(func() { count() }).
		OnCanceledThen(func(error) { count() }).
		OnPendingThen(func(string) { count() })
	o, _ := await(t, f)
	t.Eq(KindFailed, o.Kind())
	t.Eq(int32(0), calls.Load())

	var got error
	_, _ = await(t, f.OnFailedThen(func(err error) { got = err }))
	t.Eq("boom", got.Error())
}

func (s *future) Calls_back_on_every_completion(t *T) {
	var outcomes, completions atomic.Int32
	f := CompletedFuture(Pending{}).
		OnOutcomeThen(func(Outcome) { outcomes.Add(1) }).
		OnCompletedThen(func(Completion) { completions.Add(1) })
	_, _ = await(t, f)
	t.Eq(int32(1), outcomes.Load())
	t.Eq(int32(1), completions.Load())
}

func (s *future) Changes_outcomes_into_new_futures(t *T) {
	original := CompletedFuture(&Failed{Err: errors.New("flaky")})
	changed := original.Change(func(o Outcome) Outcome {
		return &Canceled{Err: o.(*Failed).Err}
	})
	o, _ := await(t, changed)
	t.Eq(KindCanceled, o.Kind())
	o, _ = await(t, original)
	t.Eq(KindFailed, o.Kind())
}

func (s *future) Doesnt_block_registering_callbacks(t *T) {
	release := make(chan struct{})
	f := NewFutureOutcome(func() Outcome {
		<-release
		return Succeeded{}
	})
	next := f.OnSucceededThen(func() {})
	t.False(f.IsCompleted())
	t.False(next.IsCompleted())
	_, ok := next.Value()
	t.False(ok)
	close(release)
	<-next.Done()
	t.True(f.IsCompleted())
}

func (s *future) Stops_awaiting_at_the_end_of_the_context(t *T) {
	f := NewFutureOutcome(func() Outcome {
		time.Sleep(time.Second)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	t.ErrIs(err, context.Canceled)
}

func TestFuture(t *testing.T) { Run(&future{}, t) }
