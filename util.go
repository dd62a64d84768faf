// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"sync"
	"time"
)

// Fixtures provides a concurrency save fixture storage for tests of a
// method suite whose tests run in parallel.  The zero value is ready to
// use; a Fixtures instance must not be copied after its first use.
//
//	type MySuite {
//	    gospec.Suite
//	    fx gospec.Fixtures[*Stack]
//	}
//
//	func (s *MySuite) SetUp(t *gospec.T) {
//	    t.Parallel()
//	    s.fx.Set(t, NewStack())
//	}
//
//	func (s *MySuite) Is_empty_if_new(t *gospec.T) {
//	    t.True(s.fx.Get(t).Empty())
//	}
type Fixtures[V any] struct {
	mutex sync.Mutex
	ff    map[*T]V
}

// Set maps given test to given fixture.
func (ff *Fixtures[V]) Set(t *T, fixture V) {
	ff.mutex.Lock()
	defer ff.mutex.Unlock()
	if ff.ff == nil {
		ff.ff = map[*T]V{}
	}
	ff.ff[t] = fixture
}

// Get returns the fixture of given test.
func (ff *Fixtures[V]) Get(t *T) V {
	ff.mutex.Lock()
	defer ff.mutex.Unlock()
	return ff.ff[t]
}

// Del removes the fixture of given test and returns it.
func (ff *Fixtures[V]) Del(t *T) V {
	ff.mutex.Lock()
	defer ff.mutex.Unlock()
	fixture := ff.ff[t]
	delete(ff.ff, t)
	return fixture
}

// TimeStepper splits a duration into steps.  The duration defaults to
// 10 milliseconds segmented into 1 millisecond steps.  The zero value
// is ready to use.
type TimeStepper struct {
	duration time.Duration
	step     time.Duration
	elapsed  time.Duration
}

// Duration is the overall duration a time-stepper represents.
func (t *TimeStepper) Duration() time.Duration {
	if t.duration == 0 {
		t.duration = 10 * time.Millisecond
	}
	return t.duration
}

// SetDuration sets the overall duration a time-stepper represents.
func (t *TimeStepper) SetDuration(d time.Duration) *TimeStepper {
	t.duration = d
	return t
}

// Step is the segment length of a time-stepper's duration.
func (t *TimeStepper) Step() time.Duration {
	if t.step == 0 {
		t.step = 1 * time.Millisecond
	}
	return t.step
}

// SetStep sets the segment length of a time-stepper's duration.
func (t *TimeStepper) SetStep(s time.Duration) *TimeStepper {
	t.step = s
	return t
}

// AddStep adds a step to the elapsed time and returns true if there is
// still time left; false otherwise.
func (t *TimeStepper) AddStep() bool {
	t.elapsed += t.Step()
	return t.Duration() > t.elapsed
}
