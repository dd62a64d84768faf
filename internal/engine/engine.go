// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package engine provides the path isolation engine of gospec's path
// styles.  A suite is constructed by calling its builder with a fresh
// [Tracker]; each construction executes exactly one leaf of the suite's
// tree, the tracker records which node comes next and the engine
// constructs again until no node is left.  All results end up in the
// registry of the engine which belongs to the suite's initial instance.
//
// Since fixtures of a path-style suite are local to its builder every
// test sees freshly initialized fixtures while the side effects of
// sibling branches not enclosing it are never observed.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/slukits/gospec"
)

// State is the state of an engine's discovery.
type State uint8

const (
	// Idle engines haven't been triggered yet.
	Idle State = iota
	// Discovering engines construct their suite once per leaf.
	Discovering
	// Exhausted engines found no further leaf to execute.
	Exhausted
	// Registered engines have frozen their results which may be
	// reported now.
	Registered
	// Aborted engines had their discovery ended by a run-aborting
	// panic.
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Discovering:
		return "discovering"
	case Exhausted:
		return "exhausted"
	case Registered:
		return "registered"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Observer is informed about an engine's constructions.  It is called
// on the goroutine driving the discovery.
type Observer interface {
	ConstructionStarted(suite string, n int, target Path)
	ConstructionFinished(suite string, n int, err error)
	DiscoveryFinished(suite string, constructions int, err error)
}

type nopObserver struct{}

func (nopObserver) ConstructionStarted(string, int, Path)  {}
func (nopObserver) ConstructionFinished(string, int, error) {}
func (nopObserver) DiscoveryFinished(string, int, error)    {}

// Engine drives the discovery of one suite tree.  Discovery runs at
// most once; every later [Engine.Ensure] returns its result.
type Engine struct {
	mutex         sync.Mutex
	suite         string
	construct     func(*Tracker)
	obs           Observer
	state         State
	err           error
	registry      gospec.Registry
	constructions int
}

// New returns an engine for the suite with given name whose
// constructions are done by given function.  The observer may be nil.
func New(suite string, construct func(*Tracker), obs Observer) *Engine {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Engine{suite: suite, construct: construct, obs: obs}
}

// Observe replaces the engine's observer.  It fails with a
// [gospec.NotAllowedError] once the discovery was triggered.
func (e *Engine) Observe(obs Observer) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.state != Idle {
		return &gospec.NotAllowedError{Msg: fmt.Sprintf(
			"%s: observe after discovery started", e.suite)}
	}
	if obs == nil {
		obs = nopObserver{}
	}
	e.obs = obs
	return nil
}

// Suite returns the name of the engine's suite.
func (e *Engine) Suite() string { return e.suite }

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.state
}

// Constructions returns the number of constructions done so far.
func (e *Engine) Constructions() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.constructions
}

// Registry returns the registry of discovered results.  It is complete
// and read-only once Ensure has returned.
func (e *Engine) Registry() *gospec.Registry { return &e.registry }

// Ensure runs the discovery if it hasn't run yet and returns its
// error.  The error is the same for every call.  A call while the
// discovery is running, e.g. from a test body, fails with a
// [gospec.NotAllowedError].  A run-aborting panic during discovery is
// re-panicked after the engine was set to Aborted; subsequent calls
// return an error wrapping [gospec.ErrDiscoveryAborted].
func (e *Engine) Ensure() error {
	e.mutex.Lock()
	switch e.state {
	case Discovering:
		e.mutex.Unlock()
		return &gospec.NotAllowedError{Msg: fmt.Sprintf(
			"%s: discovery is already running", e.suite)}
	case Exhausted, Registered:
		defer e.mutex.Unlock()
		return e.err
	case Aborted:
		e.mutex.Unlock()
		return fmt.Errorf("%w: %s", gospec.ErrDiscoveryAborted, e.suite)
	}
	e.state = Discovering
	e.mutex.Unlock()

	completed := false
	defer func() {
		if completed {
			return
		}
		e.setState(Aborted, nil)
		e.obs.DiscoveryFinished(e.suite, e.constructions,
			gospec.ErrDiscoveryAborted)
	}()
	err := e.discover()
	completed = true
	return err
}

func (e *Engine) setState(s State, err error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.state, e.err = s, err
	if s == Registered || s == Aborted {
		e.registry.Close()
	}
}

func (e *Engine) discover() error {
	var target Path
	var kind nodeKind
	for {
		tr := newTracker(e, target, kind)
		e.mutex.Lock()
		e.constructions++
		n := e.constructions
		e.mutex.Unlock()

		e.obs.ConstructionStarted(e.suite, n, target)
		err := e.run(tr)
		e.obs.ConstructionFinished(e.suite, n, err)
		if err != nil {
			e.setState(Registered, err)
			e.obs.DiscoveryFinished(e.suite, n, err)
			return err
		}
		if tr.next == nil {
			break
		}
		target, kind = tr.next, tr.nextKind
	}
	e.setState(Exhausted, nil)
	e.setState(Registered, nil)
	e.obs.DiscoveryFinished(e.suite, e.constructions, nil)
	return nil
}

// run does one construction with given tracker and turns a panic
// raised outside of test bodies into an error; run-aborting panics are
// re-panicked.
func (e *Engine) run(tr *Tracker) (err error) {
	defer func() {
		tr.closed = true
		r := recover()
		if r == nil {
			if tr.target != nil && !tr.reached {
				err = &gospec.NotAllowedError{Msg: fmt.Sprintf(
					"%s: suite structure changed: target %s not found",
					e.suite, tr.target)}
			}
			return
		}
		if gospec.IsRunAborting(r) {
			panic(r)
		}
		if rErr, ok := r.(error); ok && errors.Is(rErr, gospec.ErrNotAllowed) {
			err = rErr
			return
		}
		err = &gospec.ConstructionError{Suite: e.suite, Cause: r}
	}()
	e.construct(tr)
	return nil
}
