// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"errors"
	"fmt"
)

// ErrNotAllowed is matched by every error reporting a misuse of the
// spec DSL, i.e. [NotAllowedError], [DuplicateTestNameError] and
// [TestRegistrationClosedError].
var ErrNotAllowed = errors.New("gospec: not allowed")

// ErrUnsupported is returned by the lifecycle methods a path style
// disables (RunTests, RunNestedSuites).
var ErrUnsupported = errors.New("gospec: unsupported operation")

// ErrNoSuchTest is returned if a test is requested by a name which
// wasn't registered.
var ErrNoSuchTest = errors.New("gospec: no such test")

// ErrAbortRun marks a panic value as run-aborting, i.e. it is never
// turned into an [Outcome] but propagates and ends the whole run.
var ErrAbortRun = errors.New("gospec: run aborted")

// ErrDiscoveryAborted is reported by a suite whose discovery was ended
// by a run-aborting panic.
var ErrDiscoveryAborted = errors.New("gospec: discovery aborted")

// AbortRun wraps given error into a run-aborting error which may be
// passed to panic to end a run from inside a test.
func AbortRun(err error) error {
	if err == nil {
		return ErrAbortRun
	}
	return fmt.Errorf("%w: %w", ErrAbortRun, err)
}

// NotAllowedError reports a misused DSL construct, e.g. an It nested
// inside an other It.
type NotAllowedError struct {
	Msg      string
	Location string
}

func (e *NotAllowedError) Error() string {
	if e.Location == "" {
		return "gospec: not allowed: " + e.Msg
	}
	return fmt.Sprintf("gospec: not allowed: %s (%s)", e.Msg, e.Location)
}

func (e *NotAllowedError) Is(target error) bool {
	return target == ErrNotAllowed
}

// DuplicateTestNameError is raised at the registration of a test whose
// full name was already registered in the same suite.
type DuplicateTestNameError struct {
	Name     string
	Location string
}

func (e *DuplicateTestNameError) Error() string {
	return fmt.Sprintf("gospec: duplicate test name: %q (%s)",
		e.Name, e.Location)
}

func (e *DuplicateTestNameError) Is(target error) bool {
	return target == ErrNotAllowed
}

// TestRegistrationClosedError is raised if a test or branch is
// registered after the registration phase it belongs to has ended.
type TestRegistrationClosedError struct {
	Name     string
	Location string
}

func (e *TestRegistrationClosedError) Error() string {
	return fmt.Sprintf(
		"gospec: registration closed: can't register %q (%s)",
		e.Name, e.Location)
}

func (e *TestRegistrationClosedError) Is(target error) bool {
	return target == ErrNotAllowed
}

// ConstructionError reports a panic raised by a suite's builder outside
// of any test body.
type ConstructionError struct {
	Suite string
	Cause interface{}
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("gospec: %s: construction failed: %v",
		e.Suite, e.Cause)
}

// Unwrap returns the panic value if it is an error.
func (e *ConstructionError) Unwrap() error {
	err, _ := e.Cause.(error)
	return err
}

// isMisuse reports if given panic value is one of the DSL misuse errors
// which must surface at construction time rather than as an outcome.
func isMisuse(v interface{}) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	return errors.Is(err, ErrNotAllowed)
}

// IsRunAborting reports if given panic value must not be turned into an
// outcome.  This is the case for errors wrapping [ErrAbortRun] and for
// values implementing RunAborting() bool returning true.
func IsRunAborting(v interface{}) bool {
	if ra, ok := v.(interface{ RunAborting() bool }); ok {
		return ra.RunAborting()
	}
	err, ok := v.(error)
	if !ok {
		return false
	}
	return errors.Is(err, ErrAbortRun)
}
