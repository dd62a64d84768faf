// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
)

// assertErr is the format-string for assertion errors.
const assertErr = "assert %s:\n%v"

// trueErr default message for failed 'true'-assertion.
const trueErr = "expected given value to be true"

// falseErr default message for failed 'false'-assertion.
const falseErr = "expected given value to be false"

// True fails the test and returns false iff given value is not true;
// otherwise true is returned.
func (t *T) True(value bool) bool {
	t.h.Helper()
	if !value {
		t.Errorf(assertErr, "true", trueErr)
		return false
	}
	return true
}

// False fails the test and returns false iff given value is not false;
// otherwise true is returned.
func (t *T) False(value bool) bool {
	t.h.Helper()
	if value {
		t.Errorf(assertErr, "false", falseErr)
		return false
	}
	return true
}

const eqTypeErr = "types mismatch %T != %T"

// Eq errors with a diff and returns false if given values are not
// considered equal; otherwise true is returned.  Pointers are equal iff
// they point to the same address, values of different types are never
// equal, strings and Stringer are compared by their string
// representation while everything else is compared by cmp.Equal with
// unexported fields of structs taken into account.
func (t *T) Eq(a, b interface{}) bool {
	t.h.Helper()
	if ok, msg := eq(a, b); !ok {
		t.Errorf(assertErr, "equal", msg)
		return false
	}
	return true
}

func eq(a, b interface{}) (bool, string) {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false, fmt.Sprintf(eqTypeErr, a, b)
	}
	if a == nil {
		return true, ""
	}
	if reflect.ValueOf(a).Kind() == reflect.Ptr {
		if a != b {
			return false, fmt.Sprintf("%p != %p", a, b)
		}
		return true, ""
	}
	switch a := a.(type) {
	case string:
		if a != b.(string) {
			return false, cmp.Diff(a, b.(string))
		}
		return true, ""
	case fmt.Stringer:
		if a.String() != b.(fmt.Stringer).String() {
			return false, cmp.Diff(a.String(), b.(fmt.Stringer).String())
		}
		return true, ""
	}
	if diff := cmp.Diff(a, b, cmp.Exporter(func(reflect.Type) bool {
		return true
	})); diff != "" {
		return false, diff
	}
	return true, ""
}

// containsErr default message for failed 'Contains'-assertion.
const containsErr = "%s doesn't contain %s"

// StringRepresentation documents what a string representation of any
// type is:
//   - the string if it is of type string,
//   - the return value of String if the Stringer interface is
//     implemented,
//   - the return value of Error for errors,
//   - fmt.Sprintf("%v", value) in all other cases.
type StringRepresentation interface{}

func toString(value interface{}) string {
	switch value := value.(type) {
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	case error:
		return value.Error()
	default:
		return fmt.Sprintf("%v", value)
	}
}

// Contains fails the test and returns false iff given value's string
// representation doesn't contain given sub-string; otherwise true is
// returned.
func (t *T) Contains(value StringRepresentation, sub string) bool {
	t.h.Helper()
	str := toString(value)
	if !strings.Contains(str, sub) {
		t.Errorf(assertErr, "contains",
			fmt.Sprintf(containsErr, quote(str), quote(sub)))
		return false
	}
	return true
}

func quote(s string) string {
	if strings.Contains(s, "\n") {
		return "\n" + s + "\n"
	}
	return "'" + s + "'"
}

// matchedErr default message for failed *'Matched'-assertion.
const matchedErr = "Regexp\n'%s'\ndoesn't match\n'%s'"

// Matched fails the test and returns false iff given values string
// representation isn't matched by given regex; otherwise true is
// returned.
func (t *T) Matched(value StringRepresentation, regex string) bool {
	t.h.Helper()
	str := toString(value)
	if !regexp.MustCompile(regex).MatchString(str) {
		t.Errorf(assertErr, "matched", fmt.Sprintf(matchedErr, regex, str))
		return false
	}
	return true
}

// errIsErr default message for failed "ErrIs"-assertion
const errIsErr = "given error doesn't wrap target-error"

// ErrIs fails the test and returns false iff given err doesn't wrap
// given target; otherwise true is returned.
func (t *T) ErrIs(err, target error) bool {
	t.h.Helper()
	if errors.Is(err, target) {
		return true
	}
	t.Errorf(assertErr, "error is",
		fmt.Sprintf("%s: %+v\n%+v", errIsErr, err, target))
	return false
}

// panicsErr default message for failed "Panics"-assertion
const panicsErr = "given function doesn't panic"

// Panics fails the test and returns false iff given function doesn't
// panic; otherwise true is returned.
func (t *T) Panics(f func()) bool {
	t.h.Helper()
	if !panics(f) {
		t.Errorf(assertErr, "panics", panicsErr)
		return false
	}
	return true
}

func panics(f func()) (hasPanicked bool) {
	defer func() {
		if r := recover(); r != nil {
			hasPanicked = true
		}
	}()
	f()
	return false
}

// withinErr default message for failed "Within"-assertion
const withinErr = "timeout while condition unfulfilled"

// Within tries after each step of given time-stepper if given condition
// returns true and fails the test iff the whole duration of given time
// stepper is elapsed without given condition returning true.
func (t *T) Within(d *TimeStepper, cond func() bool) bool {
	t.h.Helper()
	time.Sleep(d.Step())
	if cond() {
		return true
	}
	for d.AddStep() {
		time.Sleep(d.Step())
		if cond() {
			return true
		}
	}
	t.Errorf(assertErr, "within", withinErr)
	return false
}

// Not implements negations of [T]-assertions, e.g. [Not.True].  Negated
// assertions can be accessed through [T]'s Not field.
type Not struct{ t *T }

// True passes iff given value is false.
func (n Not) True(value bool) bool {
	n.t.h.Helper()
	if value {
		n.t.Errorf(assertErr, "not-true", trueErr)
		return false
	}
	return true
}

// Eq passes iff [T.Eq] would fail for given values.
func (n Not) Eq(a, b interface{}) bool {
	n.t.h.Helper()
	if ok, _ := eq(a, b); ok {
		n.t.Errorf(assertErr, "not-equal", fmt.Sprintf("%v == %v", a, b))
		return false
	}
	return true
}

// notContainsErr default message for failed Not-'Contains'-assertion.
const notContainsErr = "\n'%s'\ndoes contain\n'%s'"

// Contains passes iff given value's string representation doesn't
// contain given sub-string.
func (n Not) Contains(value StringRepresentation, sub string) bool {
	n.t.h.Helper()
	str := toString(value)
	if strings.Contains(str, sub) {
		n.t.Errorf(assertErr, "doesn't contain",
			fmt.Sprintf(notContainsErr, str, sub))
		return false
	}
	return true
}

// notMatchedErr default message for failed Not-'Matched'-assertion.
const notMatchedErr = "Regexp '%s'\n matches '%s'"

// Matched passes iff given regex doesn't match given value's string
// representation.
func (n Not) Matched(value StringRepresentation, regex string) bool {
	n.t.h.Helper()
	str := toString(value)
	if regexp.MustCompile(regex).MatchString(str) {
		n.t.Errorf(assertErr, "doesn't match",
			fmt.Sprintf(notMatchedErr, regex, str))
		return false
	}
	return true
}

// Panics passes iff given function returns without panicking.
func (n Not) Panics(f func()) bool {
	n.t.h.Helper()
	if panics(f) {
		n.t.Errorf(assertErr, "doesn't panic", "given function panics")
		return false
	}
	return true
}
