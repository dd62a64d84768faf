// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fx provides the method suite fixtures of gospec's runner
// tests.
//
// Each fixture suite embeds a FixtureLog ensuring that all loggings
// during a suite's test runs are appended to its Logs property which
// then can be evaluated after the suite has run.
package fx

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slukits/gospec"
)

// FX is meant for fixture suites whose test errors should be
// suppressed and only logged, i.e. may be retrieved by s.Logs where s
// is a suite instance embedding FX:
//
//	type MySuiteFixture struct{ fx.FX }
//
//	func (s *MySuiteFixture) True_assertion_failing(t *gospec.T) {
//	    t.True(false)
//	}
//
//	func (s *Assertion) Fails_true_if_false_given(t *gospec.T) {
//	    fx := &MySuiteFixture{}
//	    gospec.Run(fx, t.GoT())
//	    t.True(fx.Logs != "")
//	}
type FX struct {
	FixtureLog
	gospec.Suite
}

func (s *FX) Error() func(args ...interface{}) {
	return s.log
}

// FixtureLog provides the logging facility of fixture suites by
// implementing gospec.SuiteLogging.  A FixtureLog must not be copied
// once it has been used.
type FixtureLog struct {
	Logs  string
	mutex sync.Mutex
}

func (fl *FixtureLog) log(args ...interface{}) {
	fl.mutex.Lock()
	defer fl.mutex.Unlock()
	fl.Logs += fmt.Sprint(args...)
}

// Logger makes the runner use the fixture's log for T.Log and S.Log.
func (fl *FixtureLog) Logger() func(args ...interface{}) {
	return fl.log
}

// TestAllSuiteTestsAreRun verifies that public suite methods are run as
// tests.
type TestAllSuiteTestsAreRun struct {
	gospec.Suite
	FixtureLog

	// Exp is logged iff A_test is called.
	Exp string
}

func (s *TestAllSuiteTestsAreRun) A_test(t *gospec.T) { t.Log(s.Exp) }

func (s *TestAllSuiteTestsAreRun) private(t *gospec.T) { t.Log("failed") }

// TestSuiteLogging tests if the SuiteLogging implementation of a suite
// is used for logging.
type TestSuiteLogging struct {
	FixtureLog
	gospec.Suite

	// Exp is logged iff Log_test is called.
	Exp string

	// ExpFmt is logged iff Log_fmt_test is called.
	ExpFmt string
}

func (s *TestSuiteLogging) Log_test(t *gospec.T) { t.Log(s.Exp) }

func (s *TestSuiteLogging) Log_fmt_test(t *gospec.T) {
	t.Logf("%s", s.ExpFmt)
}

func pause() {
	if time.Now().UnixMicro()%2 == 0 {
		time.Sleep(1 * time.Millisecond)
	}
}

// TestSetup has its SetUp method called before each test iff it logs
// "-11-22" or "-22-11" or "-1-212" or "-1-221" or "-2-121" or "-2-112".
// Its tests run in parallel randomly pausing a setup or test to have
// different logs for different runs.
type TestSetup struct {
	FixtureLog
	gospec.Suite
	idx uint32
	fx  gospec.Fixtures[int]
}

func (s *TestSetup) SetUp(t *gospec.T) {
	t.Parallel()
	s.fx.Set(t, int(atomic.AddUint32(&s.idx, 1)))
	pause()
	t.Log(-1 * s.fx.Get(t))
}

func (s *TestSetup) Test_A(t *gospec.T) {
	pause()
	t.Log(s.fx.Get(t))
}

func (s *TestSetup) Test_B(t *gospec.T) {
	pause()
	t.Log(s.fx.Get(t))
}

// TestTearDown has its TearDown method called after each test iff it
// logs "1-12-2" or "2-21-1" or "12-1-2" or "12-2-1" or "21-2-1" or
// "21-1-2".
type TestTearDown struct {
	FixtureLog
	gospec.Suite
	idx uint32
	fx  gospec.Fixtures[int]
}

func (s *TestTearDown) SetUp(t *gospec.T) {
	t.Parallel()
	s.fx.Set(t, int(atomic.AddUint32(&s.idx, 1)))
}

func (s *TestTearDown) TearDown(t *gospec.T) {
	pause()
	t.Log(-1 * s.fx.Del(t))
}

func (s *TestTearDown) Test_A(t *gospec.T) {
	pause()
	t.Log(s.fx.Get(t))
}

func (s *TestTearDown) Test_B(t *gospec.T) {
	pause()
	t.Log(s.fx.Get(t))
}

// TestTearDownAfterCancel implements a suite test for each way to end
// a test, i.e. FailNow, FatalIfNot, FatalOn, Fatal and Fatalf, while
// its tear-down logs the number of tear-down calls.  The suite's
// canceler suppresses the actual cancellation which makes tear-down
// being called twice per test: once by the cancellation and once after
// the test.  Every second call is ignored to get the log "12345".
type TestTearDownAfterCancel struct {
	FixtureLog
	gospec.Suite
	idx    uint32
	logged bool
}

func (s *TestTearDownAfterCancel) TearDown(t *gospec.T) {
	if s.logged {
		s.logged = false
		return
	}
	s.logged = true
	t.Log(atomic.AddUint32(&s.idx, 1))
}

func (s *TestTearDownAfterCancel) Fail_now_test(t *gospec.T) {
	t.FailNow()
}

func (s *TestTearDownAfterCancel) Fatal_if_not_test(t *gospec.T) {
	t.FatalIfNot(false)
}

func (s *TestTearDownAfterCancel) Fatal_on_test(t *gospec.T) {
	t.FatalOn(errors.New(""))
}

func (s *TestTearDownAfterCancel) Fatal_test(t *gospec.T) {
	t.Fatal("")
}

func (s *TestTearDownAfterCancel) Fatalf_test(t *gospec.T) {
	t.Fatalf("%s", "")
}

func (s *TestTearDownAfterCancel) Error() func(...interface{}) {
	return func(...interface{}) {}
}

func (s *TestTearDownAfterCancel) Cancel() func() {
	return func() {}
}

// TestInit logs for each setup call '-1', each tear-down call '-2' and
// for each of its two tests their index.  Its Init method logs
// InitPrefix, i.e. the log has 10+len(InitPrefix) bytes and starts with
// InitPrefix iff Init was called first.
type TestInit struct {
	FixtureLog
	gospec.Suite
}

func (s *TestInit) Init(t *gospec.S) { t.Log("") }

func (s *TestInit) SetUp(t *gospec.T) {
	t.Parallel()
	t.Log(-1)
}

func (s *TestInit) TearDown(t *gospec.T) { t.Log(-2) }

func (s *TestInit) Test_a(t *gospec.T) { t.Log(0) }
func (s *TestInit) Test_b(t *gospec.T) { t.Log(1) }

// TestFinalize logs like TestInit while its Finalize method logs
// FinalPrefix, i.e. the log ends with FinalPrefix iff Finalize was
// called last.
type TestFinalize struct {
	FixtureLog
	gospec.Suite
}

func (s *TestFinalize) SetUp(t *gospec.T) {
	t.Parallel()
	t.Log(-1)
}

func (s *TestFinalize) TearDown(t *gospec.T) { t.Log(-2) }

func (s *TestFinalize) Test_a(t *gospec.T) { t.Log(0) }
func (s *TestFinalize) Test_b(t *gospec.T) { t.Log(1) }

func (s *TestFinalize) Finalize(t *gospec.S) { t.Log("") }

// TestCancelerImplementation replaces logging and cancellation to
// record each cancellation of its Init, Test and Finalize methods by
// its id, see the constants of this package.
type TestCancelerImplementation struct {
	gospec.Suite
	fatalIfNot bool
	Got        map[int]bool
}

func (s *TestCancelerImplementation) log(args ...interface{}) {
	if s.Got == nil {
		s.Got = map[int]bool{}
	}
	if len(args) == 0 {
		if s.Got[T_FATAL_IF_NOT] {
			panic("expected at least one argument")
		}
		s.Got[T_FATAL_IF_NOT] = true
		return
	}
	id := -1
	switch value := args[len(args)-1].(type) {
	case int:
		id = value
	case string:
		n, err := strconv.Atoi(value)
		if err != nil {
			panic(fmt.Sprintf("expected cancellation id; got %v", value))
		}
		id = n
	}
	if id < 0 || id > S_FINAL_FATAL_ON {
		panic(fmt.Sprintf(
			"expected cancellation id in {%d, ...,%d}; got %d",
			T_FATAL_IF_NOT, S_FINAL_FATAL_ON, id))
	}
	s.Got[id] = true
}

func (s *TestCancelerImplementation) Logger() func(...interface{}) {
	return s.log
}

func (s *TestCancelerImplementation) Error() func(...interface{}) {
	return s.log
}

func (s *TestCancelerImplementation) Cancel() func() {
	return func() {
		if !s.fatalIfNot {
			return
		}
		s.fatalIfNot = false
		s.log()
	}
}

func (s *TestCancelerImplementation) Init(t *gospec.S) {
	t.Fatal(S_INIT_FATAL)
	t.Fatalf("%d", S_INIT_FATALF)
	t.FatalOn(errors.New(strconv.Itoa(S_INIT_FATAL_ON)))
}

func (s *TestCancelerImplementation) Test(t *gospec.T) {
	s.fatalIfNot = true
	t.FatalIfNot(false)
	t.FatalOn(errors.New(strconv.Itoa(T_FATAL_ON)))
	t.Fatal(T_FATAL)
	t.Fatalf("%d", T_FATALF)
}

func (s *TestCancelerImplementation) Finalize(t *gospec.S) {
	t.Fatal(S_FINAL_FATAL)
	t.Fatalf("%d", S_FINAL_FATALF)
	t.FatalOn(errors.New(strconv.Itoa(S_FINAL_FATAL_ON)))
}
