// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/slukits/gospec"
	"github.com/slukits/gospec/examples/stack"
	"github.com/slukits/gospec/internal/logging"
	"github.com/slukits/gospec/pkg/catalog"
	"github.com/slukits/gospec/pkg/config"
	"github.com/slukits/gospec/pkg/fs"
	"github.com/slukits/gospec/pkg/report"
	"github.com/slukits/gospec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv returns an environment whose catalog holds fresh stack specs
// and given specs and whose logger writes to the returned buffer.
func testEnv(t *testing.T, ss ...gospec.Spec) (*environment, *bytes.Buffer) {
	t.Helper()
	c := &catalog.Catalog{}
	require.NoError(t, c.Register(stack.Specs()...))
	require.NoError(t, c.Register(ss...))
	logs := &bytes.Buffer{}
	return &environment{catalog: c, logger: logging.New(logs)}, logs
}

func exec(t *testing.T, env *environment, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	err := execute(args, out, env)
	return out.String(), err
}

func failing() gospec.Spec {
	return spec.NewFunSpec("failing", func(s *spec.FunSpec) {
		s.It("fails", func(t *gospec.T) { t.Error("boom") })
		s.It("succeeds", func(t *gospec.T) {}, "unit")
	})
}

func TestVersionIsPrinted(t *testing.T) {
	env, _ := testEnv(t)
	out, err := exec(t, env, "--version")
	require.NoError(t, err)
	assert.Equal(t, "gospec version dev\n", out)
}

func TestListPrintsSuitesTestsAndTags(t *testing.T) {
	env, _ := testEnv(t)
	out, err := exec(t, env, "list", "stack/path-*")
	require.NoError(t, err)
	assert.Contains(t, out, "stack/path-fun\n")
	assert.Contains(t, out, "  A Stack is empty when created [unit]\n")
	assert.Contains(t, out, "stack/path-free\n")
	assert.Contains(t, out, "  A Stack holding 1 2 3 bounded by a capacity\n")
	assert.NotContains(t, out, "stack/fun\n")
}

func TestListIndentsNestedSuites(t *testing.T) {
	inner := spec.NewFunSpec("inner", func(s *spec.FunSpec) {
		s.It("i1", func(t *gospec.T) {})
	})
	outer := spec.NewFunSpec("outer", func(s *spec.FunSpec) {
		s.It("o1", func(t *gospec.T) {})
	}, spec.WithNested(inner))
	env, _ := testEnv(t, outer)
	out, err := exec(t, env, "list", "outer")
	require.NoError(t, err)
	assert.Equal(t, "outer\n  o1\n  inner\n    i1\n", out)
}

func TestListReportsMissingSuites(t *testing.T) {
	env, _ := testEnv(t)
	out, err := exec(t, env, "list", "queue")
	require.NoError(t, err)
	assert.Equal(t, "No suites found.\n", out)
}

func TestListFailsOnInvalidPattern(t *testing.T) {
	env, _ := testEnv(t)
	_, err := exec(t, env, "list", "[stack")
	assert.Error(t, err)
}

func TestRunReportsAllSelectedSuites(t *testing.T) {
	env, _ := testEnv(t)
	out, err := exec(t, env, "run", "--workers", "4", "stack/*")
	require.NoError(t, err)
	for _, suite := range []string{
		"stack/path-fun:", "stack/path-free:", "stack/fun:", "stack/props:",
	} {
		assert.Contains(t, out, suite)
	}
	assert.Contains(t, out, "5 succeeded, 0 failed")
	assert.Contains(t, out, "2 succeeded, 0 failed, 0 canceled, 1 pending")
}

func TestRunFailsIfATestFails(t *testing.T) {
	env, _ := testEnv(t, failing())
	out, err := exec(t, env, "run", "failing")
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, out, "✗ fails")
	assert.Contains(t, out, "boom")
}

func TestRunFiltersTestsByTags(t *testing.T) {
	env, _ := testEnv(t, failing())
	out, err := exec(t, env, "run", "--include", "unit", "failing")
	require.NoError(t, err)
	assert.Contains(t, out, "1 succeeded, 0 failed")

	env, _ = testEnv(t)
	out, err = exec(t, env, "run", "--exclude", "slow", "stack/fun")
	require.NoError(t, err)
	assert.Contains(t, out, "2 succeeded")
}

func TestRunReadsItsConfigurationFile(t *testing.T) {
	cfg := fs.New(t).Tmp().MkFile("gospec.yaml", `
suites: [failing]
exclude: [unit]
workers: 2
console:
  color: false
`)
	env, _ := testEnv(t, failing())
	out, err := exec(t, env, "run", "--config", cfg)
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, out, "0 succeeded, 1 failed")
	assert.NotContains(t, out, "stack/")

	env, _ = testEnv(t, failing())
	out, err = exec(t, env, "run", "--config", cfg, "--exclude", "nothing")
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, out, "1 succeeded, 1 failed")
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	env, _ := testEnv(t)
	_, err := exec(t, env, "run", "--workers", "0")
	var ve *config.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "workers", ve.Field)
}

func TestVerboseRunLogsDiscoveries(t *testing.T) {
	env, logs := testEnv(t)
	out, err := exec(t, env, "run", "--verbose", "stack/path-fun")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "construction started")
	assert.Contains(t, logs.String(),
		"discovery finished | constructions=5 suite=stack/path-fun")
	assert.Contains(t, out, "✓ A Stack is empty when created")
}

func TestRunWritesMetricsFile(t *testing.T) {
	tmp := fs.New(t).Tmp()
	env, _ := testEnv(t)
	_, err := exec(t, env, "run",
		"--metrics-file", tmp.Join("gospec.prom"), "stack/path-fun")
	require.NoError(t, err)
	metrics := tmp.FileContent("gospec.prom")
	assert.Contains(t, metrics, "gospec_events_total")
	assert.Contains(t, metrics, "gospec_constructions_total")
}

func TestRunIsRecordedInHistory(t *testing.T) {
	db := fs.New(t).Tmp().Join("runs.db")
	env, _ := testEnv(t, failing())
	_, err := exec(t, env, "run", "--db", db, "failing")
	require.ErrorIs(t, err, ErrRunFailed)
	env, _ = testEnv(t)
	_, err = exec(t, env, "run", "--db", db, "stack/fun")
	require.NoError(t, err)

	out, err := exec(t, env, "history", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.True(t, strings.HasSuffix(lines[1], "ok"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "failed"), lines[2])

	h, err := report.NewSQLite(db)
	require.NoError(t, err)
	runs, err := h.Runs(t.Context(), 10)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	out, err = exec(t, env, "history", "--db", db, "--run", runs[1].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "failing: TestFailed: fails")
	assert.Contains(t, out, "    boom")
	assert.Contains(t, out, "failing: completed")
}

func TestHistoryRequiresADatabase(t *testing.T) {
	env, _ := testEnv(t)
	_, err := exec(t, env, "history")
	assert.Error(t, err)
	_, err = exec(t, env, "history", "--db",
		fs.New(t).Tmp().Join("runs.db"), "--run", "unknown")
	assert.Error(t, err)
}
