// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBuffered(level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := New(buf)
	l.SetOutput(log.New(buf, "", 0))
	l.SetLevel(level)
	return l, buf
}

func TestLoggerWritesEntriesOfAtLeastItsLevel(t *testing.T) {
	for _, tc := range []struct {
		min, at Level
		logged  bool
	}{
		{LevelDebug, LevelDebug, true},
		{LevelInfo, LevelDebug, false},
		{LevelInfo, LevelWarn, true},
		{LevelWarn, LevelInfo, false},
		{LevelError, LevelWarn, false},
		{LevelError, LevelError, true},
	} {
		t.Run(tc.min.String()+"/"+tc.at.String(), func(t *testing.T) {
			l, buf := newBuffered(tc.min)
			map[Level]func(string, ...interface{}){
				LevelDebug: l.Debug, LevelInfo: l.Info,
				LevelWarn: l.Warn, LevelError: l.Error,
			}[tc.at]("message")
			if tc.logged {
				assert.Equal(t, tc.at.String()+": message\n", buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLoggerWritesSortedKeyValues(t *testing.T) {
	l, buf := newBuffered(LevelDebug)
	l.With("suite", "stack").Info("discovered",
		"constructions", 3, "err", errors.New("no db"), "note", "a b")
	assert.Equal(t, `INFO: discovered | constructions=3 err="no db" `+
		`note="a b" suite=stack`+"\n", buf.String())
}

func TestDerivedLoggersShareLevelAndOutput(t *testing.T) {
	l, buf := newBuffered(LevelWarn)
	derived := l.With("k", "v")
	derived.Info("hidden")
	l.SetLevel(LevelInfo)
	derived.Info("shown")
	assert.Equal(t, "INFO: shown | k=v\n", buf.String())
	assert.True(t, derived.Enabled(LevelInfo))
}

func TestDefaultLevelIsWarn(t *testing.T) {
	l := New(&bytes.Buffer{})
	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelWarn))
	assert.Equal(t, "LEVEL(7)", Level(7).String())
}
