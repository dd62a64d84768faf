// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logging provides the leveled key-value logger of the gospec
// command.  Library packages of gospec don't log; what a test logs goes
// through its T.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger writes entries of at least its level as
//
//	LEVEL: message | key=value key=value
//
// with keys in lexical order.  Loggers derived by With share their
// parent's level and output.
type Logger struct {
	shared *shared
	fields map[string]interface{}
}

type shared struct {
	mutex sync.RWMutex
	level Level
	out   *log.Logger
}

// New returns a logger writing entries of level warn and above to given
// writer.
func New(w io.Writer) *Logger {
	return &Logger{
		shared: &shared{level: LevelWarn, out: log.New(w, "", log.LstdFlags)},
		fields: map[string]interface{}{},
	}
}

// SetLevel sets the minimum level of logged entries.
func (l *Logger) SetLevel(level Level) {
	l.shared.mutex.Lock()
	defer l.shared.mutex.Unlock()
	l.shared.level = level
}

// SetOutput replaces the logger's output.
func (l *Logger) SetOutput(out *log.Logger) {
	l.shared.mutex.Lock()
	defer l.shared.mutex.Unlock()
	l.shared.out = out
}

// Enabled reports if entries of given level are written.
func (l *Logger) Enabled(level Level) bool {
	l.shared.mutex.RLock()
	defer l.shared.mutex.RUnlock()
	return level >= l.shared.level
}

// With returns a logger adding given key-value pair to each entry.
func (l *Logger) With(key string, value interface{}) *Logger {
	ff := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		ff[k] = v
	}
	ff[key] = value
	return &Logger{shared: l.shared, fields: ff}
}

func (l *Logger) log(level Level, msg string, kv ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	ff := make(map[string]interface{}, len(l.fields)+len(kv)/2)
	for k, v := range l.fields {
		ff[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			ff[k] = kv[i+1]
		}
	}
	var b strings.Builder
	b.WriteString(level.String())
	b.WriteString(": ")
	b.WriteString(msg)
	if len(ff) > 0 {
		keys := make([]string, 0, len(ff))
		for k := range ff {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, format(ff[k]))
		}
	}
	l.shared.mutex.RLock()
	defer l.shared.mutex.RUnlock()
	l.shared.out.Print(b.String())
}

func format(v interface{}) string {
	switch v := v.(type) {
	case string:
		if strings.ContainsAny(v, " \t\n") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case error:
		return fmt.Sprintf("%q", v.Error())
	}
	return fmt.Sprint(v)
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LevelDebug, msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LevelInfo, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LevelWarn, msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LevelError, msg, kv...) }
