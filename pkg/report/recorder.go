// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package report provides reporters for the events of gospec runs:
// a Recorder keeping events in memory, a Console printing them, Metrics
// counting them for prometheus and SQLite persisting them as run
// history.  Multi fans events out to several reporters.
package report

import (
	"sync"

	"github.com/slukits/gospec"
	"golang.org/x/exp/slices"
)

// Recorder keeps reported events in memory.  It is concurrency save
// and its zero value is ready to use.
type Recorder struct {
	mutex  sync.Mutex
	events []gospec.Event
}

// Report appends given event.
func (r *Recorder) Report(e gospec.Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []gospec.Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return slices.Clone(r.events)
}

// Of returns the recorded events of given kinds.
func (r *Recorder) Of(kk ...gospec.EventKind) []gospec.Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var ee []gospec.Event
	for _, e := range r.events {
		if slices.Contains(kk, e.Kind) {
			ee = append(ee, e)
		}
	}
	return ee
}

// Kinds returns the kinds of the recorded events in reporting order.
func (r *Recorder) Kinds() []gospec.EventKind {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	kk := make([]gospec.EventKind, len(r.events))
	for i, e := range r.events {
		kk[i] = e.Kind
	}
	return kk
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = nil
}

// Multi reports each event to all of its reporters in order.
type Multi []gospec.Reporter

func (m Multi) Report(e gospec.Event) {
	for _, r := range m {
		r.Report(e)
	}
}
