// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/slukits/gospec"
	_ "modernc.org/sqlite"
)

// SQLite persists reported events as run history in a single-file
// database.  The schema is created on first use; WAL mode lets history
// queries read while a run writes.
//
//	db, err := report.NewSQLite(".gospec/history.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// Use ":memory:" for a database which is gone after Close.
type SQLite struct {
	mutex sync.Mutex
	db    *sql.DB
	err   error
}

// NewSQLite opens respectively creates the history database at given
// path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("report: open history: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("report: %s: %w", pragma, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("report: create history schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	suite TEXT NOT NULL,
	kind TEXT NOT NULL,
	test TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	duration_ns INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	infos TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id)`,
}

// Report inserts given event.  Since reporters can't fail the first
// error is kept and returned by [SQLite.Err] and [SQLite.Close].
func (s *SQLite) Report(e gospec.Event) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return
	}
	infos, err := json.Marshal(append(append([]string{}, e.Infos...),
		e.Markups...))
	if err != nil {
		s.err = fmt.Errorf("report: encode infos: %w", err)
		return
	}
	errMsg := ""
	if e.Err != nil {
		errMsg = e.Err.Error()
	}
	_, err = s.db.Exec(`INSERT INTO events (run_id, suite, kind, test,
		location, duration_ns, error, infos, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Suite, e.Kind.String(), e.Test, e.Location,
		int64(e.Duration), errMsg, string(infos), e.Time.UTC())
	if err != nil {
		s.err = fmt.Errorf("report: insert event: %w", err)
	}
}

// Err returns the first error of reporting an event.
func (s *SQLite) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.err
}

// Close closes the database and returns the first reporting error.
func (s *SQLite) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Close(); err != nil && s.err == nil {
		return fmt.Errorf("report: close history: %w", err)
	}
	return s.err
}

// Run summarizes a recorded run.
type Run struct {
	ID      string
	Started time.Time
	Suites  int
	Status  gospec.Status
}

// Runs returns the summaries of the recorded runs, latest first.
func (s *SQLite) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, MIN(created_at),
			SUM(kind = 'SuiteStarting'),
			SUM(kind = 'TestSucceeded'),
			SUM(kind = 'TestFailed'),
			SUM(kind = 'TestCanceled'),
			SUM(kind = 'TestPending'),
			SUM(kind = 'TestIgnored'),
			SUM(kind = 'SuiteAborted')
		FROM events GROUP BY run_id ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("report: query runs: %w", err)
	}
	defer rows.Close()
	var rr []Run
	for rows.Next() {
		var (
			r       Run
			started string
			aborted int
		)
		if err := rows.Scan(&r.ID, &started, &r.Suites,
			&r.Status.Succeeded, &r.Status.Failed, &r.Status.Canceled,
			&r.Status.Pending, &r.Status.Ignored, &aborted); err != nil {
			return nil, fmt.Errorf("report: scan run: %w", err)
		}
		r.Started = parseTime(started)
		r.Status.Aborted = aborted > 0
		rr = append(rr, r)
	}
	return rr, rows.Err()
}

// Stored is a persisted event.
type Stored struct {
	Suite    string
	Kind     string
	Test     string
	Location string
	Duration time.Duration
	Error    string
	Infos    []string
}

// Events returns the events of the run with given id in reporting
// order.
func (s *SQLite) Events(ctx context.Context, runID string) ([]Stored, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT suite, kind, test, location, duration_ns, error, infos
		FROM events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("report: query events: %w", err)
	}
	defer rows.Close()
	var ee []Stored
	for rows.Next() {
		var (
			e     Stored
			ns    int64
			infos string
		)
		if err := rows.Scan(&e.Suite, &e.Kind, &e.Test, &e.Location,
			&ns, &e.Error, &infos); err != nil {
			return nil, fmt.Errorf("report: scan event: %w", err)
		}
		e.Duration = time.Duration(ns)
		if err := json.Unmarshal([]byte(infos), &e.Infos); err != nil {
			return nil, fmt.Errorf("report: decode infos: %w", err)
		}
		ee = append(ee, e)
	}
	return ee, rows.Err()
}

// parseTime parses the aggregated timestamps sqlite returns as text.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
