// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fs is a test helper: it provides filesystem fixtures for
// tests which need files on disk, e.g. configuration files or history
// databases of the gospec command.  It is imported by _test.go files
// only and is no part of gospec's API.  Operations don't return errors
// but fatal the associated testing instance; failing undo functions
// panic.
package fs

import (
	"fmt"
	gofs "io/fs"
	"os"
	fp "path/filepath"
)

// Tester is the testing instance a FS fatales on failing operations.
// A *testing.T is a Tester.
type Tester interface {
	Helper()
	Fatalf(string, ...interface{})
	TempDir() string
}

// FS creates the temporary directories of a test.
type FS struct {
	t     Tester
	tools *Tools
}

// New returns a FS for given testing instance using the os package's
// filesystem operations.
func New(t Tester) *FS {
	return &FS{t: t, tools: defaultTools()}
}

// Mock returns the filesystem operations of fs which may be replaced
// to provoke failing operations.
func (fs *FS) Mock() *Tools { return fs.tools }

// Tmp creates a new unique temporary directory which is removed by the
// testing framework at the end of the test.
func (fs *FS) Tmp() *Dir {
	return &Dir{t: fs.t, tools: fs.tools, path: fs.t.TempDir()}
}

// Dir provides filesystem operations relative to its path.  The zero
// value is not usable, see [FS.Tmp].
type Dir struct {
	t     Tester
	tools *Tools
	path  string
}

// Path returns the directory's path.
func (d *Dir) Path() string { return d.path }

// Join returns the path of given name relative to d.
func (d *Dir) Join(name string) string { return fp.Join(d.path, name) }

// Child returns the existing directory with given name inside d.  Child
// fatales if it doesn't exist or is no directory.
func (d *Dir) Child(name string) *Dir {
	d.t.Helper()
	stt, err := d.tools.Stat(d.Join(name))
	if err != nil {
		d.t.Fatalf("gospec: fs: dir: child: %s: %v", name, err)
		return nil
	}
	if !stt.IsDir() {
		d.t.Fatalf("gospec: fs: dir: child: %s: is no directory", name)
		return nil
	}
	return &Dir{t: d.t, tools: d.tools, path: d.Join(name)}
}

// Mk creates a new directory inside d by combining given names to a
// relative path.  The returned undo function removes the first of the
// given directories.
func (d *Dir) Mk(dir string, path ...string) (_ *Dir, undo func()) {
	d.t.Helper()
	p := fp.Join(append([]string{d.path, dir}, path...)...)
	if err := d.tools.MkdirAll(p, 0711); err != nil {
		d.t.Fatalf("gospec: fs: dir: create: %v", err)
		return nil, func() {}
	}
	return &Dir{t: d.t, tools: d.tools, path: p}, func() {
		if err := d.tools.RemoveAll(d.Join(dir)); err != nil {
			panic(fmt.Sprintf("gospec: fs: dir: undo create: %v", err))
		}
	}
}

// MkFile adds a new file with given name and content (mod 0644) to d
// and returns its path.  MkFile fatales if the file already exists or
// can't be written.
func (d *Dir) MkFile(name string, content string) (path string) {
	d.t.Helper()
	path = d.Join(name)
	if _, err := d.tools.Stat(path); err == nil {
		d.t.Fatalf("gospec: fs: dir: add file: %s: already exists", name)
		return path
	}
	if err := d.tools.WriteFile(path, []byte(content), 0644); err != nil {
		d.t.Fatalf("gospec: fs: dir: add file: write: %v", err)
	}
	return path
}

// FileContent returns the content of the file with given name relative
// to d.  FileContent fatales if it can't be read.
func (d *Dir) FileContent(name string) string {
	d.t.Helper()
	bb, err := d.tools.ReadFile(d.Join(name))
	if err != nil {
		d.t.Fatalf("gospec: fs: dir: read: %s: %v", name, err)
	}
	return string(bb)
}

// Tools are the potentially failing filesystem operations of a FS.
type Tools struct {

	// Stat defaults to and has the semantics of os.Stat
	Stat func(string) (gofs.FileInfo, error)

	// MkdirAll defaults to and has the semantics of os.MkdirAll
	MkdirAll func(string, gofs.FileMode) error

	// RemoveAll defaults to and has the semantics of os.RemoveAll
	RemoveAll func(string) error

	// ReadFile defaults to and has the semantics of os.ReadFile
	ReadFile func(string) ([]byte, error)

	// WriteFile defaults to and has the semantics of os.WriteFile
	WriteFile func(string, []byte, gofs.FileMode) error
}

func defaultTools() *Tools {
	return &Tools{
		Stat:      os.Stat,
		MkdirAll:  os.MkdirAll,
		RemoveAll: os.RemoveAll,
		ReadFile:  os.ReadFile,
		WriteFile: os.WriteFile,
	}
}
