// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package catalog collects the specs a gospec binary can list and run.
// Specs register themselves, typically from an init function:
//
//	func init() { catalog.Register(stackSpec()) }
//
// and are selected by doublestar patterns on their suite names, e.g.
// "stack*" or "**/queue".
package catalog

import (
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/slukits/gospec"
	"golang.org/x/exp/slices"
)

// Catalog maps suite names to specs.  Its zero value is ready to use.
type Catalog struct {
	mutex sync.Mutex
	specs map[string]gospec.Spec
}

// Register adds given specs failing if a suite name is already taken.
func (c *Catalog) Register(ss ...gospec.Spec) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.specs == nil {
		c.specs = map[string]gospec.Spec{}
	}
	for _, s := range ss {
		if _, ok := c.specs[s.SuiteName()]; ok {
			return fmt.Errorf("catalog: %w: suite %q registered twice",
				gospec.ErrNotAllowed, s.SuiteName())
		}
		c.specs[s.SuiteName()] = s
	}
	return nil
}

// Select returns the specs whose names match any of given doublestar
// patterns sorted by name.  No pattern selects all specs.
func (c *Catalog) Select(patterns ...string) ([]gospec.Spec, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("catalog: invalid pattern %q: %w",
				p, doublestar.ErrBadPattern)
		}
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	names := make([]string, 0, len(c.specs))
	for n := range c.specs {
		names = append(names, n)
	}
	slices.Sort(names)
	var ss []gospec.Spec
	for _, n := range names {
		if len(patterns) == 0 || matches(patterns, n) {
			ss = append(ss, c.specs[n])
		}
	}
	return ss, nil
}

func matches(patterns []string, name string) bool {
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, name) {
			return true
		}
	}
	return false
}

// Len returns the number of registered specs.
func (c *Catalog) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.specs)
}

var std = &Catalog{}

// Register adds given specs to the default catalog.  It panics if a
// suite name is already taken.
func Register(ss ...gospec.Spec) {
	if err := std.Register(ss...); err != nil {
		panic(err)
	}
}

// Select selects specs of the default catalog, see [Catalog.Select].
func Select(patterns ...string) ([]gospec.Spec, error) {
	return std.Select(patterns...)
}

// Default returns the default catalog.
func Default() *Catalog { return std }
