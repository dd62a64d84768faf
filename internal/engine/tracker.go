// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/slukits/gospec"
	"golang.org/x/exp/slices"
)

// Path identifies a node of a suite's tree by the child indices leading
// from the root to it.
type Path []int

func (p Path) String() string {
	if len(p) == 0 {
		return "root"
	}
	ss := make([]string, len(p))
	for i, idx := range p {
		ss[i] = strconv.Itoa(idx)
	}
	return strings.Join(ss, ".")
}

// prefixes reports if p is a prefix of o or equal to o.
func (p Path) prefixes(o Path) bool {
	return len(p) <= len(o) && slices.Equal(p, o[:len(p)])
}

// nodeKind discriminates the nodes of a suite's tree.
type nodeKind uint8

const (
	branchNode nodeKind = iota + 1
	leafNode
)

func (k nodeKind) String() string {
	if k == leafNode {
		return "test"
	}
	return "branch"
}

// Leaf describes a test as it is declared by a style's DSL.
type Leaf struct {
	Text     string
	Body     func(*gospec.T)
	Tags     []string
	Ignored  bool
	Location string
}

// Tracker steers one construction of a suite down the path to its
// target leaf.  A new Tracker is passed to each construction; it is the
// explicit context a style's DSL calls into.  A Tracker must not be
// used after its construction has returned.
type Tracker struct {
	engine *Engine

	// target is the path of the leaf to execute; nil during the initial
	// construction whose target is the first leaf found.
	target     Path
	targetKind nodeKind

	// next is the first node found after the target was reached.
	next     Path
	nextKind nodeKind

	current Path
	child   int
	texts   []string
	reached bool
	inLeaf  bool
	closed  bool
}

func newTracker(e *Engine, target Path, kind nodeKind) *Tracker {
	return &Tracker{engine: e, target: target, targetKind: kind}
}

// Target returns the path of the leaf the tracker steers to, nil for
// the initial construction.
func (tr *Tracker) Target() Path { return tr.target }

// Next returns the path recorded as target of the next construction.
func (tr *Tracker) Next() Path { return tr.next }

func (tr *Tracker) nextPath() Path {
	p := make(Path, len(tr.current)+1)
	copy(p, tr.current)
	p[len(tr.current)] = tr.child
	tr.child++
	return p
}

// isInTargetPath reports if the node at given path is to be entered,
// i.e. the target wasn't reached yet and either there is no target
// (initial construction) or the node is on the way to the target or
// inside the target branch.
func (tr *Tracker) isInTargetPath(p Path) bool {
	if tr.reached {
		return false
	}
	if tr.target == nil {
		return true
	}
	return p.prefixes(tr.target) || tr.target.prefixes(p)
}

// recordNextPath remembers the first node not entered after the target
// was reached as the next construction's target.
func (tr *Tracker) recordNextPath(p Path, kind nodeKind) {
	if tr.reached && tr.next == nil {
		tr.next, tr.nextKind = p, kind
	}
}

// isSwappedTarget reports if given path is the target's path while
// the node found there is of an other kind than the target.
func (tr *Tracker) isSwappedTarget(p Path, kind nodeKind) bool {
	return tr.target != nil && tr.targetKind != kind &&
		slices.Equal(p, tr.target)
}

func (tr *Tracker) ensureOpen(text, location string) {
	if tr.closed {
		panic(&gospec.TestRegistrationClosedError{
			Name: text, Location: location})
	}
	if tr.inLeaf {
		panic(&gospec.NotAllowedError{
			Msg: fmt.Sprintf(
				"%q can't be nested inside a test", text),
			Location: location,
		})
	}
}

func (tr *Tracker) structureChanged(p Path, location string) {
	panic(&gospec.NotAllowedError{
		Msg: fmt.Sprintf("suite structure changed at %s: "+
			"target %s not found", p, tr.target),
		Location: location,
	})
}

func (tr *Tracker) kindChanged(found nodeKind, location string) {
	panic(&gospec.NotAllowedError{
		Msg: fmt.Sprintf("suite structure changed at %s: "+
			"found a %s where a %s was", tr.target, found, tr.targetKind),
		Location: location,
	})
}

func (tr *Tracker) name(text string) string {
	if len(tr.texts) == 0 {
		return text
	}
	return strings.Join(tr.texts, " ") + " " + text
}

// Branch enters given body iff the branch is on the target path.  A
// branch whose body reaches no leaf is an empty leaf: it becomes the
// reached target itself without producing a test.
func (tr *Tracker) Branch(text, location string, body func()) {
	tr.ensureOpen(text, location)
	p := tr.nextPath()
	if !tr.isInTargetPath(p) {
		tr.recordNextPath(p, branchNode)
		return
	}
	if tr.isSwappedTarget(p, branchNode) {
		tr.kindChanged(branchNode, location)
	}
	parent, child := tr.current, tr.child
	tr.current, tr.child = p, 0
	tr.texts = append(tr.texts, text)
	body()
	tr.texts = tr.texts[:len(tr.texts)-1]
	tr.current, tr.child = parent, child
	if tr.reached {
		return
	}
	if tr.target != nil && len(p) < len(tr.target) {
		tr.structureChanged(p, location)
	}
	tr.reached = true
}

// Leaf executes given leaf iff it is the target and records its result
// in the engine's registry.  Ignored leaves are recorded without being
// executed.
func (tr *Tracker) Leaf(l Leaf) {
	tr.ensureOpen(l.Text, l.Location)
	p := tr.nextPath()
	if !tr.isInTargetPath(p) {
		tr.recordNextPath(p, leafNode)
		return
	}
	if tr.isSwappedTarget(p, leafNode) {
		tr.kindChanged(leafNode, l.Location)
	}
	if tr.target != nil && len(p) < len(tr.target) {
		tr.structureChanged(p, l.Location)
	}
	tr.reached = true
	e := gospec.Entry{
		Name:     tr.name(l.Text),
		Text:     l.Text,
		Tags:     l.Tags,
		Ignored:  l.Ignored,
		Location: l.Location,
	}
	if tr.engine.registry.Has(e.Name) {
		panic(&gospec.DuplicateTestNameError{
			Name: e.Name, Location: l.Location})
	}
	if !l.Ignored {
		r := tr.exec(l.Body)
		e.Outcome, e.Duration = r.Outcome, r.Duration
		e.Infos, e.Markups = r.Infos, r.Markups
	}
	if err := tr.engine.registry.Register(e); err != nil {
		panic(err)
	}
}

func (tr *Tracker) exec(body func(*gospec.T)) gospec.Result {
	tr.inLeaf = true
	defer func() { tr.inLeaf = false }()
	if body == nil {
		return gospec.Result{Outcome: gospec.Pending{}}
	}
	return gospec.Exec(body)
}
