// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package prop

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/slukits/gospec"
	"golang.org/x/sync/errgroup"
)

// ErrExhausted is returned by [ForAll] if too many cases were discarded
// before enough cases passed.
var ErrExhausted = errors.New("prop: gave up")

// Failure reports a falsified property.
type Failure struct {

	// Arg is the generated value falsifying the property.
	Arg interface{}

	// Size is the size Arg was generated for.
	Size int

	// Succeeded is the number of cases which passed before.
	Succeeded int

	// Seed reproduces the check if the configuration's seed is set to
	// it and the check runs with one worker.
	Seed uint64

	// Err is the panic of the check or nil if it returned false.
	Err error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("prop: falsified after %d passed cases by "+
			"%#v (size %d, seed %d): %v", f.Succeeded, f.Arg, f.Size,
			f.Seed, f.Err)
	}
	return fmt.Sprintf("prop: falsified after %d passed cases by %#v "+
		"(size %d, seed %d)", f.Succeeded, f.Arg, f.Size, f.Seed)
}

func (f *Failure) Unwrap() error { return f.Err }

type discarded struct{}

// Discard ends the running case of a check as discarded, i.e. the case
// neither passes nor fails.  It must only be called from inside a
// check.
func Discard() { panic(discarded{}) }

// aborted carries a run-aborting panic of a check out of its worker.
type aborted struct{ v interface{} }

func (aborted) Error() string { return "prop: check aborted" }

// ForAll checks given property for values generated by given generator
// until cfg.MinSuccessful cases passed.  It returns a [*Failure] for the
// first case falsifying the property or an error matching
// [ErrExhausted] once cfg.MaxDiscarded cases were discarded.  Cases are
// checked by cfg.Workers goroutines.  A run-aborting panic of the check
// is re-panicked on the calling goroutine.
func ForAll[V any](
	cfg Configuration, gen Gen[V], check func(V) bool,
) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	var (
		cases, passed, dropped atomic.Int64
		once                   sync.Once
		failure                error
	)
	fail := func(err error) error {
		once.Do(func() { failure = err })
		return err
	}
	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < cfg.Workers; w++ {
		rnd := rand.New(rand.NewPCG(seed, uint64(w)))
		g.Go(func() error {
			for ctx.Err() == nil {
				if passed.Load() >= int64(cfg.MinSuccessful) {
					return nil
				}
				size := cfg.size(int(cases.Add(1) - 1))
				arg := gen(rnd, size)
				ok, isDiscarded, err := checkCase(check, arg)
				switch {
				case err != nil:
					var a aborted
					if errors.As(err, &a) {
						return fail(a)
					}
					return fail(&Failure{Arg: arg, Size: size,
						Succeeded: int(passed.Load()), Seed: seed,
						Err: err})
				case isDiscarded:
					if dropped.Add(1) >= int64(cfg.MaxDiscarded()) {
						return fail(fmt.Errorf(
							"%w after %d passed and %d discarded cases",
							ErrExhausted, passed.Load(), dropped.Load()))
					}
				case !ok:
					return fail(&Failure{Arg: arg, Size: size,
						Succeeded: int(passed.Load()), Seed: seed})
				default:
					passed.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}
	var a aborted
	if errors.As(failure, &a) {
		panic(a.v)
	}
	return failure
}

// checkCase runs given check for given argument recovering its panics.
func checkCase[V any](
	check func(V) bool, arg V,
) (ok, isDiscarded bool, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, isDiscarded = r.(discarded); isDiscarded {
			return
		}
		if gospec.IsRunAborting(r) {
			err = aborted{v: r}
			return
		}
		o, _ := gospec.Classify(r)
		switch o := o.(type) {
		case *gospec.Failed:
			err = o.Err
		case *gospec.Canceled:
			err = o.Err
		default:
			err = fmt.Errorf("prop: check ended %s", o)
		}
	}()
	return check(arg), false, nil
}
