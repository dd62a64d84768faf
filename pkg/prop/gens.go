// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package prop

import (
	"math/rand/v2"

	"golang.org/x/exp/constraints"
)

// Gen generates a value of given size using given source of randomness.
// What size means is up to the generator, e.g. the bound of a number or
// the length of a slice.
type Gen[V any] func(r *rand.Rand, size int) V

// Ints generates integers in [-size, size] which are truncated to N's
// range.
func Ints[N constraints.Integer]() Gen[N] {
	return func(r *rand.Rand, size int) N {
		return N(r.IntN(2*size+1) - size)
	}
}

// Naturals generates integers in [0, size].
func Naturals[N constraints.Integer]() Gen[N] {
	return func(r *rand.Rand, size int) N {
		return N(r.IntN(size + 1))
	}
}

// Floats generates floats in [-size, size).
func Floats[F constraints.Float]() Gen[F] {
	return func(r *rand.Rand, size int) F {
		return F((r.Float64()*2 - 1) * float64(size))
	}
}

// IntPairs generates pairs of integers in [-size, size].
func IntPairs() Gen[[2]int] {
	ints := Ints[int]()
	return func(r *rand.Rand, size int) [2]int {
		return [2]int{ints(r, size), ints(r, size)}
	}
}

const alphanum = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Strings generates alphanumeric strings of up to size characters.
func Strings() Gen[string] {
	return func(r *rand.Rand, size int) string {
		bb := make([]byte, r.IntN(size+1))
		for i := range bb {
			bb[i] = alphanum[r.IntN(len(alphanum))]
		}
		return string(bb)
	}
}

// SlicesOf generates slices of up to size values of given generator
// which generates its values with the same size.
func SlicesOf[V any](g Gen[V]) Gen[[]V] {
	return func(r *rand.Rand, size int) []V {
		vv := make([]V, r.IntN(size+1))
		for i := range vv {
			vv[i] = g(r, size)
		}
		return vv
	}
}

// OneOf picks one of given values.  It panics if no value is given.
func OneOf[V any](vv ...V) Gen[V] {
	if len(vv) == 0 {
		panic("prop: one of nothing")
	}
	return func(r *rand.Rand, _ int) V {
		return vv[r.IntN(len(vv))]
	}
}

// Map transforms the values of given generator.
func Map[V, W any](g Gen[V], f func(V) W) Gen[W] {
	return func(r *rand.Rand, size int) W {
		return f(g(r, size))
	}
}
