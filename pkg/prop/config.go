// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package prop checks properties of generated values.  A property check
// is configured by a [Configuration] bounding the number of successful
// and discarded cases, the size of generated values and the number of
// workers checking cases concurrently; the former parameter set of
// [LegacyConfig] converts into an equivalent Configuration.
package prop

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrInvalidConfig is matched by the errors of a configuration's
// validation.
var ErrInvalidConfig = errors.New("prop: invalid configuration")

func invalid(field string, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field,
		fmt.Sprintf(format, args...))
}

// Configuration parameterizes a property check.
type Configuration struct {

	// MinSuccessful is the number of cases which must pass for a
	// property to hold.
	MinSuccessful int `yaml:"min_successful"`

	// MaxDiscardedFactor times MinSuccessful is the number of discarded
	// cases at which a check gives up.
	MaxDiscardedFactor float64 `yaml:"max_discarded_factor"`

	// MinSize is the smallest size a generator is asked for.
	MinSize int `yaml:"min_size"`

	// SizeRange is added to MinSize to get the largest size.
	SizeRange int `yaml:"size_range"`

	// Workers is the number of goroutines checking cases.
	Workers int `yaml:"workers"`

	// Seed seeds the generators; zero picks a random seed which is
	// reported by a falsified property.
	Seed uint64 `yaml:"seed"`

	legacy *LegacyConfig
}

// Default returns the configuration of 10 successful cases, a discard
// factor of 5.0, sizes from 0 to 100 and one worker.
func Default() Configuration {
	return Configuration{
		MinSuccessful:      10,
		MaxDiscardedFactor: 5.0,
		MinSize:            0,
		SizeRange:          100,
		Workers:            1,
	}
}

var configured = struct {
	mutex sync.RWMutex
	cfg   Configuration
}{cfg: Default()}

// Configure replaces the configuration returned by [Configured], e.g.
// by the one of a gospec run's configuration file.
func Configure(c Configuration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	configured.mutex.Lock()
	defer configured.mutex.Unlock()
	configured.cfg = c
	return nil
}

// Configured returns the last configuration passed to [Configure]
// defaulting to [Default].
func Configured() Configuration {
	configured.mutex.RLock()
	defer configured.mutex.RUnlock()
	return configured.cfg
}

// Validate returns an error matching [ErrInvalidConfig] naming the
// first parameter out of its bounds.
func (c Configuration) Validate() error {
	switch {
	case c.MinSuccessful <= 0:
		return invalid("MinSuccessful", "must be positive; got %d",
			c.MinSuccessful)
	case c.MaxDiscardedFactor < 0:
		return invalid("MaxDiscardedFactor",
			"must not be negative; got %g", c.MaxDiscardedFactor)
	case c.MinSize < 0:
		return invalid("MinSize", "must not be negative; got %d",
			c.MinSize)
	case c.SizeRange < 0:
		return invalid("SizeRange", "must not be negative; got %d",
			c.SizeRange)
	case c.Workers <= 0:
		return invalid("Workers", "must be positive; got %d", c.Workers)
	}
	return nil
}

// MaxSize is the largest size a generator is asked for.
func (c Configuration) MaxSize() int { return c.MinSize + c.SizeRange }

// MaxDiscarded is the number of discarded cases at which a check gives
// up.
func (c Configuration) MaxDiscarded() int {
	return int(math.Round(c.MaxDiscardedFactor * float64(c.MinSuccessful)))
}

// Legacy returns the legacy configuration c was converted from.
func (c Configuration) Legacy() (LegacyConfig, bool) {
	if c.legacy == nil {
		return LegacyConfig{}, false
	}
	return *c.legacy, true
}

// size returns the size of the i-th case spreading the sizes of the
// first MinSuccessful cases evenly over [MinSize, MaxSize].
func (c Configuration) size(i int) int {
	if c.MinSuccessful <= 1 || c.SizeRange == 0 {
		return c.MinSize
	}
	if i >= c.MinSuccessful {
		i = i % c.MinSuccessful
	}
	return c.MinSize + c.SizeRange*i/(c.MinSuccessful-1)
}

// LegacyConfig is the former parameter set of a property check bounding
// discarded cases by an absolute number and sizes by a maximum.
type LegacyConfig struct {
	MinSuccessful int `yaml:"min_successful"`
	MaxDiscarded  int `yaml:"max_discarded"`
	MinSize       int `yaml:"min_size"`
	MaxSize       int `yaml:"max_size"`
	Workers       int `yaml:"workers"`
}

// DefaultLegacy returns the legacy configuration of 10 successful cases,
// at most 500 discarded cases, sizes from 0 to 100 and one worker.
func DefaultLegacy() LegacyConfig {
	return LegacyConfig{
		MinSuccessful: 10,
		MaxDiscarded:  500,
		MinSize:       0,
		MaxSize:       100,
		Workers:       1,
	}
}

// Validate returns an error matching [ErrInvalidConfig] naming the
// first parameter out of its bounds.
func (l LegacyConfig) Validate() error {
	switch {
	case l.MinSuccessful <= 0:
		return invalid("MinSuccessful", "must be positive; got %d",
			l.MinSuccessful)
	case l.MaxDiscarded < 0:
		return invalid("MaxDiscarded", "must not be negative; got %d",
			l.MaxDiscarded)
	case l.MinSize < 0:
		return invalid("MinSize", "must not be negative; got %d",
			l.MinSize)
	case l.MaxSize < l.MinSize:
		return invalid("MaxSize", "must not be smaller than MinSize "+
			"%d; got %d", l.MinSize, l.MaxSize)
	case l.Workers <= 0:
		return invalid("Workers", "must be positive; got %d", l.Workers)
	}
	return nil
}

// ToConfiguration converts l into the equivalent configuration which
// retains l, see [Configuration.Legacy].
func (l LegacyConfig) ToConfiguration() (Configuration, error) {
	if err := l.Validate(); err != nil {
		return Configuration{}, err
	}
	legacy := l
	return Configuration{
		MinSuccessful: l.MinSuccessful,
		MaxDiscardedFactor: float64(l.MaxDiscarded+1) /
			float64(l.MinSuccessful),
		MinSize:   l.MinSize,
		SizeRange: l.MaxSize - l.MinSize,
		Workers:   l.Workers,
		legacy:    &legacy,
	}, nil
}
