// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the YAML configuration of a gospec run:
//
//	include: [unit]
//	exclude: [slow]
//	suites: ["stack*", "**/queue"]
//	workers: 4
//	console: {verbose: true, color: false}
//	database: .gospec/history.db
//	metrics_file: .gospec/metrics.prom
//	property:
//	  min_successful: 100
//	  workers: 2
//
// A missing file yields the [Default] configuration.  Values set in a
// file replace the defaults; a property section given in the legacy
// format (max_discarded, max_size) is converted.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/slukits/gospec"
	"github.com/slukits/gospec/pkg/prop"
	"gopkg.in/yaml.v3"
)

// Console configures the console reporter.
type Console struct {
	Verbose bool `yaml:"verbose"`
	Color   bool `yaml:"color"`
}

// Config is the configuration of a gospec run.
type Config struct {

	// Include and Exclude are the tags of the run's filter.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Suites are the doublestar patterns selecting the suites to run;
	// none selects all.
	Suites []string `yaml:"suites"`

	// Workers is the number of suites run concurrently.
	Workers int `yaml:"workers"`

	Console Console `yaml:"console"`

	// Database is the path of the sqlite run history; empty disables
	// the history.
	Database string `yaml:"database"`

	// MetricsFile is the path the run's prometheus metrics are written
	// to; empty disables writing them.
	MetricsFile string `yaml:"metrics_file"`

	// Property is the default configuration of property checks.
	Property prop.Configuration `yaml:"property"`
}

// Default returns the configuration running all suites one at a time
// with colored console output and default property checks.
func Default() Config {
	return Config{
		Workers:  1,
		Console:  Console{Color: true},
		Property: prop.Default(),
	}
}

// ValidationError reports an invalid value of a configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate returns a [*ValidationError] for the first invalid field.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return &ValidationError{Field: "workers",
			Message: fmt.Sprintf("must be positive; got %d", c.Workers)}
	}
	for _, t := range append(append([]string{}, c.Include...),
		c.Exclude...) {
		if t == "" {
			return &ValidationError{Field: "include/exclude",
				Message: "tags must not be empty"}
		}
	}
	if err := c.Property.Validate(); err != nil {
		return &ValidationError{Field: "property", Message: err.Error()}
	}
	return nil
}

// Filter returns the tag filter of c.
func (c Config) Filter() gospec.Filter {
	return gospec.Filter{Include: c.Include, Exclude: c.Exclude}
}

// Load reads the configuration at given path on top of the defaults and
// validates it.  A missing file isn't an error.
func Load(path string) (Config, error) {
	bb, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(bb)
}

// Parse decodes given YAML on top of the defaults and validates the
// result.
func Parse(bb []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(bb, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var raw struct {
		Property yaml.Node `yaml:"property"`
	}
	if err := yaml.Unmarshal(bb, &raw); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if !raw.Property.IsZero() {
		p, err := property(&raw.Property)
		if err != nil {
			return Config{}, err
		}
		cfg.Property = p
	}
	return cfg, cfg.Validate()
}

// property decodes a property section which is in the legacy format iff
// it sets max_discarded or max_size.
func property(n *yaml.Node) (prop.Configuration, error) {
	keys := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys[n.Content[i].Value] = true
	}
	if keys["max_discarded"] || keys["max_size"] {
		legacy := prop.DefaultLegacy()
		if err := n.Decode(&legacy); err != nil {
			return prop.Configuration{}, fmt.Errorf("config: %w", err)
		}
		p, err := legacy.ToConfiguration()
		if err != nil {
			return prop.Configuration{}, &ValidationError{
				Field: "property", Message: err.Error()}
		}
		return p, nil
	}
	p := prop.Default()
	if err := n.Decode(&p); err != nil {
		return prop.Configuration{}, fmt.Errorf("config: %w", err)
	}
	return p, nil
}
