// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// The functional-options shape here mirrors
// github.com/pk910/dynamic-ssz's DynSszOption/DynSszOptions pattern
// (options.go), extended with a YAML-backed defaults loader in the style
// several repos in the retrieval pack use for service configuration.

// Package config holds the tunable knobs of a Tree: the parallel
// builder's level threshold, the fast batch hashing toggle and a
// structured logger.
package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/kelvindb/merkletree/builder"
)

// Options holds the resolved configuration for a Tree.
type Options struct {
	// ParallelThreshold overrides builder.DefaultParallelThreshold.
	ParallelThreshold int

	// Logger is kept in the Tree's options. The Tree engine emits no log
	// events through it and does not pass it to the Store; badgerstore.Store
	// takes its own logger in Open and New.
	Logger zerolog.Logger

	// FastBatchHashing enables digest.WithFastBatchHashing's gohashtree
	// path in Construct, when the Tree's digest width is [32]byte.
	FastBatchHashing bool
}

// Option mutates an Options in place.
type Option func(*Options)

// WithParallelThreshold overrides the levelCount above which the Builder
// switches to parallel divide-and-conquer.
func WithParallelThreshold(levels int) Option {
	return func(o *Options) { o.ParallelThreshold = levels }
}

// WithLogger sets Options.Logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Options) { o.Logger = log }
}

// WithFastBatchHashing toggles digest.WithFastBatchHashing's gohashtree
// path in Construct.
func WithFastBatchHashing(enabled bool) Option {
	return func(o *Options) { o.FastBatchHashing = enabled }
}

// Defaults returns the zero-configuration Options: the Builder's default
// threshold and a no-op logger.
func Defaults() Options {
	return Options{
		ParallelThreshold: builder.DefaultParallelThreshold,
		Logger:            zerolog.Nop(),
	}
}

// Apply starts from Defaults and applies opts in order.
func Apply(opts ...Option) Options {
	o := Defaults()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fileConfig is the on-disk shape loaded by LoadDefaults. zerolog.Logger
// itself cannot round-trip through YAML, so only its level is read from
// file; callers who need a customised writer should load a fileConfig's
// LogLevel and build their own logger with WithLogger.
type fileConfig struct {
	ParallelThreshold int    `yaml:"parallel_threshold"`
	LogLevel          string `yaml:"log_level"`
	FastBatchHashing  bool   `yaml:"fast_batch_hashing"`
}

// LoadDefaults reads a YAML configuration file and returns the Options it
// describes, starting from Defaults for any field the file omits.
func LoadDefaults(path string) (Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: could not read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Options{}, fmt.Errorf("config: could not parse %s: %w", path, err)
	}

	o := Defaults()
	if fc.ParallelThreshold > 0 {
		o.ParallelThreshold = fc.ParallelThreshold
	}
	o.FastBatchHashing = fc.FastBatchHashing
	if fc.LogLevel != "" {
		lvl, err := zerolog.ParseLevel(fc.LogLevel)
		if err != nil {
			return Options{}, fmt.Errorf("config: invalid log_level %q in %s: %w", fc.LogLevel, path, err)
		}
		o.Logger = zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	}
	return o, nil
}
