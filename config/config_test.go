// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kelvindb/merkletree/builder"
	"github.com/kelvindb/merkletree/config"
)

func TestDefaults(t *testing.T) {
	o := config.Defaults()
	require.Equal(t, builder.DefaultParallelThreshold, o.ParallelThreshold)
}

func TestApplyOptions(t *testing.T) {
	o := config.Apply(config.WithParallelThreshold(5), config.WithFastBatchHashing(true))
	require.Equal(t, 5, o.ParallelThreshold)
	require.True(t, o.FastBatchHashing)
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merkletree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallel_threshold: 10\nlog_level: debug\nfast_batch_hashing: true\n"), 0o644))

	o, err := config.LoadDefaults(path)
	require.NoError(t, err)
	require.Equal(t, 10, o.ParallelThreshold)
	require.Equal(t, zerolog.DebugLevel, o.Logger.GetLevel())
	require.True(t, o.FastBatchHashing)
}

func TestLoadDefaultsRejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merkletree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: not-a-level\n"), 0o644))

	_, err := config.LoadDefaults(path)
	require.Error(t, err)
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	_, err := config.LoadDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
