// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, 0.005, cfg.MinActivation)
	assert.Equal(t, 0.15, cfg.TagSimFloor)
	assert.Equal(t, 3, cfg.MaxBranches)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "memorygraph", cfg.Database)
}

func TestConfig_Validate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max depth", func(c *Config) { c.MaxDepth = 0 }},
		{"non-positive min activation", func(c *Config) { c.MinActivation = 0 }},
		{"floor above one", func(c *Config) { c.TagSimFloor = 1.5 }},
		{"negative floor", func(c *Config) { c.TagSimFloor = -0.1 }},
		{"zero max branches", func(c *Config) { c.MaxBranches = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"excessive retries", func(c *Config) { c.MaxRetries = 6 }},
		{"empty database", func(c *Config) { c.Database = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseConfig_OverridesAndDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("max_depth: 3\nmax_branches: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, 2, cfg.MaxBranches)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.005, cfg.MinActivation)
	assert.Equal(t, "memorygraph", cfg.Database)
}

func TestParseConfig_RejectsInvalid(t *testing.T) {
	_, err := ParseConfig([]byte("min_activation: -1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseConfig([]byte("max_depth: [not, an, int]\n"))
	require.Error(t, err)
}

func TestValidateSeeds(t *testing.T) {
	require.NoError(t, validateSeeds([]SeedInput{{NodeID: "N1", Score: 0.7}}))
	require.NoError(t, validateSeeds(nil))

	err := validateSeeds([]SeedInput{{NodeID: "", Score: 0.7}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSeed)

	err = validateSeeds([]SeedInput{{NodeID: "N1", Score: 0}})
	assert.ErrorIs(t, err, ErrInvalidSeed)

	err = validateSeeds([]SeedInput{{NodeID: "N1", Score: 1.2}})
	assert.ErrorIs(t, err, ErrInvalidSeed)

	// Score exactly 1.0 is the upper bound of the valid range.
	require.NoError(t, validateSeeds([]SeedInput{{NodeID: "N1", Score: 1.0}}))
}
