// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// configValidate is the validator instance for retrieval inputs.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

// Config holds the tuning knobs of the retrieval engine.
//
// The library owns no flags or environment variables; the host application
// wires configuration, typically starting from DefaultConfig and overriding
// fields, or by handing a YAML blob to ParseConfig.
type Config struct {
	// MaxDepth is the hop limit for any single path.
	MaxDepth int `yaml:"max_depth" validate:"min=1"`

	// MinActivation is the strict lower bound for retained transfer
	// energy. Candidates with energy <= MinActivation are pruned in-store.
	MinActivation float64 `yaml:"min_activation" validate:"gt=0"`

	// TagSimFloor is the baseline of the floored-Jaccard tag similarity.
	TagSimFloor float64 `yaml:"tag_sim_floor" validate:"gte=0,lte=1"`

	// MaxBranches caps per-parent fan-out at each depth.
	MaxBranches int `yaml:"max_branches" validate:"min=1"`

	// MaxRetries is the number of additional attempts per graph-store
	// call after a transient failure.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=5"`

	// Database is the graph-store database name.
	Database string `yaml:"database" validate:"required"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:      5,
		MinActivation: 0.005,
		TagSimFloor:   0.15,
		MaxBranches:   3,
		MaxRetries:    2,
		Database:      "memorygraph",
	}
}

// Validate checks the configuration against its documented ranges.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseConfig unmarshals a YAML blob supplied by the host application into
// a Config. Absent fields keep their DefaultConfig values. The result is
// validated before being returned.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validateSeeds checks the precondition contract on the seed list. A
// violation fails the whole Explore call before any exploration starts.
func validateSeeds(seeds []SeedInput) error {
	for i, seed := range seeds {
		if err := configValidate.Struct(seed); err != nil {
			return fmt.Errorf("%w: seed %d (%q): %w", ErrInvalidSeed, i, seed.NodeID, err)
		}
	}
	return nil
}
