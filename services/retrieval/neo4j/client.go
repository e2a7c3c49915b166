// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package neo4j is the production graph connector: a thin layer over the
// Neo4j driver that executes exactly two read-only Cypher queries — seed
// fetch and batched frontier expansion — and parses the records into the
// retrieval package's types. No business logic, no BFS state.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/AleutianAI/memorygraph/pkg/logging"
	"github.com/AleutianAI/memorygraph/services/retrieval"
)

// connectTimeout bounds the connectivity probe in Connect.
const connectTimeout = 5 * time.Second

// Store wraps a process-wide Neo4j driver as a retrieval.SessionFactory.
//
// The driver (connection pool) is shared and safe for concurrent session
// creation; individual sessions are not and are handed out one per
// exploration.
type Store struct {
	driver        neo4j.DriverWithContext
	database      string
	tagSimFloor   float64
	minActivation float64
	logger        *logging.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the connector logger. Defaults to logging.Default().
func WithLogger(l *logging.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore wraps an already-created driver (shared app-wide).
//
// # Inputs
//
//   - driver: The process-wide Neo4j driver. Must not be nil.
//   - config: Retrieval configuration; Database, TagSimFloor and
//     MinActivation are propagated into the expansion query.
//
// # Outputs
//
//   - *Store: The session factory.
//   - error: Non-nil if driver is nil or config invalid.
func NewStore(driver neo4j.DriverWithContext, config retrieval.Config, opts ...StoreOption) (*Store, error) {
	if driver == nil {
		return nil, fmt.Errorf("neo4j driver must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		driver:        driver,
		database:      config.Database,
		tagSimFloor:   config.TagSimFloor,
		minActivation: config.MinActivation,
		logger:        logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Component("neo4j_connector")
	s.logger.Debug("graph connector initialized", "database", s.database)
	return s, nil
}

// Connect creates a driver, verifies connectivity, and wraps it in a Store.
// Convenience for hosts that do not manage the driver themselves; such a
// Store owns its driver and Close must be called at shutdown.
func Connect(ctx context.Context, uri, username, password string, config retrieval.Config, opts ...StoreOption) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(probeCtx); err != nil {
		driver.Close(ctx) //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}

	return NewStore(driver, config, opts...)
}

// OpenSession implements retrieval.SessionFactory. Sessions are read-only
// and lightweight; the pool underneath is the shared resource.
func (s *Store) OpenSession(ctx context.Context) (retrieval.Session, error) {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	return &session{
		inner:         sess,
		tagSimFloor:   s.tagSimFloor,
		minActivation: s.minActivation,
	}, nil
}

// Close releases the underlying driver. Only call when the Store owns the
// driver (i.e. it was built via Connect).
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
