// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

import (
	"errors"
	"fmt"
)

// Sentinel errors for the retrieval engine.
var (
	// ErrInvalidConfig indicates a Config outside its documented ranges.
	ErrInvalidConfig = errors.New("invalid retrieval config")

	// ErrInvalidSeed indicates a seed input violating the precondition
	// contract (empty node id, score outside (0, 1]).
	ErrInvalidSeed = errors.New("invalid seed input")

	// ErrMalformedRecord indicates a graph-store record missing required
	// structure (e.g. a node without an id). Never retried.
	ErrMalformedRecord = errors.New("malformed graph record")
)

// TransientError marks a graph-store failure worth retrying: connection
// drops, timeouts, and anything the store's own classification calls
// retryable. The connector wraps such failures; the orchestrator's retry
// loop unwraps them via IsTransient.
type TransientError struct {
	// Op is the store operation that failed ("fetch_seed", "expand_frontier").
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return fmt.Sprintf("transient graph-store failure in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// ExplorationError is the per-seed fatal failure surfaced through
// Outcome.Err: the seed's exploration terminated without a result while
// other seeds proceeded.
type ExplorationError struct {
	SeedID string
	Err    error
}

// Error implements the error interface.
func (e *ExplorationError) Error() string {
	return fmt.Sprintf("exploration from seed %q failed: %v", e.SeedID, e.Err)
}

// Unwrap returns the final attempt's error.
func (e *ExplorationError) Unwrap() error {
	return e.Err
}
