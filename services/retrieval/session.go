// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

import "context"

// Session is one exploration's handle on the graph store. Sessions are not
// safe for concurrent use; each exploration goroutine owns exactly one and
// closes it on every exit path. The production implementation lives in the
// neo4j subpackage.
type Session interface {
	// FetchSeed looks up a node by its stored id property, any label.
	// A missing node is not an error: Found is false.
	FetchSeed(ctx context.Context, nodeID string) (SeedFetchResult, error)

	// ExpandFrontier runs one batched expansion over the current frontier.
	//
	// For each frontier entry (f, R) and each RELATES edge from f to a
	// neighbor not in visitedIDs, the store computes
	//
	//	T = (R * weight / sqrt(degree(f))) * tagSim(edgeTags, queryTags)
	//
	// with weight defaulting to 0.01 and degree counted undirected at
	// query time, and keeps the candidate iff T > MinActivation. The
	// returned list is grouped by parent id with each group sorted by
	// transfer energy descending; the traversal state takes top-K
	// without re-sorting.
	//
	// Transient failures come back wrapped in *TransientError. A record
	// missing its node id wraps ErrMalformedRecord and is fatal.
	ExpandFrontier(ctx context.Context, frontier []FrontierInput, visitedIDs []string, queryTags []string) ([]ExpansionCandidate, error)

	// Close releases the session. Safe to call with an already-cancelled
	// context; release must still happen.
	Close(ctx context.Context) error
}

// SessionFactory mints sessions from a process-wide graph-store driver.
// The factory itself must be safe for concurrent use.
type SessionFactory interface {
	OpenSession(ctx context.Context) (Session, error)
}
