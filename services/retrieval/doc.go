// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package retrieval is the long-term-memory graph retrieval engine.
//
// Given seed nodes produced by upstream vector/lexical search, it performs
// bounded spreading-activation traversal over a labeled property graph and
// returns ranked multi-hop paths suitable for grounded answering.
//
// Each seed carries an initial activation R (its search score). At every
// depth the engine expands the live frontier in one batched store query:
// for a frontier node f with degree d, a RELATES edge of weight w and tag
// similarity s delivers
//
//	T = (R * w / sqrt(d)) * s
//
// of activation to its neighbor. Candidates at or below the activation
// threshold are pruned in-store; survivors come back grouped per parent in
// descending energy, the traversal state keeps the top MaxBranches per
// parent, arbitrates cross-parent collisions, and the loop repeats until
// every branch dies out or hits MaxDepth. The sqrt(d) denominator (rather
// than d) softens hub penalization so paths routinely reach depth 3-5.
//
// Explorations are read-only and stateless between calls: the engine never
// writes to the graph. One goroutine and one store session per seed;
// results stream as each exploration finishes.
//
// Subpackages:
//
//   - neo4j: the production graph connector (two Cypher queries).
//   - export: visualization, LLM-context, and debug formatters.
//   - telemetry: OTel spans and metric instruments.
package retrieval
