// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package neo4j

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedQuery_Shape(t *testing.T) {
	assert.Contains(t, seedQuery, "MATCH (n {id: $node_id})")
	assert.Contains(t, seedQuery, "properties(n) AS data")
	assert.Contains(t, seedQuery, "labels(n) AS labels")
}

func TestExpandQuery_Shape(t *testing.T) {
	// Batched over the frontier.
	assert.Contains(t, expandQuery, "UNWIND $frontier AS f")

	// Degree is evaluated at query time, counted undirected.
	assert.Contains(t, expandQuery, "COUNT { (current)-[:RELATES]-() } AS degree")

	// Visited exclusion happens in-store.
	assert.Contains(t, expandQuery, "WHERE NOT neighbor.id IN $visited_ids")

	// Tag similarity regimes: filter off, floor, floored Jaccard.
	assert.Contains(t, expandQuery, "WHEN $query_tags_count = 0 THEN 1.0")
	assert.Contains(t, expandQuery, "WHEN size(eTags) = 0       THEN $tag_sim_floor")
	assert.Contains(t, expandQuery, "(size(eTags) + $query_tags_count - inter_count)")

	// The propagation rule with weight default and degree scaling.
	assert.Contains(t, expandQuery,
		"(activation * coalesce(r.weight, 0.01) / sqrt(toFloat(degree))) * tag_sim")

	// Strict threshold prune.
	assert.Contains(t, expandQuery, "WHERE transfer_energy > $min_threshold")

	// The consumer takes per-parent top-K without re-sorting.
	assert.True(t, strings.HasSuffix(strings.TrimSpace(expandQuery),
		"ORDER BY parent_id, transfer_energy DESC"))
}

func TestExpandQuery_ReadOnly(t *testing.T) {
	for _, clause := range []string{"CREATE", "MERGE", "DELETE", "SET ", "REMOVE"} {
		assert.NotContains(t, expandQuery, clause)
		assert.NotContains(t, seedQuery, clause)
	}
}
