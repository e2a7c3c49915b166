// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

// TagSimilarity mixes an edge's tag set with the query's tag set into a
// score in [floor, 1.0].
//
// # Description
//
//	Returns exactly 1.0 when queryTags is empty (tag filter off), exactly
//	floor when the edge carries no tags, and otherwise a floored Jaccard:
//	floor + (1 - floor) * |E ∩ Q| / |E ∪ Q|, multiplicities ignored.
//
//	The expansion query computes the same value in-store so neighborhoods
//	never ship over the wire; this function is the reference the store-side
//	arithmetic must agree with to floating-point tolerance.
//
// # Thread Safety
//
// Pure function, safe for concurrent use.
func TagSimilarity(edgeTags, queryTags []string, floor float64) float64 {
	if len(queryTags) == 0 {
		return 1.0
	}

	edgeSet := toSet(edgeTags)
	if len(edgeSet) == 0 {
		return floor
	}
	querySet := toSet(queryTags)

	intersection := 0
	for tag := range edgeSet {
		if _, ok := querySet[tag]; ok {
			intersection++
		}
	}
	union := len(edgeSet) + len(querySet) - intersection

	jaccard := float64(intersection) / float64(union)
	return floor + (1.0-floor)*jaccard
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
