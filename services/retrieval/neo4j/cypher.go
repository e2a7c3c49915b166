// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package neo4j

// seedQuery matches a node by its stored id property, any label.
const seedQuery = `
MATCH (n {id: $node_id})
RETURN properties(n) AS data, labels(n) AS labels
`

// expandQuery is the batched frontier expansion. Degree, tag similarity
// and transfer energy are all computed in-store so neighborhoods never
// ship over the wire; the result set is sorted parent_id, transfer_energy
// DESC, which the traversal state relies on to take top-K without
// re-sorting.
//
// Degree is evaluated at query time on the stored graph, counted
// undirected. Tag similarity is the floored Jaccard of retrieval.TagSimilarity:
// 1.0 when the query carries no tags, the floor when the edge carries
// none, otherwise floor + (1-floor) * |E ∩ Q| / |E ∪ Q|.
const expandQuery = `
UNWIND $frontier AS f
MATCH (current {id: f.node_id})
WITH current, f.node_id AS parent_id, f.activation AS activation,
     COUNT { (current)-[:RELATES]-() } AS degree

MATCH (current)-[r:RELATES]-(neighbor)
WHERE NOT neighbor.id IN $visited_ids

WITH parent_id, r, neighbor, activation, degree,
     coalesce(r.tags, []) AS eTags
WITH parent_id, r, neighbor, activation, degree, eTags,
     size([t IN eTags WHERE t IN $query_tags]) AS inter_count
WITH parent_id, r, neighbor, activation, degree, eTags, inter_count,
     CASE
         WHEN $query_tags_count = 0 THEN 1.0
         WHEN size(eTags) = 0       THEN $tag_sim_floor
         ELSE $tag_sim_floor
              + (1.0 - $tag_sim_floor)
              * toFloat(inter_count)
              / (size(eTags) + $query_tags_count - inter_count)
     END AS tag_sim

WITH parent_id, r, neighbor,
     (activation * coalesce(r.weight, 0.01) / sqrt(toFloat(degree))) * tag_sim
         AS transfer_energy

WHERE transfer_energy > $min_threshold

RETURN parent_id,
       properties(neighbor)  AS neighbor_data,
       labels(neighbor)       AS neighbor_labels,
       neighbor.id            AS neighbor_id,
       properties(r)          AS edge_data,
       transfer_energy
ORDER BY parent_id, transfer_energy DESC
`
