// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package export

import "github.com/AleutianAI/memorygraph/services/retrieval"

// VizNode is one node entry of the visualization graph. Field order is
// the rendered JSON order: identity first, label-specific fields, common
// short fields, then text last.
type VizNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	IsSeed bool   `json:"is_seed"`

	LabelFields

	ConvID any `json:"conv_id,omitempty"`
	Status any `json:"status,omitempty"`
	Tags   any `json:"tags,omitempty"`

	RetrievalActivation *float64 `json:"retrieval_activation,omitempty"`

	UpdateTime    any `json:"update_time,omitempty"`
	IngestionTime any `json:"ingestion_time,omitempty"`
	CreatedTime   any `json:"created_time,omitempty"`

	Text string `json:"text,omitempty"`
}

// VizEdge is one edge entry of the visualization graph, oriented as
// traversed.
type VizEdge struct {
	Source         string   `json:"source"`
	Target         string   `json:"target"`
	TransferEnergy float64  `json:"transfer_energy"`
	EdgeID         any      `json:"edge_id,omitempty"`
	Weight         *float64 `json:"weight,omitempty"`
	Tags           any      `json:"tags,omitempty"`
	CreatedTime    any      `json:"created_time,omitempty"`
	Text           string   `json:"text,omitempty"`
}

// VisualizationGraph is the nodes/edges bundle a force-directed renderer
// consumes.
type VisualizationGraph struct {
	Nodes []VizNode `json:"nodes"`
	Edges []VizEdge `json:"edges"`
}

// ToVisualization formats a retrieval result for graph visualization.
//
// # Description
//
//	Emits one node entry per unique node id appearing as the seed or in
//	any step, and one edge entry per unique (source, target) pair. The
//	first occurrence's attributes win; a node's retrieval_activation is
//	its incoming transfer energy (the seed carries its search score).
//
// # Thread Safety
//
// Pure function; the input is not mutated.
func ToVisualization(result *retrieval.RetrievalResult) VisualizationGraph {
	order, nodes, activation := collectNodes(result)
	seed := seedID(result)

	graph := VisualizationGraph{
		Nodes: make([]VizNode, 0, len(order)),
		Edges: []VizEdge{},
	}

	for _, id := range order {
		node := nodes[id]
		entry := VizNode{
			ID:          id,
			Label:       node.Label(),
			IsSeed:      id == seed,
			LabelFields: buildLabelFields(node.Properties),
			ConvID:      node.Properties["conv_id"],
			Status:      node.Properties["status"],
			Tags:        node.Properties["tags"],

			UpdateTime:    node.Properties["update_time"],
			IngestionTime: node.Properties["ingestion_time"],
			CreatedTime:   node.Properties["created_time"],
		}
		if a, ok := activation[id]; ok {
			entry.RetrievalActivation = round3Ptr(a)
		}
		if text := propString(node.Properties, "text"); text != "" {
			entry.Text = decodeEscapes(text)
		}
		graph.Nodes = append(graph.Nodes, entry)
	}

	type edgeKey struct{ source, target string }
	seen := make(map[edgeKey]int)

	for _, path := range result.Paths {
		for _, step := range path.Steps {
			key := edgeKey{step.Edge.SourceID, step.Edge.TargetID}
			if idx, ok := seen[key]; ok {
				// Shared prefix steps carry the same energy; keep the max
				// for robustness, first occurrence wins everything else.
				if e := round3(step.TransferEnergy); e > graph.Edges[idx].TransferEnergy {
					graph.Edges[idx].TransferEnergy = e
				}
				continue
			}

			entry := VizEdge{
				Source:         step.Edge.SourceID,
				Target:         step.Edge.TargetID,
				TransferEnergy: round3(step.TransferEnergy),
				EdgeID:         step.Edge.Properties["id"],
				Tags:           step.Edge.Properties["tags"],
				CreatedTime:    step.Edge.Properties["created_time"],
			}
			if step.Edge.Weight != nil {
				w := round2(*step.Edge.Weight)
				entry.Weight = &w
			}
			if text := propString(step.Edge.Properties, "text"); text != "" {
				entry.Text = decodeEscapes(text)
			}

			seen[key] = len(graph.Edges)
			graph.Edges = append(graph.Edges, entry)
		}
	}

	return graph
}
