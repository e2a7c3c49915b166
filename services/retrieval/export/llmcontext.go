// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package export

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/memorygraph/services/retrieval"
)

// NodeAttributes mirrors VizNode for the LLM bundle, without the seed flag.
type NodeAttributes struct {
	ID    string `json:"id"`
	Label string `json:"label"`

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

// EdgeAttributes is one edge of the LLM bundle, keyed by the edge's own
// id property. Edge text is never truncated.
type EdgeAttributes struct {
	EdgeID         any      `json:"edge_id"`
	SourceNodeID   string   `json:"source_node_id"`
	TargetNodeID   string   `json:"target_node_id"`
	TransferEnergy float64  `json:"transfer_energy"`
	Weight         *float64 `json:"weight,omitempty"`
	Tags           any      `json:"tags,omitempty"`
	CreatedTime    any      `json:"created_time,omitempty"`
	Text           string   `json:"text,omitempty"`
}

// Attributes is the node/edge attribute bundle of the LLM context.
type Attributes struct {
	Nodes []NodeAttributes `json:"nodes"`
	Edges []EdgeAttributes `json:"edges"`
}

// LLMContext is the retrieval evidence rendered for prompt assembly:
// human-readable path strings plus the attribute bundle behind them.
type LLMContext struct {
	Paths                 []string   `json:"paths"`
	NodeAndEdgeAttributes Attributes `json:"node_and_edge_attributes"`
}

// ToLLMContext formats a retrieval result for LLM consumption.
//
// # Description
//
//	Each path renders as a single line: a [SEED] marker on the seed,
//	nodes as (Label Id: "first 12 words..."), edges as
//	[EdgeId "full edge text" weight=X.XX activation_score=Y.YYY].
//	Node text is clipped to 12 whitespace-separated words with a
//	trailing ellipsis; edge text is never truncated.
//
// # Thread Safety
//
// Pure function; the input is not mutated.
func ToLLMContext(result *retrieval.RetrievalResult) LLMContext {
	seed := seedID(result)

	paths := make([]string, 0, len(result.Paths))
	for idx, path := range result.Paths {
		var parts []string
		for _, step := range path.Steps {
			if len(parts) == 0 {
				parts = append(parts, formatNodeForLLM(step.FromNode, step.FromNode.ID == seed))
			}
			parts = append(parts, formatEdgeForLLM(step))
			parts = append(parts, formatNodeForLLM(step.ToNode, false))
		}
		if len(parts) > 0 {
			paths = append(paths, fmt.Sprintf("Path %d: %s", idx+1, strings.Join(parts, " -> ")))
		}
	}

	return LLMContext{
		Paths: paths,
		NodeAndEdgeAttributes: Attributes{
			Nodes: buildNodeAttributes(result),
			Edges: buildEdgeAttributes(result),
		},
	}
}

// formatNodeForLLM renders a node for path display:
// [SEED] (Label Id: "first 12 words...").
func formatNodeForLLM(node retrieval.GraphNode, isSeed bool) string {
	marker := ""
	if isSeed {
		marker = "[SEED] "
	}

	text := pickDisplayText(node.Properties)
	if text == "" {
		return fmt.Sprintf("%s(%s %s)", marker, node.Label(), node.ID)
	}

	text = decodeEscapes(text)
	short := firstNWords(text, nodeTextWords)
	ellipsis := ""
	if len(strings.Fields(text)) > nodeTextWords {
		ellipsis = "..."
	}
	return fmt.Sprintf("%s(%s %s: %q)", marker, node.Label(), node.ID, short+ellipsis)
}

// formatEdgeForLLM renders an edge for path display:
// [EdgeId "full text" weight=X.XX activation_score=Y.YYY].
func formatEdgeForLLM(step retrieval.GraphStep) string {
	var parts []string

	if id := propString(step.Edge.Properties, "id"); id != "" {
		parts = append(parts, id)
	}
	if text := propString(step.Edge.Properties, "text"); text != "" {
		parts = append(parts, fmt.Sprintf("%q", decodeEscapes(text)))
	}
	if step.Edge.Weight != nil {
		parts = append(parts, fmt.Sprintf("weight=%.2f", *step.Edge.Weight))
	}
	parts = append(parts, fmt.Sprintf("activation_score=%.3f", step.TransferEnergy))

	return "[" + strings.Join(parts, " ") + "]"
}

func buildNodeAttributes(result *retrieval.RetrievalResult) []NodeAttributes {
	order, nodes, activation := collectNodes(result)

	entries := make([]NodeAttributes, 0, len(order))
	for _, id := range order {
		node := nodes[id]
		entry := NodeAttributes{
			ID:          id,
			Label:       node.Label(),
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
		entries = append(entries, entry)
	}
	return entries
}

func buildEdgeAttributes(result *retrieval.RetrievalResult) []EdgeAttributes {
	var entries []EdgeAttributes
	index := make(map[string]int)

	for _, path := range result.Paths {
		for _, step := range path.Steps {
			edgeID := propString(step.Edge.Properties, "id")
			if edgeID == "" {
				continue
			}

			if idx, ok := index[edgeID]; ok {
				if e := round3(step.TransferEnergy); e > entries[idx].TransferEnergy {
					entries[idx].TransferEnergy = e
				}
				continue
			}

			entry := EdgeAttributes{
				EdgeID:         edgeID,
				SourceNodeID:   step.Edge.SourceID,
				TargetNodeID:   step.Edge.TargetID,
				TransferEnergy: round3(step.TransferEnergy),
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

			index[edgeID] = len(entries)
			entries = append(entries, entry)
		}
	}

	if entries == nil {
		entries = []EdgeAttributes{}
	}
	return entries
}
