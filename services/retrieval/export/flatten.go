// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package export renders RetrievalResults for their three consumers: a
// force-directed graph renderer, an LLM prompt builder, and a debugging
// reviewer reconstructing the exploration as graph queries.
//
// All formatters are pure: they never re-query the store, never mutate
// their input, and are safe for concurrent use. Nodes shared between
// paths are deduplicated by id.
package export

import (
	"math"

	"github.com/AleutianAI/memorygraph/services/retrieval"
)

// LabelFields are the label-specific node properties surfaced to both the
// visualization and LLM outputs. They render before the common fields and
// well before text, keeping short fields first. Struct order is the JSON
// field order.
type LabelFields struct {
	// AgentAction / AgentAnswer
	ParameterField any `json:"parameter_field,omitempty"`
	AnalysisTypes  any `json:"analysis_types,omitempty"`
	Metrics        any `json:"metrics,omitempty"`

	// DataSource / Event
	DocPointer    any `json:"doc_pointer,omitempty"`
	SourceType    any `json:"source_type,omitempty"`
	RelevantParts any `json:"relevant_parts,omitempty"`
	StartDate     any `json:"start_date,omitempty"`
	EndDate       any `json:"end_date,omitempty"`

	// UserRequest
	UserRole any `json:"user_role,omitempty"`
	UserID   any `json:"user_id,omitempty"`

	// UserPreference
	PreferenceType any `json:"preference_type,omitempty"`
}

func buildLabelFields(props map[string]any) LabelFields {
	return LabelFields{
		ParameterField: props["parameter_field"],
		AnalysisTypes:  props["analysis_types"],
		Metrics:        props["metrics"],
		DocPointer:     props["doc_pointer"],
		SourceType:     props["source_type"],
		RelevantParts:  props["relevant_parts"],
		StartDate:      props["start_date"],
		EndDate:        props["end_date"],
		UserRole:       props["user_role"],
		UserID:         props["user_id"],
		PreferenceType: props["preference_type"],
	}
}

// collectNodes walks seed and paths once, deduplicating nodes by id (first
// occurrence wins) and tracking each non-seed node's incoming activation.
// Order of first appearance is preserved.
func collectNodes(result *retrieval.RetrievalResult) (order []string, nodes map[string]retrieval.GraphNode, activation map[string]float64) {
	nodes = make(map[string]retrieval.GraphNode)
	activation = make(map[string]float64)

	add := func(n retrieval.GraphNode) {
		if _, seen := nodes[n.ID]; !seen {
			nodes[n.ID] = n
			order = append(order, n.ID)
		}
	}

	if result.SeedNode != nil {
		add(*result.SeedNode)
		activation[result.SeedNode.ID] = result.Seed.Score
	}

	for _, path := range result.Paths {
		for _, step := range path.Steps {
			add(step.FromNode)
			add(step.ToNode)
			if step.TransferEnergy > activation[step.ToNode.ID] {
				activation[step.ToNode.ID] = step.TransferEnergy
			}
		}
	}
	return order, nodes, activation
}

// seedID returns the id the seed marker compares against: the fetched
// seed node when present, the raw input id otherwise.
func seedID(result *retrieval.RetrievalResult) string {
	if result.SeedNode != nil {
		return result.SeedNode.ID
	}
	return result.Seed.NodeID
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func round3Ptr(v float64) *float64 {
	r := round3(v)
	return &r
}
