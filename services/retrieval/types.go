// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

// =============================================================================
// Graph Entities
// =============================================================================

// GraphNode is a node of the memory graph: a stable id, its labels, and a
// free-form property bag. Known-interesting property keys include "text",
// "conv_id", "tags", and the label-specific fields the export package
// understands. Nodes are carried by value; paths that share a node each
// hold their own copy and dedup happens by id in the formatters.
type GraphNode struct {
	ID         string
	Labels     []string
	Properties map[string]any
}

// Label returns the node's primary label, or "Node" when unlabeled.
func (n GraphNode) Label() string {
	if len(n.Labels) > 0 {
		return n.Labels[0]
	}
	return "Node"
}

// GraphEdge is the directed representation of an underlying symmetric
// RELATES relationship, oriented by traversal direction.
type GraphEdge struct {
	SourceID   string
	TargetID   string
	Type       string
	Properties map[string]any

	// Weight is nil when the stored relationship has no weight property.
	// The expansion query substitutes 0.01 in that case.
	Weight *float64

	Tags []string
}

// SeedInput is the handoff from the upstream vector/lexical retriever.
// Score becomes the initial activation of the seed.
type SeedInput struct {
	NodeID string  `validate:"required"`
	Score  float64 `validate:"gt=0,lte=1"`
}

// GraphStep is one hop: FromNode reached ToNode over Edge, delivering
// TransferEnergy of activation.
type GraphStep struct {
	FromNode       GraphNode
	Edge           GraphEdge
	ToNode         GraphNode
	TransferEnergy float64
}

// GraphPath is an ordered, contiguous sequence of steps from a seed.
// Steps[0].FromNode is the seed.
type GraphPath struct {
	Steps []GraphStep
}

// WithStep returns a new path extended by one step. The receiver is not
// mutated; the steps slice is copied so sibling branches never alias.
func (p GraphPath) WithStep(step GraphStep) GraphPath {
	steps := make([]GraphStep, len(p.Steps), len(p.Steps)+1)
	copy(steps, p.Steps)
	return GraphPath{Steps: append(steps, step)}
}

// MaxTransferEnergy returns the largest step energy in the path,
// or 0 for an empty path.
func (p GraphPath) MaxTransferEnergy() float64 {
	var max float64
	for _, s := range p.Steps {
		if s.TransferEnergy > max {
			max = s.TransferEnergy
		}
	}
	return max
}

// MinTransferEnergy returns the smallest step energy in the path,
// or 0 for an empty path.
func (p GraphPath) MinTransferEnergy() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	min := p.Steps[0].TransferEnergy
	for _, s := range p.Steps[1:] {
		if s.TransferEnergy < min {
			min = s.TransferEnergy
		}
	}
	return min
}

// =============================================================================
// Traversal Bookkeeping
// =============================================================================

// FrontierNode is one live BFS branch: the node currently at the tip,
// the activation that reached it, and the path back to the seed.
type FrontierNode struct {
	NodeID     string
	Activation float64
	Path       GraphPath
}

// FrontierInput is the projection of a FrontierNode handed to the
// expansion query.
type FrontierInput struct {
	NodeID     string
	Activation float64
}

// ExpansionCandidate is one row of batched expansion output: a surviving
// neighbor of ParentID with the energy the hop would deliver.
type ExpansionCandidate struct {
	ParentID       string
	NeighborNode   GraphNode
	Edge           GraphEdge
	TransferEnergy float64
}

// SeedFetchResult is the outcome of looking up a seed node.
type SeedFetchResult struct {
	Node   *GraphNode
	Labels []string
	Found  bool
}

// =============================================================================
// Results
// =============================================================================

// TerminatedReason classifies why one seed's exploration ended.
type TerminatedReason string

const (
	// TerminatedSeedNotFound means the seed id matched no graph node.
	TerminatedSeedNotFound TerminatedReason = "seed_not_found"

	// TerminatedNoMorePaths means every branch died out before the
	// depth limit (or the seed had no surviving neighbor at all).
	TerminatedNoMorePaths TerminatedReason = "no_more_paths"

	// TerminatedMaxDepth means at least one path ran into the hop limit.
	TerminatedMaxDepth TerminatedReason = "max_depth"

	// TerminatedCancelled means the caller cancelled the exploration.
	TerminatedCancelled TerminatedReason = "cancelled"
)

// RetrievalResult is the output of one seed's exploration.
type RetrievalResult struct {
	Seed             SeedInput
	SeedNode         *GraphNode
	Paths            []GraphPath
	MaxDepthReached  int
	TerminatedReason TerminatedReason
}

// Outcome is one element of the Explore result stream: exactly one per
// non-cancelled seed. Err is non-nil when that seed's exploration failed,
// on a non-transient store error (not retried) or a transient one that
// outlasted MaxRetries; Result is nil in that case.
type Outcome struct {
	Seed   SeedInput
	Result *RetrievalResult
	Err    error
}
