// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

// traversalState drives the per-seed BFS state machine. Purely in-memory;
// it never talks to the graph store and is total over well-formed input.
// Owned by a single exploration goroutine, never shared.
type traversalState struct {
	maxBranches    int
	seedNode       GraphNode
	frontier       []FrontierNode
	completedPaths []GraphPath
}

// frontierUpdate is the outcome of one selectNextFrontier pass.
type frontierUpdate struct {
	nextFrontier   []FrontierNode
	completedPaths []GraphPath
	newlyVisited   []string
}

func newTraversalState(seedNode GraphNode, seedActivation float64, maxBranches int) *traversalState {
	return &traversalState{
		maxBranches: maxBranches,
		seedNode:    seedNode,
		frontier: []FrontierNode{{
			NodeID:     seedNode.ID,
			Activation: seedActivation,
			Path:       GraphPath{},
		}},
	}
}

// buildFrontierInputs projects the current frontier for the expansion query.
func (s *traversalState) buildFrontierInputs() []FrontierInput {
	inputs := make([]FrontierInput, len(s.frontier))
	for i, f := range s.frontier {
		inputs[i] = FrontierInput{NodeID: f.NodeID, Activation: f.Activation}
	}
	return inputs
}

// claim records which parent currently holds a neighbor. parentIdx is the
// parent's position in the frontier, candIdx the candidate's position in
// that parent's top-K list.
type claim struct {
	parentIdx int
	candIdx   int
	energy    float64
}

// selectNextFrontier advances the BFS by one depth level.
//
// For each frontier node in order it takes the first maxBranches candidates
// of its group (the connector guarantees per-parent descending energy), then
// arbitrates cross-parent collisions: when two parents' top-K lists contain
// the same neighbor id, the higher transfer energy claims it and the other
// drops that entry. Ties go to the parent earlier in frontier order; that
// tie-break is deterministic but not part of the contract.
//
// A frontier node that had at least one step in its path and ends up with
// zero surviving claims has its path completed. A zero-step frontier node
// (the seed with no surviving neighbor) completes nothing.
//
// The returned newlyVisited ids must be merged into the visited set before
// the next expansion; claiming at the same depth a neighbor was selected is
// what keeps node ids unique within every path.
func (s *traversalState) selectNextFrontier(candidatesByParent map[string][]ExpansionCandidate) frontierUpdate {
	// Phase 1+2: gather per-parent top-K and arbitrate collisions.
	topK := make([][]ExpansionCandidate, len(s.frontier))
	claims := make(map[string]claim)

	for i, f := range s.frontier {
		candidates := candidatesByParent[f.NodeID]
		if len(candidates) > s.maxBranches {
			candidates = candidates[:s.maxBranches]
		}
		topK[i] = candidates

		for j, cand := range candidates {
			neighborID := cand.NeighborNode.ID
			prev, taken := claims[neighborID]
			if !taken || cand.TransferEnergy > prev.energy {
				claims[neighborID] = claim{parentIdx: i, candIdx: j, energy: cand.TransferEnergy}
			}
		}
	}

	// Phase 3: materialize surviving claims in frontier order.
	var update frontierUpdate
	for i, f := range s.frontier {
		survived := 0
		for j, cand := range topK[i] {
			winner := claims[cand.NeighborNode.ID]
			if winner.parentIdx != i || winner.candIdx != j {
				continue
			}
			survived++
			update.newlyVisited = append(update.newlyVisited, cand.NeighborNode.ID)

			step := GraphStep{
				FromNode:       s.resolveFromNode(f),
				Edge:           cand.Edge,
				ToNode:         cand.NeighborNode,
				TransferEnergy: cand.TransferEnergy,
			}
			update.nextFrontier = append(update.nextFrontier, FrontierNode{
				NodeID:     cand.NeighborNode.ID,
				Activation: cand.TransferEnergy,
				Path:       f.Path.WithStep(step),
			})
		}

		if survived == 0 && len(f.Path.Steps) > 0 {
			update.completedPaths = append(update.completedPaths, f.Path)
		}
	}

	s.frontier = update.nextFrontier
	s.completedPaths = append(s.completedPaths, update.completedPaths...)
	return update
}

// finalizeRemaining completes the path of every frontier node still live at
// loop exit (depth limit reached). Zero-step paths are skipped.
func (s *traversalState) finalizeRemaining() []GraphPath {
	var finalized []GraphPath
	for _, f := range s.frontier {
		if len(f.Path.Steps) > 0 {
			finalized = append(finalized, f.Path)
		}
	}
	s.completedPaths = append(s.completedPaths, finalized...)
	return finalized
}

// resolveFromNode returns the node a new step departs from: the tip of the
// branch's path, or the seed for depth-0 branches.
func (s *traversalState) resolveFromNode(f FrontierNode) GraphNode {
	if n := len(f.Path.Steps); n > 0 {
		return f.Path.Steps[n-1].ToNode
	}
	return s.seedNode
}
