// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"
)

// memEdge is one undirected RELATES relationship of the in-memory graph.
type memEdge struct {
	a, b   string
	weight *float64
	tags   []string
	props  map[string]any
}

// memGraph is a tiny in-memory property graph implementing the same
// expansion semantics as the production Cypher, so orchestrator tests
// run without a live store.
type memGraph struct {
	nodes map[string]GraphNode
	edges []memEdge
}

func newMemGraph() *memGraph {
	return &memGraph{nodes: make(map[string]GraphNode)}
}

func (g *memGraph) addNode(id, label string, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	props["id"] = id
	g.nodes[id] = GraphNode{ID: id, Labels: []string{label}, Properties: props}
}

func (g *memGraph) addEdge(a, b string, weight float64, tags []string, props map[string]any) {
	w := weight
	if props == nil {
		props = map[string]any{}
	}
	props["weight"] = weight
	if tags != nil {
		props["tags"] = tags
	}
	g.edges = append(g.edges, memEdge{a: a, b: b, weight: &w, tags: tags, props: props})
}

func (g *memGraph) degree(id string) int {
	d := 0
	for _, e := range g.edges {
		if e.a == id || e.b == id {
			d++
		}
	}
	return d
}

// memFactory implements SessionFactory with failure injection knobs.
type memFactory struct {
	graph *memGraph
	cfg   Config

	mu             sync.Mutex
	fetchCalls     int
	expandCalls    int
	expandFailures int              // transient failures to inject before success
	fatalSeeds     map[string]error // FetchSeed errors per node id
	callDelay      time.Duration    // per store call, context-aware
}

func newMemFactory(graph *memGraph, cfg Config) *memFactory {
	return &memFactory{graph: graph, cfg: cfg}
}

func (f *memFactory) OpenSession(ctx context.Context) (Session, error) {
	return &memSession{f: f}, nil
}

func (f *memFactory) counts() (fetch, expand int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, f.expandCalls
}

type memSession struct {
	f      *memFactory
	closed bool
}

func (s *memSession) FetchSeed(ctx context.Context, nodeID string) (SeedFetchResult, error) {
	if err := s.f.sleep(ctx); err != nil {
		return SeedFetchResult{}, err
	}

	s.f.mu.Lock()
	s.f.fetchCalls++
	fatal := s.f.fatalSeeds[nodeID]
	s.f.mu.Unlock()

	if fatal != nil {
		return SeedFetchResult{}, fatal
	}

	node, ok := s.f.graph.nodes[nodeID]
	if !ok {
		return SeedFetchResult{Labels: []string{}, Found: false}, nil
	}
	return SeedFetchResult{Node: &node, Labels: node.Labels, Found: true}, nil
}

func (s *memSession) ExpandFrontier(ctx context.Context, frontier []FrontierInput, visitedIDs []string, queryTags []string) ([]ExpansionCandidate, error) {
	if err := s.f.sleep(ctx); err != nil {
		return nil, err
	}

	s.f.mu.Lock()
	s.f.expandCalls++
	if s.f.expandFailures > 0 {
		s.f.expandFailures--
		s.f.mu.Unlock()
		return nil, &TransientError{Op: "expand_frontier", Err: errors.New("connection reset")}
	}
	s.f.mu.Unlock()

	visited := make(map[string]struct{}, len(visitedIDs))
	for _, id := range visitedIDs {
		visited[id] = struct{}{}
	}

	var out []ExpansionCandidate
	for _, fr := range frontier {
		degree := s.f.graph.degree(fr.NodeID)
		var group []ExpansionCandidate

		for _, e := range s.f.graph.edges {
			var neighborID string
			switch fr.NodeID {
			case e.a:
				neighborID = e.b
			case e.b:
				neighborID = e.a
			default:
				continue
			}
			if _, seen := visited[neighborID]; seen {
				continue
			}

			w := 0.01
			if e.weight != nil {
				w = *e.weight
			}
			sim := TagSimilarity(e.tags, queryTags, s.f.cfg.TagSimFloor)
			energy := (fr.Activation * w / math.Sqrt(float64(degree))) * sim
			if energy <= s.f.cfg.MinActivation {
				continue
			}

			neighbor := s.f.graph.nodes[neighborID]
			group = append(group, ExpansionCandidate{
				ParentID:     fr.NodeID,
				NeighborNode: neighbor,
				Edge: GraphEdge{
					SourceID:   fr.NodeID,
					TargetID:   neighborID,
					Type:       "RELATES",
					Properties: e.props,
					Weight:     e.weight,
					Tags:       e.tags,
				},
				TransferEnergy: energy,
			})
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].TransferEnergy > group[j].TransferEnergy
		})
		out = append(out, group...)
	}
	return out, nil
}

func (s *memSession) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

func (f *memFactory) sleep(ctx context.Context) error {
	f.mu.Lock()
	delay := f.callDelay
	f.mu.Unlock()
	if delay == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
