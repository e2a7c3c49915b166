// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package neo4j

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/AleutianAI/memorygraph/services/retrieval"
)

// session implements retrieval.Session over one driver session. Not safe
// for concurrent use; each exploration goroutine owns exactly one.
//
// Every query runs through ExecuteRead, the driver's managed read
// transaction: a consistent snapshot with the driver's own retry of
// cluster-internal transient errors. Failures that escape it and are
// still retryable surface as *retrieval.TransientError so the
// orchestrator's backoff loop gets a second chance.
type session struct {
	inner         neo4j.SessionWithContext
	tagSimFloor   float64
	minActivation float64
}

// FetchSeed implements retrieval.Session.
func (s *session) FetchSeed(ctx context.Context, nodeID string) (retrieval.SeedFetchResult, error) {
	records, err := s.readRecords(ctx, "fetch_seed", seedQuery, map[string]any{
		"node_id": nodeID,
	})
	if err != nil {
		return retrieval.SeedFetchResult{}, err
	}
	if len(records) == 0 {
		return retrieval.SeedFetchResult{Labels: []string{}, Found: false}, nil
	}

	rec := records[0]
	data := asPropertyMap(recordValue(rec, "data"))
	labels := asStringList(recordValue(rec, "labels"))

	id, ok := data["id"].(string)
	if !ok || id == "" {
		// The seed was matched on its id property; tolerate a store
		// that stores it under a non-string type by echoing the input.
		id = nodeID
	}

	node := &retrieval.GraphNode{ID: id, Labels: labels, Properties: data}
	return retrieval.SeedFetchResult{Node: node, Labels: labels, Found: true}, nil
}

// ExpandFrontier implements retrieval.Session.
func (s *session) ExpandFrontier(ctx context.Context, frontier []retrieval.FrontierInput, visitedIDs []string, queryTags []string) ([]retrieval.ExpansionCandidate, error) {
	frontierParam := make([]map[string]any, len(frontier))
	for i, f := range frontier {
		frontierParam[i] = map[string]any{
			"node_id":    f.NodeID,
			"activation": f.Activation,
		}
	}
	if queryTags == nil {
		queryTags = []string{}
	}
	if visitedIDs == nil {
		visitedIDs = []string{}
	}

	records, err := s.readRecords(ctx, "expand_frontier", expandQuery, map[string]any{
		"frontier":         frontierParam,
		"visited_ids":      visitedIDs,
		"query_tags":       queryTags,
		"query_tags_count": len(queryTags),
		"tag_sim_floor":    s.tagSimFloor,
		"min_threshold":    s.minActivation,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]retrieval.ExpansionCandidate, 0, len(records))
	for _, rec := range records {
		cand, err := recordToCandidate(rec)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// Close implements retrieval.Session.
func (s *session) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

// readRecords runs one query in a managed read transaction and collects
// all records, classifying the error on failure.
func (s *session) readRecords(ctx context.Context, op, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := s.inner.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, classifyError(op, err)
	}
	return result.([]*neo4j.Record), nil
}

// classifyError separates retryable store failures from fatal ones.
// Retryable driver errors, network timeouts and connection drops become
// *retrieval.TransientError; everything else propagates as-is.
func classifyError(op string, err error) error {
	var netErr net.Error
	switch {
	case neo4j.IsRetryable(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return &retrieval.TransientError{Op: op, Err: err}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// =============================================================================
// Record Conversion
// =============================================================================

// recordToCandidate parses one expansion row into an ExpansionCandidate.
func recordToCandidate(rec *neo4j.Record) (retrieval.ExpansionCandidate, error) {
	parentID, ok := recordValue(rec, "parent_id").(string)
	if !ok || parentID == "" {
		return retrieval.ExpansionCandidate{},
			fmt.Errorf("%w: expansion row without parent_id", retrieval.ErrMalformedRecord)
	}
	neighborID, ok := recordValue(rec, "neighbor_id").(string)
	if !ok || neighborID == "" {
		return retrieval.ExpansionCandidate{},
			fmt.Errorf("%w: expansion row without neighbor_id (parent %s)", retrieval.ErrMalformedRecord, parentID)
	}

	energy, ok := asFloat(recordValue(rec, "transfer_energy"))
	if !ok {
		return retrieval.ExpansionCandidate{},
			fmt.Errorf("%w: expansion row without transfer_energy (parent %s)", retrieval.ErrMalformedRecord, parentID)
	}

	neighbor := retrieval.GraphNode{
		ID:         neighborID,
		Labels:     asStringList(recordValue(rec, "neighbor_labels")),
		Properties: asPropertyMap(recordValue(rec, "neighbor_data")),
	}

	edgeProps := asPropertyMap(recordValue(rec, "edge_data"))
	edge := retrieval.GraphEdge{
		SourceID:   parentID,
		TargetID:   neighborID,
		Type:       "RELATES",
		Properties: edgeProps,
		Weight:     asFloatPtr(edgeProps["weight"]),
		Tags:       asStringList(edgeProps["tags"]),
	}

	return retrieval.ExpansionCandidate{
		ParentID:       parentID,
		NeighborNode:   neighbor,
		Edge:           edge,
		TransferEnergy: energy,
	}, nil
}

// recordValue fetches a named value from a record, nil when absent.
func recordValue(rec *neo4j.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

// asPropertyMap converts a properties() result to a map, never nil.
func asPropertyMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asStringList converts a Cypher list to []string, skipping non-strings.
func asStringList(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// asFloat converts the numeric types the driver hands back to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// asFloatPtr is asFloat for optional properties, nil when absent.
func asFloatPtr(v any) *float64 {
	if f, ok := asFloat(v); ok {
		return &f
	}
	return nil
}
