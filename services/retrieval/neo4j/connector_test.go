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
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/memorygraph/services/retrieval"
)

func expansionRecord(parentID string, neighborID any, energy any) *neo4j.Record {
	return &neo4j.Record{
		Keys: []string{"parent_id", "neighbor_data", "neighbor_labels", "neighbor_id", "edge_data", "transfer_energy"},
		Values: []any{
			parentID,
			map[string]any{"id": neighborID, "text": "pilot window"},
			[]any{"Event"},
			neighborID,
			map[string]any{"id": "E1", "weight": 0.8, "tags": []any{"t", "u"}},
			energy,
		},
	}
}

func TestRecordToCandidate(t *testing.T) {
	cand, err := recordToCandidate(expansionRecord("S", "A", 0.12))
	require.NoError(t, err)

	assert.Equal(t, "S", cand.ParentID)
	assert.Equal(t, "A", cand.NeighborNode.ID)
	assert.Equal(t, []string{"Event"}, cand.NeighborNode.Labels)
	assert.Equal(t, "pilot window", cand.NeighborNode.Properties["text"])
	assert.InDelta(t, 0.12, cand.TransferEnergy, 1e-12)

	assert.Equal(t, "S", cand.Edge.SourceID)
	assert.Equal(t, "A", cand.Edge.TargetID)
	assert.Equal(t, "RELATES", cand.Edge.Type)
	require.NotNil(t, cand.Edge.Weight)
	assert.InDelta(t, 0.8, *cand.Edge.Weight, 1e-12)
	assert.Equal(t, []string{"t", "u"}, cand.Edge.Tags)
}

func TestRecordToCandidate_MissingNeighborIDIsFatal(t *testing.T) {
	_, err := recordToCandidate(expansionRecord("S", nil, 0.12))
	require.Error(t, err)
	assert.ErrorIs(t, err, retrieval.ErrMalformedRecord)
	assert.False(t, retrieval.IsTransient(err))
}

func TestRecordToCandidate_MissingParentIDIsFatal(t *testing.T) {
	rec := expansionRecord("", "A", 0.12)
	_, err := recordToCandidate(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, retrieval.ErrMalformedRecord)
}

func TestRecordToCandidate_MissingEnergyIsFatal(t *testing.T) {
	_, err := recordToCandidate(expansionRecord("S", "A", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, retrieval.ErrMalformedRecord)
}

func TestRecordToCandidate_IntegerEnergy(t *testing.T) {
	// Cypher arithmetic can hand back integers for whole values.
	cand, err := recordToCandidate(expansionRecord("S", "A", int64(1)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cand.TransferEnergy)
}

type fakeNetError struct{ msg string }

func (e *fakeNetError) Error() string   { return e.msg }
func (e *fakeNetError) Timeout() bool   { return true }
func (e *fakeNetError) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	// Network timeouts are retryable.
	err := classifyError("expand_frontier", &fakeNetError{msg: "i/o timeout"})
	assert.True(t, retrieval.IsTransient(err))

	// Deadline exceeded is retryable.
	err = classifyError("fetch_seed", context.DeadlineExceeded)
	assert.True(t, retrieval.IsTransient(err))

	// Arbitrary store errors are not.
	err = classifyError("fetch_seed", errors.New("syntax error"))
	assert.False(t, retrieval.IsTransient(err))
	assert.True(t, strings.Contains(err.Error(), "fetch_seed"))
}

func TestAsHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, asStringList([]any{"a", 1, "b"}))
	assert.Empty(t, asStringList(nil))
	assert.Empty(t, asStringList("not-a-list"))

	assert.NotNil(t, asPropertyMap(nil))
	assert.Equal(t, map[string]any{"k": 1}, asPropertyMap(map[string]any{"k": 1}))

	f, ok := asFloat(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)
	_, ok = asFloat("nope")
	assert.False(t, ok)

	assert.Nil(t, asFloatPtr(nil))
	require.NotNil(t, asFloatPtr(0.5))
	assert.Equal(t, 0.5, *asFloatPtr(0.5))
}

func TestNewStore_Rejections(t *testing.T) {
	_, err := NewStore(nil, retrieval.DefaultConfig())
	require.Error(t, err)
}
