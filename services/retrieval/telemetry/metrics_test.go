// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewMetrics_RegistersAllInstruments(t *testing.T) {
	m, err := NewMetrics(otel.Meter("memorygraph-test"))
	require.NoError(t, err)

	assert.NotNil(t, m.ExplorationsTotal)
	assert.NotNil(t, m.ExplorationDuration)
	assert.NotNil(t, m.PathsReturned)
	assert.NotNil(t, m.DepthReached)
	assert.NotNil(t, m.StoreCallsTotal)
	assert.NotNil(t, m.StoreCallDuration)
	assert.NotNil(t, m.StoreRetriesTotal)
	assert.NotNil(t, m.ErrorsTotal)

	// No-op provider instruments accept recordings without panicking.
	m.ExplorationsTotal.Add(context.Background(), 1)
	m.ExplorationDuration.Record(context.Background(), 0.1)
}

func TestStartSpan_ReturnsEndableSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "retrieval.test")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	RecordError(span, assert.AnError)
	RecordError(span, nil) // nil is a no-op
	span.End()
}
