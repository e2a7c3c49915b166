// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package telemetry provides OpenTelemetry tracing and metric instruments
// for the retrieval engine. Exporter wiring (Prometheus, OTLP, stdout)
// belongs to the host process; this package only names the instruments and
// spans so retrieval telemetry aggregates consistently across deployments.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined metrics for the retrieval engine.
//
// Description:
//
//	Provides standard counters and histograms for explorations, graph-store
//	calls, and retry behavior. All metrics use the "memgraph_" prefix for
//	consistent naming.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- Exploration Metrics ---

	// ExplorationsTotal counts completed explorations by terminated reason.
	ExplorationsTotal metric.Int64Counter

	// ExplorationDuration records per-seed exploration duration in seconds.
	ExplorationDuration metric.Float64Histogram

	// PathsReturned records the number of completed paths per exploration.
	PathsReturned metric.Int64Histogram

	// DepthReached records max_depth_reached per exploration.
	DepthReached metric.Int64Histogram

	// --- Graph-Store Metrics ---

	// StoreCallsTotal counts graph-store calls by operation and status.
	StoreCallsTotal metric.Int64Counter

	// StoreCallDuration records graph-store call duration in seconds.
	StoreCallDuration metric.Float64Histogram

	// StoreRetriesTotal counts retry attempts after transient failures.
	StoreRetriesTotal metric.Int64Counter

	// --- Error Metrics ---

	// ErrorsTotal counts errors by type and component.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all instruments registered.
//
// Description:
//
//	Registers all pre-defined metrics with the provided meter.
//	Returns an error if any metric registration fails.
//
// Inputs:
//
//	meter - The OTel meter to use for metric registration.
//
// Outputs:
//
//	*Metrics - The metrics instance with all instruments initialized.
//	error - Non-nil if metric registration fails.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.ExplorationsTotal, err = meter.Int64Counter(
		"memgraph_explorations_total",
		metric.WithDescription("Completed explorations by terminated reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_explorations_total: %w", err)
	}

	m.ExplorationDuration, err = meter.Float64Histogram(
		"memgraph_exploration_duration_seconds",
		metric.WithDescription("Per-seed exploration duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_exploration_duration_seconds: %w", err)
	}

	m.PathsReturned, err = meter.Int64Histogram(
		"memgraph_paths_returned",
		metric.WithDescription("Completed paths per exploration"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_paths_returned: %w", err)
	}

	m.DepthReached, err = meter.Int64Histogram(
		"memgraph_depth_reached",
		metric.WithDescription("Max depth reached per exploration"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_depth_reached: %w", err)
	}

	m.StoreCallsTotal, err = meter.Int64Counter(
		"memgraph_store_calls_total",
		metric.WithDescription("Graph-store calls by operation and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_store_calls_total: %w", err)
	}

	m.StoreCallDuration, err = meter.Float64Histogram(
		"memgraph_store_call_duration_seconds",
		metric.WithDescription("Graph-store call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_store_call_duration_seconds: %w", err)
	}

	m.StoreRetriesTotal, err = meter.Int64Counter(
		"memgraph_store_retries_total",
		metric.WithDescription("Retry attempts after transient store failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_store_retries_total: %w", err)
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"memgraph_errors_total",
		metric.WithDescription("Errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("create memgraph_errors_total: %w", err)
	}

	return m, nil
}
