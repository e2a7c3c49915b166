// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/memorygraph/pkg/logging"
	"github.com/AleutianAI/memorygraph/services/retrieval/telemetry"
)

// retryBaseDelay is the first backoff step after a transient store
// failure; the retry after failed attempt n (counting from 0) waits
// retryBaseDelay << n.
const retryBaseDelay = 50 * time.Millisecond

// Retriever runs concurrent multi-path activation-energy explorations.
//
// # Description
//
//	Receives a SessionFactory backed by a shared, long-lived graph-store
//	driver and explores the graph from a list of seed nodes: one goroutine
//	per seed, one session per goroutine, results streamed as each
//	exploration completes.
//
// # Thread Safety
//
// Retriever is safe for concurrent use; all per-exploration state is local
// to the exploration goroutine. Configuration is immutable after New.
type Retriever struct {
	factory SessionFactory
	config  Config
	logger  *logging.Logger
	metrics *telemetry.Metrics
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger. Defaults to logging.Default().
func WithLogger(l *logging.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

// WithMetrics enables metric recording. Defaults to no metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Retriever) { r.metrics = m }
}

// New creates a Retriever.
//
// # Inputs
//
//   - factory: Session source backed by the process-wide driver. Must not be nil.
//   - config: Engine configuration; validated here. Start from DefaultConfig.
//   - opts: Optional logger and metrics.
//
// # Outputs
//
//   - *Retriever: The configured retriever.
//   - error: Non-nil if factory is nil or config is out of range.
func New(factory SessionFactory, config Config, opts ...Option) (*Retriever, error) {
	if factory == nil {
		return nil, fmt.Errorf("session factory must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Retriever{
		factory: factory,
		config:  config,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Component("graph_retriever")
	return r, nil
}

// Explore runs concurrent multi-path graph explorations from all seeds.
//
// # Description
//
//	Starts one exploration goroutine per seed and returns a channel that
//	yields one Outcome per seed as each exploration finishes — an early
//	finisher is surfaced while others are still running. The channel is
//	closed once every exploration has either emitted or been cancelled.
//
//	Cancellation is cooperative: when ctx is cancelled, in-flight
//	explorations abort at their next graph-store call and their seeds are
//	not emitted. A per-seed fatal failure is emitted as an Outcome with
//	Err set; the other seeds proceed.
//
// # Inputs
//
//   - ctx: Controls cancellation of the whole call.
//   - seeds: 0..n seed inputs. Each node id non-empty, score in (0, 1].
//     An empty list yields an already-closed channel.
//   - queryTags: Tags extracted from the user query; may be empty.
//
// # Outputs
//
//   - <-chan Outcome: Buffered to len(seeds); never blocks producers.
//   - error: Non-nil on precondition violations, before any exploration starts.
//
// # Thread Safety
//
// Safe for concurrent use.
func (r *Retriever) Explore(ctx context.Context, seeds []SeedInput, queryTags []string) (<-chan Outcome, error) {
	if err := validateSeeds(seeds); err != nil {
		return nil, err
	}

	results := make(chan Outcome, len(seeds))
	if len(seeds) == 0 {
		close(results)
		return results, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "retrieval.Retriever.Explore",
		trace.WithAttributes(
			attribute.Int("seed_count", len(seeds)),
			attribute.Int("query_tag_count", len(queryTags)),
		),
	)

	var g errgroup.Group
	for _, seed := range seeds {
		g.Go(func() error {
			outcome := r.runExploration(ctx, seed, queryTags)
			if ctx.Err() != nil {
				// Cancelled seeds are not emitted; partial results
				// are discarded with them.
				return nil
			}
			results <- outcome
			return nil
		})
	}

	go func() {
		g.Wait() //nolint:errcheck // goroutines only return nil
		span.End()
		close(results)
	}()

	return results, nil
}

// runExploration runs one exploration and converts its terminal error
// into a per-seed Outcome. Retries happen per store call inside
// exploreSingle, not here.
func (r *Retriever) runExploration(ctx context.Context, seed SeedInput, queryTags []string) Outcome {
	explorationID := uuid.NewString()[:8]
	logger := r.logger.With("exploration_id", explorationID, "seed_id", seed.NodeID)

	start := time.Now()
	result, err := r.exploreSingle(ctx, seed, queryTags, logger)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == nil {
			logger.Error("exploration failed", "error", err, "elapsed", elapsed)
			r.recordExploration(ctx, "error", elapsed, 0, 0)
		}
		return Outcome{Seed: seed, Err: &ExplorationError{
			SeedID: seed.NodeID,
			Err:    err,
		}}
	}

	logger.Info("exploration finished",
		"paths", len(result.Paths),
		"max_depth_reached", result.MaxDepthReached,
		"terminated_reason", string(result.TerminatedReason),
		"elapsed", elapsed)
	r.recordExploration(ctx, string(result.TerminatedReason), elapsed,
		len(result.Paths), result.MaxDepthReached)

	return Outcome{Seed: seed, Result: result}
}

// exploreSingle executes one full multi-path BFS exploration from seed.
//
// Opens its own session (lightweight, from the driver pool) and alternates
// batched expansion with traversal-state updates until the frontier dies
// out or the depth limit is hit. The session is released on every exit
// path, including cancellation.
func (r *Retriever) exploreSingle(ctx context.Context, seed SeedInput, queryTags []string, logger *logging.Logger) (*RetrievalResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "retrieval.Retriever.exploreSingle",
		trace.WithAttributes(attribute.String("seed_id", seed.NodeID)),
	)
	defer span.End()

	var session Session
	err := r.withRetry(ctx, "open_session", logger, func() error {
		var openErr error
		session, openErr = r.factory.OpenSession(ctx)
		return openErr
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer session.Close(context.WithoutCancel(ctx)) //nolint:errcheck // release-only

	var seedResult SeedFetchResult
	err = r.withRetry(ctx, "fetch_seed", logger, func() error {
		var fetchErr error
		seedResult, fetchErr = session.FetchSeed(ctx, seed.NodeID)
		return fetchErr
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !seedResult.Found || seedResult.Node == nil {
		// Not an error: the upstream index can be ahead of the graph.
		logger.Debug("seed not found in graph")
		return &RetrievalResult{
			Seed:             seed,
			TerminatedReason: TerminatedSeedNotFound,
		}, nil
	}

	state := newTraversalState(*seedResult.Node, seed.Score, r.config.MaxBranches)
	visited := map[string]struct{}{seed.NodeID: {}}

	for depth := 0; depth < r.config.MaxDepth; depth++ {
		if len(state.frontier) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frontierInputs := state.buildFrontierInputs()
		var candidates []ExpansionCandidate
		err = r.withRetry(ctx, "expand_frontier", logger, func() error {
			var expandErr error
			candidates, expandErr = session.ExpandFrontier(ctx, frontierInputs, visitedList(visited), queryTags)
			return expandErr
		})
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		update := state.selectNextFrontier(groupByParent(candidates))
		for _, id := range update.newlyVisited {
			visited[id] = struct{}{}
		}
	}

	state.finalizeRemaining()

	maxDepthReached := 0
	for _, p := range state.completedPaths {
		if len(p.Steps) > maxDepthReached {
			maxDepthReached = len(p.Steps)
		}
	}

	reason := TerminatedNoMorePaths
	if maxDepthReached == r.config.MaxDepth {
		reason = TerminatedMaxDepth
	}

	return &RetrievalResult{
		Seed:             seed,
		SeedNode:         seedResult.Node,
		Paths:            state.completedPaths,
		MaxDepthReached:  maxDepthReached,
		TerminatedReason: reason,
	}, nil
}

// withRetry runs one graph-store call with exponential backoff on
// transient failures: up to MaxRetries extra attempts, waiting 50ms * 2^n
// after failed attempt n (counting from 0), i.e. 50ms, 100ms, 200ms, ...
// Non-transient failures and context
// cancellation propagate immediately.
func (r *Retriever) withRetry(ctx context.Context, op string, logger *logging.Logger, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			r.recordRetry(ctx, op)
			logger.Warn("retrying graph-store call",
				"op", op, "attempt", attempt+1, "error", lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}

		start := time.Now()
		lastErr = fn()
		r.recordStoreCall(ctx, op, lastErr, time.Since(start))

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// groupByParent buckets the flat candidate list, preserving the
// per-parent descending-energy order the connector guarantees.
func groupByParent(candidates []ExpansionCandidate) map[string][]ExpansionCandidate {
	grouped := make(map[string][]ExpansionCandidate)
	for _, cand := range candidates {
		grouped[cand.ParentID] = append(grouped[cand.ParentID], cand)
	}
	return grouped
}

func visitedList(visited map[string]struct{}) []string {
	ids := make([]string, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	return ids
}

// --- metric helpers (no-ops when metrics are disabled) ---

func (r *Retriever) recordExploration(ctx context.Context, reason string, elapsed time.Duration, paths, depth int) {
	if r.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("reason", reason))
	r.metrics.ExplorationsTotal.Add(ctx, 1, attrs)
	r.metrics.ExplorationDuration.Record(ctx, elapsed.Seconds(), attrs)
	r.metrics.PathsReturned.Record(ctx, int64(paths))
	r.metrics.DepthReached.Record(ctx, int64(depth))
}

func (r *Retriever) recordStoreCall(ctx context.Context, op string, err error, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	)
	r.metrics.StoreCallsTotal.Add(ctx, 1, attrs)
	r.metrics.StoreCallDuration.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		kind := "fatal"
		if IsTransient(err) {
			kind = "transient"
		}
		r.metrics.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("component", "graph_store"),
			attribute.String("type", kind),
		))
	}
}

func (r *Retriever) recordRetry(ctx context.Context, op string) {
	if r.metrics == nil {
		return
	}
	r.metrics.StoreRetriesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", op)))
}
