// Package analytics is the lookup analytics pipeline: a Collector
// publishes per-query events to Kafka, and an Aggregator consumes them
// into in-memory stats (match rate, latency percentiles, most frequent
// unmatched queries) served over HTTP.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlagarde/colloscope/pkg/kafka"
)

// AggregatedStats is the dashboard payload.
type AggregatedStats struct {
	TotalLookups     int64        `json:"total_lookups"`
	Matched          int64        `json:"matched"`
	NoMatch          int64        `json:"no_match"`
	RostersImported  int64        `json:"rosters_imported"`
	CacheHits        int64        `json:"cache_hits"`
	CacheMisses      int64        `json:"cache_misses"`
	AvgLatencyMs     float64      `json:"avg_latency_ms"`
	P50LatencyMs     int64        `json:"p50_latency_ms"`
	P95LatencyMs     int64        `json:"p95_latency_ms"`
	P99LatencyMs     int64        `json:"p99_latency_ms"`
	TopQueries       []QueryCount `json:"top_queries"`
	UnmatchedQueries []QueryCount `json:"unmatched_queries"`
	LookupsPerMinute float64      `json:"lookups_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes lookup events and maintains running stats.
type Aggregator struct {
	mu               sync.RWMutex
	totalLookups     atomic.Int64
	matched          atomic.Int64
	noMatch          atomic.Int64
	rostersImported  atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	latencies        []int64
	queryCounts      map[string]int64
	unmatchedQueries map[string]int64
	startTime        time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

func NewAggregator(consumer *kafka.Consumer) *Aggregator {
	return &Aggregator{
		latencies:        make([]int64, 0, 10000),
		queryCounts:      make(map[string]int64),
		unmatchedQueries: make(map[string]int64),
		startTime:        time.Now(),
		consumer:         consumer,
		logger:           slog.Default().With("component", "analytics-aggregator"),
	}
}

// Start enters the consume loop until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) error {
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent returns the Kafka message handler feeding the
// aggregator. Undecodable events are logged and skipped, never
// redelivered.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[LookupEvent](value)
		if err == nil && event.Type != EventRosterImport {
			agg.RecordLookup(event)
			return nil
		}
		rosterEvent, rErr := kafka.DecodeJSON[RosterEvent](value)
		if rErr != nil {
			agg.logger.Error("failed to decode analytics event", "error", rErr)
			return nil
		}
		agg.RecordRosterImport(rosterEvent)
		return nil
	}
}

// RecordLookup folds one lookup event into the running stats.
func (a *Aggregator) RecordLookup(event LookupEvent) {
	a.totalLookups.Add(1)
	if event.Matched {
		a.matched.Add(1)
	} else {
		a.noMatch.Add(1)
	}
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if !event.Matched {
		a.unmatchedQueries[event.Query]++
	}
	a.mu.Unlock()
}

// RecordRosterImport counts roster import events.
func (a *Aggregator) RecordRosterImport(event RosterEvent) {
	a.rostersImported.Add(1)
}

// Stats snapshots the current aggregated view.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalLookups:    a.totalLookups.Load(),
		Matched:         a.matched.Load(),
		NoMatch:         a.noMatch.Load(),
		RostersImported: a.rostersImported.Load(),
		CacheHits:       a.cacheHits.Load(),
		CacheMisses:     a.cacheMisses.Load(),
	}

	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}

	stats.TopQueries = topCounts(a.queryCounts, 10)
	stats.UnmatchedQueries = topCounts(a.unmatchedQueries, 10)

	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.LookupsPerMinute = float64(stats.TotalLookups) / elapsed
	}
	return stats
}

func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topCounts(counts map[string]int64, n int) []QueryCount {
	out := make([]QueryCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, QueryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
