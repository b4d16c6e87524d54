package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorRecordLookup(t *testing.T) {
	agg := NewAggregator(nil)

	agg.RecordLookup(LookupEvent{Type: EventLookup, Query: "dupont", Matched: true, LatencyMs: 4})
	agg.RecordLookup(LookupEvent{Type: EventLookup, Query: "dupont", Matched: true, LatencyMs: 8, CacheHit: true})
	agg.RecordLookup(LookupEvent{Type: EventLookup, Query: "zzz", Matched: false, LatencyMs: 2})

	stats := agg.Stats()
	assert.Equal(t, int64(3), stats.TotalLookups)
	assert.Equal(t, int64(2), stats.Matched)
	assert.Equal(t, int64(1), stats.NoMatch)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(2), stats.CacheMisses)
	assert.InDelta(t, 14.0/3.0, stats.AvgLatencyMs, 0.001)

	require.NotEmpty(t, stats.TopQueries)
	assert.Equal(t, QueryCount{Query: "dupont", Count: 2}, stats.TopQueries[0])

	require.Len(t, stats.UnmatchedQueries, 1)
	assert.Equal(t, QueryCount{Query: "zzz", Count: 1}, stats.UnmatchedQueries[0])
}

func TestAggregatorRecordRosterImport(t *testing.T) {
	agg := NewAggregator(nil)
	agg.RecordRosterImport(RosterEvent{Type: EventRosterImport, RosterID: 7})
	agg.RecordRosterImport(RosterEvent{Type: EventRosterImport, RosterID: 8})

	assert.Equal(t, int64(2), agg.Stats().RostersImported)
}

func TestAggregatorPercentiles(t *testing.T) {
	agg := NewAggregator(nil)
	for i := int64(1); i <= 100; i++ {
		agg.RecordLookup(LookupEvent{Type: EventLookup, Query: "q", Matched: true, LatencyMs: i})
	}

	stats := agg.Stats()
	assert.Equal(t, int64(51), stats.P50LatencyMs)
	assert.Equal(t, int64(96), stats.P95LatencyMs)
	assert.Equal(t, int64(100), stats.P99LatencyMs)
}

func TestHandleEventDispatch(t *testing.T) {
	agg := NewAggregator(nil)
	handler := HandleEvent(agg)

	lookup, err := json.Marshal(LookupEvent{
		Type:      EventLookup,
		RosterID:  1,
		Query:     "martin",
		Matched:   true,
		LatencyMs: 3,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), nil, lookup))

	imported, err := json.Marshal(RosterEvent{
		Type:      EventRosterImport,
		RosterID:  1,
		Groups:    4,
		Students:  12,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), nil, imported))

	stats := agg.Stats()
	assert.Equal(t, int64(1), stats.TotalLookups)
	assert.Equal(t, int64(1), stats.RostersImported)
}

func TestHandleEventBadPayload(t *testing.T) {
	agg := NewAggregator(nil)
	handler := HandleEvent(agg)

	assert.NoError(t, handler(context.Background(), nil, []byte("not json")))
	assert.Equal(t, int64(0), agg.Stats().TotalLookups)
}
