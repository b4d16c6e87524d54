package analytics

import "time"

type EventType string

const (
	EventLookup       EventType = "lookup"
	EventCacheHit     EventType = "cache_hit"
	EventCacheMiss    EventType = "cache_miss"
	EventRosterImport EventType = "roster_import"
)

// LookupEvent is emitted for every lookup query handled by the
// service, matched or not.
type LookupEvent struct {
	Type      EventType `json:"type"`
	RosterID  int64     `json:"roster_id"`
	Query     string    `json:"query"`
	Matched   bool      `json:"matched"`
	EntityID  int64     `json:"entity_id,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// RosterEvent is emitted when a roster document is imported or
// refreshed.
type RosterEvent struct {
	Type      EventType `json:"type"`
	RosterID  int64     `json:"roster_id"`
	Groups    int       `json:"groups"`
	Students  int       `json:"students"`
	Timestamp time.Time `json:"timestamp"`
}
