// Package handler exposes the roster lookup API over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mlagarde/colloscope/internal/analytics"
	"github.com/mlagarde/colloscope/internal/lookup/cache"
	"github.com/mlagarde/colloscope/internal/lookup/resolver"
	"github.com/mlagarde/colloscope/internal/roster"
	"github.com/mlagarde/colloscope/internal/roster/store"
	"github.com/mlagarde/colloscope/internal/schedule"
	"github.com/mlagarde/colloscope/pkg/config"
	apperrors "github.com/mlagarde/colloscope/pkg/errors"
	"github.com/mlagarde/colloscope/pkg/metrics"
	"github.com/mlagarde/colloscope/pkg/middleware"
)

// Handler serves the lookup, agenda, and cache administration endpoints.
// Cache and collector are optional; nil disables them.
type Handler struct {
	store     *store.Store
	cache     *cache.LookupCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       config.LookupConfig
	logger    *slog.Logger
}

func New(
	st *store.Store,
	lc *cache.LookupCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	cfg config.LookupConfig,
) *Handler {
	return &Handler{
		store:     st,
		cache:     lc,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "lookup-handler"),
	}
}

// LookupResponse is the payload for a resolved query.
type LookupResponse struct {
	RosterID int64            `json:"roster_id"`
	Query    string           `json:"query"`
	Matched  bool             `json:"matched"`
	Group    int              `json:"group,omitempty"`
	Student  int              `json:"student,omitempty"`
	EntityID int64            `json:"entity_id,omitempty"`
	Name     string           `json:"name,omitempty"`
	Agenda   []schedule.Event `json:"agenda,omitempty"`
}

// Lookup handles GET /api/v1/rosters/{id}/lookup?q=...
//
// The query is resolved against the roster's token index; a result is
// returned only when exactly one student scores highest. Ambiguity and
// no-match are indistinguishable to the caller.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	rosterID, err := parseRosterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "missing query parameter q"))
		return
	}

	snap, err := h.store.Load(ctx, rosterID)
	if err != nil {
		h.metrics.LookupsTotal.WithLabelValues("error").Inc()
		h.writeError(w, r, err)
		return
	}

	result, cacheHit := h.resolve(r, rosterID, snap, query)

	elapsed := time.Since(start)
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.LookupLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())

	h.track(ctx, rosterID, query, result, elapsed, cacheHit)

	if !result.Matched {
		h.metrics.LookupsTotal.WithLabelValues("no_match").Inc()
		h.writeError(w, r, apperrors.Newf(apperrors.ErrNoUniqueMatch, http.StatusNotFound, "query %q", query))
		return
	}
	h.metrics.LookupsTotal.WithLabelValues("matched").Inc()

	resp := LookupResponse{
		RosterID: rosterID,
		Query:    query,
		Matched:  true,
		Group:    result.Group,
		Student:  result.Student,
		EntityID: result.EntityID,
		Name:     result.Name,
	}
	if events, err := schedule.Upcoming(snap.Roster, result.Group, time.Now(), h.cfg.AgendaLimit); err == nil {
		resp.Agenda = events
	} else {
		h.logger.Error("agenda build failed", "roster_id", rosterID, "group", result.Group, "error", err)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// resolve answers the query from the cache when possible, computing and
// caching a fresh result otherwise.
func (h *Handler) resolve(r *http.Request, rosterID int64, snap *store.Snapshot, query string) (*cache.Result, bool) {
	compute := func() (*cache.Result, error) {
		candidate, ok := resolver.Resolve(snap.Index, query)
		if !ok {
			return &cache.Result{Matched: false}, nil
		}
		name, _ := roster.NameOf(snap.Roster, candidate)
		return &cache.Result{
			Matched:  true,
			Group:    candidate.Group,
			Student:  candidate.Student,
			EntityID: candidate.EntityID(rosterID),
			Name:     name,
		}, nil
	}

	if h.cache == nil {
		result, _ := compute()
		return result, false
	}
	result, hit, err := h.cache.GetOrCompute(r.Context(), rosterID, query, compute)
	if err != nil {
		// compute never fails; this branch guards future compute paths.
		result, _ = compute()
		return result, false
	}
	return result, hit
}

func (h *Handler) track(ctx context.Context, rosterID int64, query string, result *cache.Result, elapsed time.Duration, cacheHit bool) {
	if h.collector == nil {
		return
	}
	h.collector.Track(analytics.LookupEvent{
		Type:      analytics.EventLookup,
		RosterID:  rosterID,
		Query:     query,
		Matched:   result.Matched,
		EntityID:  result.EntityID,
		LatencyMs: elapsed.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now(),
		RequestID: middleware.GetRequestID(ctx),
	})
}

// Agenda handles GET /api/v1/rosters/{id}/groups/{group}/agenda
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	rosterID, err := parseRosterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	groupIdx, err := strconv.Atoi(r.PathValue("group"))
	if err != nil {
		h.writeError(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid group index"))
		return
	}

	snap, err := h.store.Load(r.Context(), rosterID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if groupIdx < 0 || groupIdx >= len(snap.Roster.Groups) {
		h.writeError(w, r, apperrors.Newf(apperrors.ErrGroupNotFound, http.StatusNotFound, "group %d", groupIdx))
		return
	}

	events, err := schedule.Upcoming(snap.Roster, groupIdx, time.Now(), 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"roster_id": rosterID,
		"group":     groupIdx,
		"events":    events,
	})
}

// CacheStats handles GET /api/v1/cache/stats
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"enabled": false})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": true,
		"hits":    hits,
		"misses":  misses,
	})
}

// InvalidateCache handles DELETE /api/v1/rosters/{id}/cache
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	rosterID, err := parseRosterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"invalidated": false})
		return
	}
	if err := h.cache.InvalidateRoster(r.Context(), rosterID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"invalidated": true})
}

func parseRosterID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid roster id")
	}
	return id, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, map[string]interface{}{
		"error":      err.Error(),
		"request_id": middleware.GetRequestID(r.Context()),
	})
}
