// Package store loads roster documents from PostgreSQL and keeps a
// published in-memory snapshot (roster plus built search index) per
// roster id. Snapshots are immutable once published; a refresh swaps
// in a whole new one.
//
// It requires a `rosters` table:
//
//	CREATE TABLE rosters (
//	    id         BIGINT PRIMARY KEY,
//	    name       TEXT NOT NULL,
//	    document   JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mlagarde/colloscope/internal/lookup/index"
	"github.com/mlagarde/colloscope/internal/roster"
	apperrors "github.com/mlagarde/colloscope/pkg/errors"
	"github.com/mlagarde/colloscope/pkg/postgres"
	"github.com/mlagarde/colloscope/pkg/resilience"
)

// Snapshot bundles a loaded roster with its search index. Both are
// read-only after publication.
type Snapshot struct {
	Roster *roster.Roster
	Index  *index.Index
}

// Store is the roster repository: explicit, injected, and owned by the
// caller rather than reached through ambient state.
type Store struct {
	db      *postgres.Client
	mu      sync.RWMutex
	loaded  map[int64]*Snapshot
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

// New creates a Store backed by the given database client.
func New(db *postgres.Client) *Store {
	return &Store{
		db:      db,
		loaded:  make(map[int64]*Snapshot),
		breaker: resilience.NewCircuitBreaker("roster-load", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "roster-store"),
	}
}

// Get returns the published snapshot for the roster, without touching
// the database.
func (s *Store) Get(id int64) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.loaded[id]
	return snap, ok
}

// Load returns the snapshot for the roster, fetching and indexing it
// on first use. Concurrent loads of the same roster are collapsed.
func (s *Store) Load(ctx context.Context, id int64) (*Snapshot, error) {
	if snap, ok := s.Get(id); ok {
		return snap, nil
	}
	return s.load(ctx, id)
}

// Refresh unconditionally reloads the roster from the database and
// swaps the published snapshot.
func (s *Store) Refresh(ctx context.Context, id int64) (*Snapshot, error) {
	s.group.Forget(fmt.Sprintf("roster-%d", id))
	s.mu.Lock()
	delete(s.loaded, id)
	s.mu.Unlock()
	return s.load(ctx, id)
}

func (s *Store) load(ctx context.Context, id int64) (*Snapshot, error) {
	key := fmt.Sprintf("roster-%d", id)
	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		if snap, ok := s.Get(id); ok {
			return snap, nil
		}
		start := time.Now()
		r, err := s.fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		snap := &Snapshot{Roster: r, Index: index.Build(r)}
		s.mu.Lock()
		s.loaded[id] = snap
		s.mu.Unlock()
		s.logger.Info("roster loaded",
			"roster_id", id,
			"groups", len(r.Groups),
			"students", snap.Index.Len(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Snapshot), nil
}

// fetch reads and decodes the roster document, retrying transient
// database failures behind the circuit breaker.
func (s *Store) fetch(ctx context.Context, id int64) (*roster.Roster, error) {
	var document []byte
	var notFound bool
	err := resilience.Retry(ctx, "roster-fetch", resilience.RetryConfig{}, func() error {
		return s.breaker.Execute(func() error {
			row := s.db.DB.QueryRowContext(ctx,
				`SELECT document FROM rosters WHERE id = $1`, id,
			)
			err := row.Scan(&document)
			if errors.Is(err, sql.ErrNoRows) {
				// A missing roster is a caller error, not a transient
				// fault: don't retry and don't trip the breaker.
				notFound = true
				return nil
			}
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("fetching roster %d: %w", id, err)
	}
	if notFound {
		return nil, apperrors.Newf(apperrors.ErrRosterNotFound, http.StatusNotFound, "roster %d", id)
	}

	var r roster.Roster
	if err := json.Unmarshal(document, &r); err != nil {
		return nil, fmt.Errorf("decoding roster %d: %w", id, err)
	}
	if r.ID == 0 {
		r.ID = id
	}
	return &r, nil
}

// Save upserts a roster document; used by the import command.
func (s *Store) Save(ctx context.Context, r *roster.Roster) error {
	if err := roster.Validate(r); err != nil {
		return fmt.Errorf("validating roster %d: %w", r.ID, err)
	}
	document, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding roster %d: %w", r.ID, err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO rosters (id, name, document, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, document = EXCLUDED.document, updated_at = NOW()`,
		r.ID, r.Name, document,
	)
	if err != nil {
		return fmt.Errorf("saving roster %d: %w", r.ID, err)
	}
	s.logger.Info("roster saved", "roster_id", r.ID, "name", r.Name)
	return nil
}

// LoadedCount returns the number of published snapshots.
func (s *Store) LoadedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loaded)
}

// Ping verifies the backing database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
