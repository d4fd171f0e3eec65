// Package store provides storage backends for insight history.
//
// It includes an in-memory store (the default), an SQLite-backed store and a
// PostgreSQL-backed store. History recording is observational: the request
// flow does not depend on it succeeding.
package store

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/onlyfits/insights/internal/models"
)

// DefaultListLimit bounds ListInsights when the caller passes no limit.
const DefaultListLimit = 50

// Store persists completed insight records.
type Store interface {
	AddInsight(rec models.InsightRecord) error
	// ListInsights returns records for a user, newest first. A non-positive
	// limit applies DefaultListLimit.
	ListInsights(userID string, limit int) ([]models.InsightRecord, error)
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN configures an SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN configures a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType returns "postgres" for PostgreSQL-shaped DSNs and "sqlite"
// for anything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// NewStore builds a store from options: in-memory when no DSN is configured,
// otherwise SQLite or PostgreSQL based on the DSN shape.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("store.NewStore: no DSN configured, using in-memory store")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("store.NewStore: using PostgreSQL store")
		return NewPostgresStore(opts...)
	}
	slog.Debug("store.NewStore: using SQLite store", "path", cfg.DSN)
	return NewSQLiteStore(opts...)
}

// InMemoryStore is a mutex-guarded in-memory store, used when no database is
// configured and throughout the tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.InsightRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddInsight appends a record.
func (s *InMemoryStore) AddInsight(rec models.InsightRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// ListInsights returns records for a user, newest first.
func (s *InMemoryStore) ListInsights(userID string, limit int) ([]models.InsightRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.InsightRecord
	for _, rec := range s.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
