// Package store provides storage backends for insight history.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
	"github.com/onlyfits/insights/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists insight records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// AddInsight inserts a record.
func (s *PostgresStore) AddInsight(rec models.InsightRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO insights (id, user_id, kind, summary, score, risk_score, time) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, rec.Kind, rec.Summary, rec.Score, rec.RiskScore, rec.Time,
	)
	if err != nil {
		slog.Error("PostgresStore AddInsight failed", "error", err, "user_id", rec.UserID)
		return fmt.Errorf("failed to insert insight for %s: %w", rec.UserID, err)
	}
	slog.Debug("PostgresStore AddInsight succeeded", "user_id", rec.UserID, "kind", rec.Kind)
	return nil
}

// ListInsights returns records for a user, newest first.
func (s *PostgresStore) ListInsights(userID string, limit int) ([]models.InsightRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, kind, summary, score, risk_score, time FROM insights WHERE user_id = $1 ORDER BY time DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		slog.Error("PostgresStore ListInsights query failed", "error", err)
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	records, err := scanInsights(rows)
	if err != nil {
		slog.Error("PostgresStore ListInsights scan failed", "error", err)
		return nil, err
	}
	slog.Debug("PostgresStore ListInsights succeeded", "user_id", userID, "count", len(records))
	return records, nil
}

// Close releases the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
