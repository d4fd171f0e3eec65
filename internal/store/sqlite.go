// Package store provides storage backends for insight history.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/onlyfits/insights/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists insight records in an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN (a file path).
// The parent directory is created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// AddInsight inserts a record.
func (s *SQLiteStore) AddInsight(rec models.InsightRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO insights (id, user_id, kind, summary, score, risk_score, time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Kind, rec.Summary, rec.Score, rec.RiskScore, rec.Time,
	)
	if err != nil {
		slog.Error("SQLiteStore AddInsight failed", "error", err, "user_id", rec.UserID)
		return fmt.Errorf("failed to insert insight for %s: %w", rec.UserID, err)
	}
	slog.Debug("SQLiteStore AddInsight succeeded", "user_id", rec.UserID, "kind", rec.Kind)
	return nil
}

// ListInsights returns records for a user, newest first.
func (s *SQLiteStore) ListInsights(userID string, limit int) ([]models.InsightRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, kind, summary, score, risk_score, time FROM insights WHERE user_id = ? ORDER BY time DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		slog.Error("SQLiteStore ListInsights query failed", "error", err)
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	records, err := scanInsights(rows)
	if err != nil {
		slog.Error("SQLiteStore ListInsights scan failed", "error", err)
		return nil, err
	}
	slog.Debug("SQLiteStore ListInsights succeeded", "user_id", userID, "count", len(records))
	return records, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
