package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every key in a single kv table.
type SQLiteStore struct {
	db            *sql.DB
	schemaVersion uint
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := MigrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteStore{db: db, schemaVersion: version}, nil
}

// SchemaVersion is the migration version reached when the store opened.
func (s *SQLiteStore) SchemaVersion() uint {
	return s.schemaVersion
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping is used by the readiness check.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	slog.DebugContext(ctx, "Stored key", "key", key, "bytes", len(value))
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys matches on a substring instead of LIKE since emails contain "_".
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

func (s *SQLiteStore) RecordImport(ctx context.Context, rec ImportRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_log (session_email, client_id, format, direction, parsed, accepted, duplicates, skipped, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Scope.SessionEmail, rec.Scope.ClientID, rec.Format, rec.Direction,
		rec.Parsed, rec.Accepted, rec.Duplicates, rec.Skipped, rec.Warnings, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	slog.InfoContext(ctx, "Import recorded",
		"client_id", rec.Scope.ClientID,
		"format", rec.Format,
		"accepted", rec.Accepted)
	return nil
}

func (s *SQLiteStore) ImportHistory(ctx context.Context, scope Scope, limit int) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT format, direction, parsed, accepted, duplicates, skipped, warnings, created_at
		FROM import_log
		WHERE session_email = ? AND client_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, scope.SessionEmail, scope.ClientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query import history: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		rec := ImportRecord{Scope: scope}
		var created time.Time
		if err := rows.Scan(&rec.Format, &rec.Direction, &rec.Parsed, &rec.Accepted,
			&rec.Duplicates, &rec.Skipped, &rec.Warnings, &created); err != nil {
			return nil, fmt.Errorf("scan import record: %w", err)
		}
		rec.CreatedAt = created
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import history: %w", err)
	}
	return out, nil
}

var (
	_ Store     = (*SQLiteStore)(nil)
	_ ImportLog = (*SQLiteStore)(nil)
)
