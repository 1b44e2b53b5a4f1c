package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fasaldoc/models"
)

// StorageKey namespaces the case history in the key-value table.
const StorageKey = "fasaldoc_history_v2"

// SQLite is a local key-value store: one JSON value per owner.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func key(owner string) string { return StorageKey + "/" + owner }

func (s *SQLite) LoadAll(ctx context.Context, owner string) ([]models.CaseRecord, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key(owner)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.CaseRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}
	var out []models.CaseRecord
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	return out, nil
}

func (s *SQLite) SaveAll(ctx context.Context, owner string, records []models.CaseRecord) error {
	if records == nil {
		records = []models.CaseRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode cases: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key(owner), string(b))
	if err != nil {
		return fmt.Errorf("save cases: %w", err)
	}
	return nil
}
