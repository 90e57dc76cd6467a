package watermark

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps the watermark in a single-row sqlite table.
type SQLiteStore struct {
	db      *sql.DB
	account string
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path, account string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("watermark: sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, account: account}, nil
}

func (s *SQLiteStore) Read(ctx context.Context) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT item_id FROM watermarks WHERE account = ?", s.account).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read watermark: %w", err)
	}
	return id, true, nil
}

func (s *SQLiteStore) Write(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watermarks(account, item_id, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(account) DO UPDATE SET item_id = excluded.item_id, updated_at = excluded.updated_at`,
		s.account, id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write watermark: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
