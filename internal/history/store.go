// Package history archives finished games in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultLimit is used by LatestRecords when no positive limit is given
const DefaultLimit = 20

const schema = `CREATE TABLE IF NOT EXISTS game_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT NOT NULL,
	script_id TEXT NOT NULL,
	result TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	data TEXT NOT NULL
)`

// Record is one archived game
type Record struct {
	ID        int64           `json:"id"`
	RoomID    string          `json:"room_id"`
	ScriptID  string          `json:"script_id"`
	Result    string          `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// Store persists game records in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating if needed) the SQLite archive at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRecord appends a finished game. data is stored as JSON.
func (s *Store) SaveRecord(ctx context.Context, roomID, scriptID, result string, data any) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Record{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(roomID) == "" {
		return Record{}, fmt.Errorf("room id is required")
	}
	if strings.TrimSpace(result) == "" {
		return Record{}, fmt.Errorf("result is required")
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return Record{}, fmt.Errorf("encode record data: %w", err)
	}
	createdAt := s.now().UTC()

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO game_records (room_id, script_id, result, created_at, data) VALUES (?, ?, ?, ?, ?)`,
		roomID, scriptID, result, createdAt.UnixMilli(), string(payload),
	)
	if err != nil {
		return Record{}, fmt.Errorf("save game record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("save game record: %w", err)
	}
	return Record{
		ID:        id,
		RoomID:    roomID,
		ScriptID:  scriptID,
		Result:    result,
		CreatedAt: time.UnixMilli(createdAt.UnixMilli()).UTC(),
		Data:      payload,
	}, nil
}

// LatestRecords returns up to limit records, newest first.
func (s *Store) LatestRecords(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, room_id, script_id, result, created_at, data FROM game_records ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list game records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r         Record
			createdAt int64
			data      string
		)
		if err := rows.Scan(&r.ID, &r.RoomID, &r.ScriptID, &r.Result, &createdAt, &data); err != nil {
			return nil, fmt.Errorf("scan game record: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdAt).UTC()
		r.Data = json.RawMessage(data)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list game records: %w", err)
	}
	return records, nil
}
