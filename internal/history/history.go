// Package history stores completed transcriptions in a local SQLite
// database so earlier results can be listed and re-used.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chaz8081/ostt/internal/config"
)

// DefaultLimit is the number of records listed when none is given.
const DefaultLimit = 10

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one transcription.
type Record struct {
	ID        int64
	CreatedAt time.Time
	Model     string
	AudioPath string
	Text      string
	Duration  time.Duration
}

// Store is a SQLite backed transcription history.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Path returns the default database path, ~/.local/share/ostt/history.db.
func Path() (string, error) {
	dir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens or creates the database at path, creating its directory.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("history")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("history opened", zap.String("path", path))
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("history: set busy timeout: %w", err)
	}

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transcriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			model TEXT NOT NULL,
			audio_path TEXT,
			text TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("history: create transcriptions table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at)`)
	if err != nil {
		return fmt.Errorf("history: create created_at index: %w", err)
	}
	return nil
}

// Add stores rec and returns its ID. A zero CreatedAt is set to now.
func (s *Store) Add(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO transcriptions (created_at, model, audio_path, text, duration_ms)
		VALUES (?, ?, ?, ?, ?)`,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.Model,
		rec.AudioPath,
		rec.Text,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert transcription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: get last insert ID: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first. A limit <= 0 uses
// DefaultLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, model, audio_path, text, duration_ms
		FROM transcriptions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query transcriptions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			createdAt  string
			audioPath  sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &createdAt, &rec.Model, &audioPath, &rec.Text, &durationMS); err != nil {
			return nil, fmt.Errorf("history: scan transcription: %w", err)
		}

		rec.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse created_at: %w", err)
		}
		rec.AudioPath = audioPath.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: read transcriptions: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
