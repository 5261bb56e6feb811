// Package history keeps a SQLite log of compiled and delivered artifacts.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/kindling/compiler"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested record doesn't exist
var ErrNotFound = errors.New("history record not found")

// Via records how an artifact left the tool.
type Via string

const (
	ViaCommand   Via = "command"
	ViaCompanion Via = "companion"
	ViaBundle    Via = "bundle"
)

// Record is one logged artifact.
type Record struct {
	ID         string
	DeliveryID string
	Author     string
	Name       string
	Hash       string // hex SHA-256 of the payload
	Payload    string
	Via        Via
	CreatedAt  time.Time
}

// Store handles SQLite storage for history records
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		delivery_id TEXT NOT NULL,
		author TEXT NOT NULL,
		name TEXT NOT NULL,
		hash TEXT NOT NULL,
		payload TEXT NOT NULL,
		via TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record logs artifacts emitted together under one delivery id and
// returns the stored records.
func (s *Store) Record(ctx context.Context, via Via, deliveryID string, arts []compiler.Artifact) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	out := make([]Record, 0, len(arts))
	for _, a := range arts {
		sum := sha256.Sum256([]byte(a.Payload))
		r := Record{
			ID:         uuid.NewString(),
			DeliveryID: deliveryID,
			Author:     a.Author,
			Name:       a.Name,
			Hash:       hex.EncodeToString(sum[:]),
			Payload:    a.Payload,
			Via:        via,
			CreatedAt:  now,
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO artifacts (id, delivery_id, author, name, hash, payload, via, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.DeliveryID, r.Author, r.Name, r.Hash, r.Payload, string(r.Via), r.CreatedAt.UnixNano(),
		)
		if err != nil {
			return nil, fmt.Errorf("saving record: %w", err)
		}
		out = append(out, r)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, delivery_id, author, name, hash, payload, via, created_at
		 FROM artifacts ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get retrieves a record by id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, delivery_id, author, name, hash, payload, via, created_at
		 FROM artifacts WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var r Record
	var via string
	var created int64
	if err := sc.Scan(&r.ID, &r.DeliveryID, &r.Author, &r.Name, &r.Hash, &r.Payload, &via, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning record: %w", err)
	}
	r.Via = Via(via)
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}
