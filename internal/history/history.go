// Package history records executed maintenance operations and magnet submissions.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound indicates the history record doesn't exist.
var ErrNotFound = errors.New("history entry not found")

// Kind identifies the operation that produced an entry.
type Kind string

const (
	KindRename      Kind = "rename"
	KindMove        Kind = "move"
	KindDeleteEmpty Kind = "delete_empty"
	KindDownload    Kind = "download"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindRename, KindMove, KindDeleteEmpty, KindDownload:
		return true
	}
	return false
}

// Entry is one recorded operation.
type Entry struct {
	ID        int64
	Kind      Kind
	Path      string // folder or target address the operation ran against
	Summary   string
	Logs      []string
	OK        bool
	RequestID string
	CreatedAt time.Time
}

// Filter specifies criteria for listing history.
type Filter struct {
	Kind  *Kind
	Limit int
}

// Store persists history records.
type Store struct {
	db *sql.DB
}

// NewStore creates a history store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add inserts a new history entry and fills in its ID and CreatedAt.
func (s *Store) Add(e *Entry) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("insert history: unknown kind %q", e.Kind)
	}
	logs := e.Logs
	if logs == nil {
		logs = []string{}
	}
	data, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("encode logs: %w", err)
	}

	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO operations (kind, path, summary, logs, ok, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.Kind), e.Path, e.Summary, string(data), e.OK, e.RequestID, now,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now
	return nil
}

// Get returns one entry by ID.
func (s *Store) Get(id int64) (*Entry, error) {
	row := s.db.QueryRow(`SELECT `+columns+` FROM operations WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// List returns entries matching the filter, most recent first.
func (s *Store) List(f Filter) ([]*Entry, error) {
	var conditions []string
	var args []any

	if f.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(*f.Kind))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + columns + ` FROM operations ` + whereClause + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return results, nil
}

const columns = `id, kind, path, summary, logs, ok, request_id, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e    Entry
		kind string
		logs string
	)
	if err := row.Scan(&e.ID, &kind, &e.Path, &e.Summary, &logs, &e.OK, &e.RequestID, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history: %w", err)
	}
	e.Kind = Kind(kind)
	if err := json.Unmarshal([]byte(logs), &e.Logs); err != nil {
		return nil, fmt.Errorf("decode logs for entry %d: %w", e.ID, err)
	}
	return &e, nil
}
