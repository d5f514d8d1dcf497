// Package history archives completed sessions in an embedded libSQL
// database so consumers can revisit past diagrams. The pipeline itself
// never touches the archive; callers decide what is worth keeping.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// Record is the archived form of a session.
type Record struct {
	SessionID       string         `json:"session_id"`
	UserInput       string         `json:"user_input"`
	Intent          *schema.Intent `json:"intent,omitempty"`
	SelectedType    string         `json:"selected_type,omitempty"`
	DiagramSource   string         `json:"diagram_source,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Step            string         `json:"step"`
	CreatedAt       time.Time      `json:"created_at"`
	ArchivedAt      time.Time      `json:"archived_at"`
}

// Store defines the archive contract. All implementations must be safe
// for concurrent use.
type Store interface {
	Archive(ctx context.Context, s *schema.Session) error
	Get(ctx context.Context, sessionID string) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// LibSQLStore implements Store using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and applies
// pending migrations. The path should be a file URI, e.g. "file:history.db".
func NewLibSQLStore(ctx context.Context, dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Archive stores the session, replacing any earlier archive of the same
// session so re-archiving after a resumed run keeps the latest state.
func (s *LibSQLStore) Archive(ctx context.Context, sess *schema.Session) error {
	if sess == nil {
		return schema.NewError(schema.ErrCodeStore, "cannot archive nil session")
	}
	intent, err := nullableJSON(sess.Intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	recs, err := nullableJSON(sess.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	var selected string
	if sess.SelectedType != nil {
		selected = string(*sess.SelectedType)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_input, intent, selected_type, diagram_source, recommendations, step, created_at, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		   intent=excluded.intent, selected_type=excluded.selected_type,
		   diagram_source=excluded.diagram_source, recommendations=excluded.recommendations,
		   step=excluded.step, archived_at=CURRENT_TIMESTAMP`,
		sess.ID, sess.UserInput, intent, nullStr(selected), nullStr(sess.DiagramSource),
		recs, sess.Step, sess.CreatedAt,
	)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "archive session").WithCause(err)
	}
	return nil
}

// Get returns the archived record for a session ID.
func (s *LibSQLStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_input, intent, selected_type, diagram_source, recommendations, step, created_at, archived_at
		 FROM sessions WHERE id = ?`, sessionID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "session %q not found", sessionID)
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "get session").WithCause(err)
	}
	return rec, nil
}

// List returns the most recently archived records, newest first.
// A non-positive limit defaults to 20.
func (s *LibSQLStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_input, intent, selected_type, diagram_source, recommendations, step, created_at, archived_at
		 FROM sessions ORDER BY archived_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "list sessions").WithCause(err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan session row").WithCause(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "iterate session rows").WithCause(err)
	}
	return records, nil
}

// Purge deletes records archived before the cutoff and reports how many
// rows were removed.
func (s *LibSQLStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE archived_at < ?`, olderThan.UTC())
	if err != nil {
		return 0, schema.NewError(schema.ErrCodeStore, "purge sessions").WithCause(err)
	}
	return res.RowsAffected()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	rec := &Record{}
	var intent, selected, source, recs sql.NullString
	if err := sc.Scan(&rec.SessionID, &rec.UserInput, &intent, &selected, &source, &recs,
		&rec.Step, &rec.CreatedAt, &rec.ArchivedAt); err != nil {
		return nil, err
	}
	if intent.Valid {
		if err := json.Unmarshal([]byte(intent.String), &rec.Intent); err != nil {
			return nil, fmt.Errorf("unmarshal intent: %w", err)
		}
	}
	rec.SelectedType = selected.String
	rec.DiagramSource = source.String
	if recs.Valid {
		if err := json.Unmarshal([]byte(recs.String), &rec.Recommendations); err != nil {
			return nil, fmt.Errorf("unmarshal recommendations: %w", err)
		}
	}
	return rec, nil
}

func nullableJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	if string(b) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
