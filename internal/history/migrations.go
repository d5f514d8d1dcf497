package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

// The archive currently has a single schema revision. The version table is
// still written so a future revision can detect what an existing database
// file already has.
const schemaVersion = 1

//go:embed migrations/001_initial_schema.sql
var schemaScript string

// migrate brings the database file up to schemaVersion. A fresh file gets
// the full schema; a file already at the current version is left alone.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema migration: %w", err)
	}
	defer tx.Rollback()

	// The driver executes one statement per call, so the script is applied
	// statement by statement inside the transaction.
	for _, stmt := range schemaStatements(schemaScript) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema version %d: %w", schemaVersion, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version %d: %w", schemaVersion, err)
	}
	return tx.Commit()
}

// schemaStatements cuts a script at semicolons and keeps only pieces that
// contain something other than blank lines and -- comments.
func schemaStatements(script string) []string {
	var out []string
	for _, piece := range strings.Split(script, ";") {
		if hasSQL(piece) {
			out = append(out, strings.TrimSpace(piece))
		}
	}
	return out
}

func hasSQL(piece string) bool {
	for line := range strings.Lines(piece) {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return true
		}
	}
	return false
}
