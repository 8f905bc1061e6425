// Package history persists completed scans in a local sqlite database so
// past verdicts can be listed, re-rendered and exported after the fact.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/its-dedsec/urlsentry/internal/scan"
	"github.com/its-dedsec/urlsentry/internal/shared/constants"
	domerr "github.com/its-dedsec/urlsentry/internal/shared/errors"
)

//go:embed schema.sql
var schemaFS embed.FS

// Record is one stored scan.
type Record struct {
	ID        string               `json:"id"`
	Target    string               `json:"target"`
	Risk      scan.Risk            `json:"risk"`
	Checks    []scan.SecurityCheck `json:"checks"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Store reads and writes scan records. Safe for concurrent use; sqlite
// serializes writers and the schema enables WAL plus a busy timeout.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path and applies the
// schema. The parent directory is created when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores one completed scan and returns the stored record with its
// assigned id.
func (s *Store) Save(ctx context.Context, target string, result scan.Result) (Record, error) {
	if target == "" {
		return Record{}, domerr.ErrEmptyTarget
	}

	checks, err := json.Marshal(result.Checks)
	if err != nil {
		return Record{}, fmt.Errorf("encode checks: %w", err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Target:    target,
		Risk:      result.Risk,
		Checks:    result.Checks,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, target, risk, checks, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Target, string(rec.Risk), string(checks), rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert scan: %w", err)
	}

	return rec, nil
}

// Get returns the stored scan whose id matches exactly, or uniquely by
// prefix so operators can paste the short ids shown in listings.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, domerr.ErrInvalidScanID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, risk, checks, created_at FROM scans
		 WHERE id = ?1 OR id LIKE ?1 || '%'
		 ORDER BY created_at DESC LIMIT 2`, id)
	if err != nil {
		return Record{}, fmt.Errorf("query scan: %w", err)
	}
	defer rows.Close()

	var matches []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return Record{}, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("read scan rows: %w", err)
	}

	switch len(matches) {
	case 0:
		return Record{}, domerr.ErrScanNotFound
	case 1:
		return matches[0], nil
	default:
		return Record{}, fmt.Errorf("%w: %q matches more than one scan", domerr.ErrInvalidScanID, id)
	}
}

// List returns the most recent scans, newest first. A non-positive limit
// falls back to the default listing window.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, risk, checks, created_at FROM scans
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read scan rows: %w", err)
	}

	return records, nil
}

// Delete removes one stored scan by exact id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domerr.ErrScanNotFound
	}
	return nil
}

// Clear removes every stored scan and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans`)
	if err != nil {
		return 0, fmt.Errorf("clear scans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleared scans: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var risk, checks string
	var createdAt int64
	if err := rows.Scan(&rec.ID, &rec.Target, &risk, &checks, &createdAt); err != nil {
		return Record{}, fmt.Errorf("scan row: %w", err)
	}

	rec.Risk = scan.Risk(risk)
	if err := json.Unmarshal([]byte(checks), &rec.Checks); err != nil {
		return Record{}, fmt.Errorf("decode checks for %s: %w", rec.ID, err)
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()

	return rec, nil
}

// IsNotFound reports whether err means the requested scan does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domerr.ErrScanNotFound)
}
