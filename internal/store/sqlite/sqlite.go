// Package sqlite provides the SQLite journal implementation
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shivavenkatesh/bigtext/internal/store"
	"github.com/shivavenkatesh/bigtext/pkg/types"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements store.Store on a single SQLite database file
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Config configures the SQLite store
type Config struct {
	Path string // Path to database file
}

// New opens (creating if needed) the journal database
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -8000", // 8MB cache
		"PRAGMA temp_store = MEMORY",
		"PRAGMA auto_vacuum = INCREMENTAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: cfg.Path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		op TEXT NOT NULL,
		path TEXT NOT NULL,
		encoding TEXT,
		params TEXT, -- JSON object
		outputs TEXT, -- JSON array
		result TEXT,
		error TEXT,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_op ON runs(op);
	CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(path);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

	-- Character counts keyed by source fingerprint
	CREATE TABLE IF NOT EXISTS lengths (
		key TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		encoding TEXT,
		no_crlf INTEGER NOT NULL DEFAULT 0,
		chars INTEGER NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordRun journals a finished operation
func (s *Store) RecordRun(ctx context.Context, run *types.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	outputs, err := json.Marshal(run.Outputs)
	if err != nil {
		return fmt.Errorf("failed to marshal outputs: %w", err)
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, op, path, encoding, params, outputs, result, error, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		string(run.Op),
		run.Source.Path,
		run.Source.Encoding,
		string(params),
		string(outputs),
		run.Result,
		run.Error,
		int64(run.Duration),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID
func (s *Store) GetRun(ctx context.Context, id string) (*types.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, op, path, encoding, params, outputs, result, error, duration_ns, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, store.ErrNotFound)
	}
	return run, err
}

// ListRuns returns runs with filtering and pagination
func (s *Store) ListRuns(ctx context.Context, opts store.ListOptions) ([]*types.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conditions := []string{"1=1"}
	args := []interface{}{}

	if opts.Op != "" {
		conditions = append(conditions, "op = ?")
		args = append(args, string(opts.Op))
	}
	if opts.Path != "" {
		conditions = append(conditions, "path = ?")
		args = append(args, opts.Path)
	}

	order := "ASC"
	if opts.Descending {
		order = "DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT id, op, path, encoding, params, outputs, result, error, duration_ns, created_at
		FROM runs
		WHERE %s
		ORDER BY created_at %s, rowid %s
		LIMIT ? OFFSET ?
	`, strings.Join(conditions, " AND "), order, order)
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// DeleteRuns removes runs of op, or all runs when op is empty
func (s *Store) DeleteRuns(ctx context.Context, op types.Op) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		result sql.Result
		err    error
	)
	if op == "" {
		result, err = s.db.ExecContext(ctx, "DELETE FROM runs")
	} else {
		result, err = s.db.ExecContext(ctx, "DELETE FROM runs WHERE op = ?", string(op))
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}

	n, _ := result.RowsAffected()
	return n, nil
}

// DeleteLengths removes every stored length record
func (s *Store) DeleteLengths(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM lengths")
	if err != nil {
		return 0, fmt.Errorf("failed to delete lengths: %w", err)
	}

	n, _ := result.RowsAffected()
	return n, nil
}

// LookupLength returns the stored length for key
func (s *Store) LookupLength(ctx context.Context, key string) (*types.LengthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec types.LengthRecord
	var encoding sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT key, path, encoding, no_crlf, chars, updated_at
		FROM lengths WHERE key = ?
	`, key).Scan(&rec.Key, &rec.Path, &encoding, &rec.NoCRLF, &rec.Chars, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("length %s: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up length: %w", err)
	}

	rec.Encoding = encoding.String
	return &rec, nil
}

// SaveLength stores or replaces a length record
func (s *Store) SaveLength(ctx context.Context, rec *types.LengthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lengths (key, path, encoding, no_crlf, chars, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET chars = excluded.chars, updated_at = excluded.updated_at
	`, rec.Key, rec.Path, rec.Encoding, rec.NoCRLF, rec.Chars, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save length: %w", err)
	}

	return nil
}

// Stats returns journal statistics
func (s *Store) Stats(ctx context.Context) (*types.StatsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &types.StatsResponse{
		RunsByOp: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&stats.TotalRuns); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT op, COUNT(*) FROM runs GROUP BY op")
	if err != nil {
		return nil, fmt.Errorf("failed to get op counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op string
		var count int
		if err := rows.Scan(&op, &count); err != nil {
			return nil, fmt.Errorf("failed to scan op count: %w", err)
		}
		stats.RunsByOp[op] = count
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE error IS NOT NULL AND error != ''").Scan(&stats.FailedRuns); err != nil {
		return nil, fmt.Errorf("failed to get failure count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lengths").Scan(&stats.CachedLengths); err != nil {
		return nil, fmt.Errorf("failed to get length count: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.StorageBytes = info.Size()
	}

	return stats, nil
}

// Compact optimizes storage
func (s *Store) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// Close releases resources
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*types.Run, error) {
	var r types.Run
	var op string
	var encoding, params, outputs, result, errText sql.NullString
	var duration int64

	err := sc.Scan(
		&r.ID,
		&op,
		&r.Source.Path,
		&encoding,
		&params,
		&outputs,
		&result,
		&errText,
		&duration,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Op = types.Op(op)
	r.Source.Encoding = encoding.String
	r.Result = result.String
	r.Error = errText.String
	r.Duration = time.Duration(duration)

	if params.Valid {
		json.Unmarshal([]byte(params.String), &r.Params)
	}
	if outputs.Valid {
		json.Unmarshal([]byte(outputs.String), &r.Outputs)
	}

	return &r, nil
}
