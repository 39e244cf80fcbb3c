package matchstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"reelmatch/internal/config"
	"reelmatch/internal/matching"
)

// Store manages match persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open opens the store configured under paths.store_path.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.StorePath)
}

// OpenPath initializes or connects to the database at path. It fails when
// another process holds the store lock.
func OpenPath(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("match store %s is in use by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database and releases the lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release store lock: %w", unlockErr)
		}
		s.lock = nil
	}
	return err
}

// Entry is a stored lookup outcome.
type Entry struct {
	ItemID    string
	RunID     string
	Result    matching.MatchResult
	UpdatedAt time.Time
}

// SaveResult inserts or replaces the outcome for result.ItemID.
func (s *Store) SaveResult(ctx context.Context, runID string, result matching.MatchResult) error {
	if strings.TrimSpace(result.ItemID) == "" {
		return errors.New("result has no item id")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_results (
            item_id, run_id, success, external_id, media_type, imdb_id,
            matched_title, matched_year, match_score, strategy_used,
            error_kind, detail, result_json, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(item_id) DO UPDATE SET
            run_id = excluded.run_id,
            success = excluded.success,
            external_id = excluded.external_id,
            media_type = excluded.media_type,
            imdb_id = excluded.imdb_id,
            matched_title = excluded.matched_title,
            matched_year = excluded.matched_year,
            match_score = excluded.match_score,
            strategy_used = excluded.strategy_used,
            error_kind = excluded.error_kind,
            detail = excluded.detail,
            result_json = excluded.result_json,
            updated_at = excluded.updated_at`,
		result.ItemID,
		nullableString(runID),
		boolToInt(result.Success),
		nullableInt64(result.ExternalID),
		nullableString(string(result.MediaType)),
		nullableString(result.IMDbID),
		nullableString(result.MatchedTitle),
		nullableInt64(int64(result.MatchedYear)),
		result.MatchScore,
		nullableString(result.StrategyUsed),
		nullableString(string(result.ErrorKind)),
		nullableString(result.Detail),
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// Get returns the stored outcome for itemID, or nil when none exists.
func (s *Store) Get(ctx context.Context, itemID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM match_results WHERE item_id = ?`, itemID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return entry, nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	RunID     string
	Success   *bool
	ErrorKind matching.ErrorKind
	Limit     int
}

// List returns stored outcomes ordered by item id.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Success != nil {
		clauses = append(clauses, "success = ?")
		args = append(args, boolToInt(*filter.Success))
	}
	if filter.ErrorKind != "" {
		clauses = append(clauses, "error_kind = ?")
		args = append(args, string(filter.ErrorKind))
	}

	query := `SELECT ` + entryColumns + ` FROM match_results`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY item_id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats summarizes the stored outcomes.
type Stats struct {
	Total   int
	Matched int
	Failed  int
	ByKind  map[matching.ErrorKind]int
}

// Stats counts stored outcomes by success and failure kind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT success, COALESCE(error_kind, ''), COUNT(1) FROM match_results GROUP BY success, error_kind`)
	if err != nil {
		return Stats{}, fmt.Errorf("result stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByKind: make(map[matching.ErrorKind]int)}
	for rows.Next() {
		var (
			success int
			kind    string
			count   int
		)
		if err := rows.Scan(&success, &kind, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		if success != 0 {
			stats.Matched += count
			continue
		}
		stats.Failed += count
		stats.ByKind[matching.ErrorKind(kind)] += count
	}
	return stats, rows.Err()
}

// Clear removes every stored outcome and run, returning the number of
// outcomes deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM match_results`)
	if err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear: %w", err)
	}
	return res.RowsAffected()
}
