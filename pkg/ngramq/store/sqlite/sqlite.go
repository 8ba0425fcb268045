package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	settings_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_rows (
	analysis_id TEXT NOT NULL,
	n INTEGER NOT NULL,
	position INTEGER NOT NULL,
	ngram TEXT NOT NULL,
	query_count INTEGER NOT NULL,
	total_clicks INTEGER NOT NULL,
	total_cost REAL NOT NULL,
	total_conversions INTEGER NOT NULL,
	total_impressions INTEGER NOT NULL,
	ctr REAL NOT NULL,
	cvr REAL NOT NULL,
	cpa REAL NOT NULL,
	PRIMARY KEY(analysis_id, n, position),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_sizes (
	analysis_id TEXT NOT NULL,
	n INTEGER NOT NULL,
	PRIMARY KEY(analysis_id, n),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveAnalysis inserts or replaces an analysis and all of its rows.
func (s *sqliteStore) SaveAnalysis(ctx context.Context, a store.Analysis) (store.Analysis, error) {
	a = store.Prepare(a, s.now())

	settings, err := json.Marshal(a.Settings)
	if err != nil {
		return store.Analysis{}, fmt.Errorf("encode settings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Analysis{}, err
	}
	defer tx.Rollback()

	const upsert = `
INSERT INTO analyses (id, name, created_at, settings_json)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name,
	created_at=excluded.created_at,
	settings_json=excluded.settings_json;
`
	if _, err := tx.ExecContext(ctx, upsert, a.ID, a.Name, a.Timestamp.UTC().Format(time.RFC3339Nano), string(settings)); err != nil {
		return store.Analysis{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_rows WHERE analysis_id = ?`, a.ID); err != nil {
		return store.Analysis{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_sizes WHERE analysis_id = ?`, a.ID); err != nil {
		return store.Analysis{}, err
	}
	// sizes are kept separately so sizes without rows survive
	for _, n := range a.Sizes() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO analysis_sizes (analysis_id, n) VALUES (?, ?)`, a.ID, n); err != nil {
			return store.Analysis{}, err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO analysis_rows (
	analysis_id, n, position, ngram, query_count, total_clicks, total_cost,
	total_conversions, total_impressions, ctr, cvr, cpa
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return store.Analysis{}, err
	}
	defer stmt.Close()

	for _, n := range a.Sizes() {
		for pos, r := range a.Results[n] {
			if _, err := stmt.ExecContext(ctx,
				a.ID, n, pos, r.Ngram, r.QueryCount, r.TotalClicks, r.TotalCost,
				r.TotalConversions, r.TotalImpressions, r.CTR, r.CVR, r.CPA,
			); err != nil {
				return store.Analysis{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Analysis{}, err
	}
	return a, nil
}

// LoadAnalysis reads an analysis and its rows in stored order.
func (s *sqliteStore) LoadAnalysis(ctx context.Context, id string) (store.Analysis, error) {
	var (
		a         store.Analysis
		createdAt string
		settings  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, settings_json FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &createdAt, &settings)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Analysis{}, internalerr.ErrNotFound
	}
	if err != nil {
		return store.Analysis{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.Analysis{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	a.Timestamp = store.Timestamp{Time: ts}
	if err := json.Unmarshal([]byte(settings), &a.Settings); err != nil {
		return store.Analysis{}, fmt.Errorf("decode settings: %w", err)
	}

	a.Results = make(map[int][]analytics.NgramAggregate)
	sizes, err := s.db.QueryContext(ctx, `SELECT n FROM analysis_sizes WHERE analysis_id = ? ORDER BY n`, id)
	if err != nil {
		return store.Analysis{}, err
	}
	for sizes.Next() {
		var n int
		if err := sizes.Scan(&n); err != nil {
			sizes.Close()
			return store.Analysis{}, err
		}
		a.Results[n] = []analytics.NgramAggregate{}
	}
	if err := sizes.Err(); err != nil {
		sizes.Close()
		return store.Analysis{}, err
	}
	sizes.Close()

	rows, err := s.db.QueryContext(ctx, `
SELECT n, ngram, query_count, total_clicks, total_cost, total_conversions,
       total_impressions, ctr, cvr, cpa
FROM analysis_rows
WHERE analysis_id = ?
ORDER BY n, position`, id)
	if err != nil {
		return store.Analysis{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n int
			r analytics.NgramAggregate
		)
		if err := rows.Scan(&n, &r.Ngram, &r.QueryCount, &r.TotalClicks, &r.TotalCost,
			&r.TotalConversions, &r.TotalImpressions, &r.CTR, &r.CVR, &r.CPA); err != nil {
			return store.Analysis{}, err
		}
		a.Results[n] = append(a.Results[n], r)
	}
	if err := rows.Err(); err != nil {
		return store.Analysis{}, err
	}
	return a, nil
}

// ListAnalyses returns summaries, most recent first.
func (s *sqliteStore) ListAnalyses(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT a.id, a.name, a.created_at, s.n, COUNT(r.position)
FROM analyses a
LEFT JOIN analysis_sizes s ON s.analysis_id = a.id
LEFT JOIN analysis_rows r ON r.analysis_id = a.id AND r.n = s.n
GROUP BY a.id, s.n
ORDER BY a.created_at DESC, a.id DESC, s.n`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Summary
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, name, createdAt string
			n                   sql.NullInt64
			count               int
		)
		if err := rows.Scan(&id, &name, &createdAt, &n, &count); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			ts, err := time.Parse(time.RFC3339Nano, createdAt)
			if err != nil {
				return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
			}
			i = len(out)
			index[id] = i
			out = append(out, store.Summary{ID: id, Name: name, Timestamp: ts})
		}
		if n.Valid {
			out[i].Sizes = append(out[i].Sizes, int(n.Int64))
			out[i].Rows += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	store.SortSummaries(out)
	return out, nil
}

// DeleteAnalysis removes an analysis and its rows.
func (s *sqliteStore) DeleteAnalysis(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// foreign_keys is per connection, so rows are removed explicitly too
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_rows WHERE analysis_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_sizes WHERE analysis_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internalerr.ErrNotFound
	}
	return tx.Commit()
}
