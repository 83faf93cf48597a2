package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS filing_cache (
	accession_no TEXT PRIMARY KEY,
	document     TEXT NOT NULL,
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	ticker         TEXT NOT NULL,
	period         TEXT NOT NULL,
	periods        TEXT NOT NULL,
	source         TEXT NOT NULL,
	split_adjusted INTEGER NOT NULL DEFAULT 0,
	seconds        REAL NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetFiling(ctx context.Context, accessionNo string) (xbrl.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM filing_cache WHERE accession_no = ?`,
		accessionNo,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get filing %s", accessionNo)
	}
	doc, err := xbrl.Parse(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: decode filing %s", accessionNo)
	}
	return doc, nil
}

func (s *SQLiteStore) PutFiling(ctx context.Context, accessionNo string, doc xbrl.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal filing")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO filing_cache (accession_no, document, cached_at) VALUES (?, ?, ?)
		 ON CONFLICT(accession_no) DO UPDATE SET document = excluded.document, cached_at = excluded.cached_at`,
		accessionNo, string(body), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put filing %s", accessionNo)
}

func (s *SQLiteStore) RecordRun(ctx context.Context, period model.PeriodType, res *model.FinancialsResult) (*Run, error) {
	run := newRun(uuid.New().String(), period, res, time.Now().UTC())

	periodsJSON, err := json.Marshal(run.Periods)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal periods")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, ticker, period, periods, source, split_adjusted, seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Ticker, string(run.Period), string(periodsJSON), run.Source, run.SplitAdjusted, run.Seconds, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, ticker, period, periods, source, split_adjusted, seconds, created_at FROM runs`
	var args []any
	if filter.Ticker != "" {
		query += ` WHERE ticker = ?`
		args = append(args, strings.ToUpper(filter.Ticker))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	runs := []Run{}
	for rows.Next() {
		var r Run
		var period, periodsJSON string
		if err := rows.Scan(&r.ID, &r.Ticker, &period, &periodsJSON, &r.Source, &r.SplitAdjusted, &r.Seconds, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Period = model.PeriodType(period)
		if err := json.Unmarshal([]byte(periodsJSON), &r.Periods); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal periods")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}
