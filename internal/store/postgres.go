package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS filing_cache (
	accession_no TEXT PRIMARY KEY,
	document     JSONB NOT NULL,
	cached_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	ticker         TEXT NOT NULL,
	period         TEXT NOT NULL,
	periods        JSONB NOT NULL,
	source         TEXT NOT NULL,
	split_adjusted BOOLEAN NOT NULL DEFAULT false,
	seconds        DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetFiling(ctx context.Context, accessionNo string) (xbrl.Document, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM filing_cache WHERE accession_no = $1`,
		accessionNo,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get filing %s", accessionNo)
	}
	doc, err := xbrl.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: decode filing %s", accessionNo)
	}
	return doc, nil
}

func (s *PostgresStore) PutFiling(ctx context.Context, accessionNo string, doc xbrl.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal filing")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO filing_cache (accession_no, document, cached_at) VALUES ($1, $2, $3)
		 ON CONFLICT (accession_no) DO UPDATE SET document = EXCLUDED.document, cached_at = EXCLUDED.cached_at`,
		accessionNo, body, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put filing %s", accessionNo)
}

func (s *PostgresStore) RecordRun(ctx context.Context, period model.PeriodType, res *model.FinancialsResult) (*Run, error) {
	run := newRun(uuid.New().String(), period, res, time.Now().UTC())

	periodsJSON, err := json.Marshal(run.Periods)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal periods")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, ticker, period, periods, source, split_adjusted, seconds, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Ticker, string(run.Period), periodsJSON, run.Source, run.SplitAdjusted, run.Seconds, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, ticker, period, periods, source, split_adjusted, seconds, created_at FROM runs`
	args := []any{}
	argIdx := 1

	if filter.Ticker != "" {
		query += fmt.Sprintf(` WHERE ticker = $%d`, argIdx)
		args = append(args, strings.ToUpper(filter.Ticker))
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var period string
		var periodsJSON []byte
		if err := rows.Scan(&r.ID, &r.Ticker, &period, &periodsJSON, &r.Source, &r.SplitAdjusted, &r.Seconds, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Period = model.PeriodType(period)
		if err := json.Unmarshal(periodsJSON, &r.Periods); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal periods")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
