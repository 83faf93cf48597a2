// Package store persists fetched XBRL documents and a log of statement runs.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finstmt/internal/config"
	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// Run records one completed statement request.
type Run struct {
	ID            string           `json:"id"`
	Ticker        string           `json:"ticker"`
	Period        model.PeriodType `json:"period"`
	Periods       []string         `json:"periods"`
	Source        string           `json:"source"`
	SplitAdjusted bool             `json:"split_adjusted"`
	Seconds       float64          `json:"processing_time_seconds"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Ticker string `json:"ticker,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Store defines the persistence interface. Filings are immutable once
// filed, so cached documents never expire.
type Store interface {
	// Filing cache. GetFiling returns nil, nil on a miss.
	GetFiling(ctx context.Context, accessionNo string) (xbrl.Document, error)
	PutFiling(ctx context.Context, accessionNo string, doc xbrl.Document) error

	// Runs
	RecordRun(ctx context.Context, period model.PeriodType, res *model.FinancialsResult) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

// Open connects the configured backend and migrates it. It returns nil, nil
// when no backend is configured.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		path := cfg.DatabaseURL
		if path == "" {
			path = "finstmt.db"
		}
		st, err = NewSQLite(path)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func newRun(id string, period model.PeriodType, res *model.FinancialsResult, now time.Time) *Run {
	periods := res.Periods
	if periods == nil {
		periods = []string{}
	}
	return &Run{
		ID:            id,
		Ticker:        res.Symbol,
		Period:        period,
		Periods:       periods,
		Source:        res.Source,
		SplitAdjusted: res.SplitAdjusted,
		Seconds:       res.ProcessingTimeSeconds,
		CreatedAt:     now,
	}
}

func listLimit(filter RunFilter) int {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}
