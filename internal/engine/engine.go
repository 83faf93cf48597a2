// Package engine turns a ticker's filings into canonical income, balance and
// cash-flow statements.
package engine

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finstmt/internal/config"
	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/resilience"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// DefaultLimit is the number of periods returned when a request sets none.
const DefaultLimit = 5

// Source supplies filing metadata, XBRL bodies and split history.
type Source interface {
	SearchFilings(ctx context.Context, ticker, formType string, limit int, cik string) ([]model.Filing, error)
	FetchXBRL(ctx context.Context, accessionNo string) (xbrl.Document, error)
	FetchSplits(ctx context.Context, ticker string) ([]model.SplitEvent, error)
}

// Request selects the statements to build.
type Request struct {
	Ticker string
	Period model.PeriodType
	Limit  int
	CIK    string
}

// Engine builds financial statements from a Source. It is safe for
// concurrent use.
type Engine struct {
	src        Source
	name       string
	maxFetches int
	fetchDelay time.Duration
	multiplier int
	retry      resilience.RetryConfig
	splits     *splitCache
	now        func() time.Time
}

// New creates an Engine reading from src.
func New(cfg *config.Config, src Source) *Engine {
	ec := cfg.Engine
	e := &Engine{
		src:        src,
		name:       cfg.Source.Name,
		maxFetches: max(ec.MaxConcurrentFetches, 1),
		fetchDelay: ec.FetchDelay(),
		multiplier: max(ec.SearchLimitMultiplier, 1),
		retry:      resilience.FromRetryConfig(ec.RetryAttempts, ec.RetryBackoffMs),
		splits:     newSplitCache(ec.SplitCacheTTL()),
		now:        time.Now,
	}
	return e
}

// GetFinancials builds the statements for one ticker. Filings that cannot be
// fetched are dropped; a ticker with no usable filings yields the empty
// result. A cancelled ctx returns its error and no result.
func (e *Engine) GetFinancials(ctx context.Context, req Request) (*model.FinancialsResult, error) {
	start := e.now()

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, eris.New("engine: ticker is required")
	}
	kind := req.Period
	if kind == "" {
		kind = model.PeriodAnnual
	}
	if !kind.Valid() {
		return nil, eris.Errorf("engine: unsupported period %q", kind)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	log := zap.L().With(zap.String("ticker", ticker), zap.String("period", string(kind)))
	log.Info("engine: building statements", zap.Int("limit", limit))

	filings, splits, err := e.discover(ctx, ticker, kind, limit, req.CIK)
	if err != nil {
		return nil, err
	}
	filings = Dedup(filings, kind)
	if len(filings) > limit {
		filings = filings[:limit]
	}
	if len(filings) == 0 {
		log.Info("engine: no filings found")
		return e.empty(ticker, start), nil
	}

	results, err := e.fetchAll(ctx, filings, kind)
	if err != nil {
		return nil, err
	}

	pfs := mergePeriods(results, limit)
	if len(pfs) == 0 {
		log.Info("engine: no periods extracted", zap.Int("filings", len(filings)))
		return e.empty(ticker, start), nil
	}

	res := e.build(ticker, pfs, splits)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.stamp(res, start)

	log.Info("engine: statements built",
		zap.Int("filings", len(filings)),
		zap.Strings("periods", res.Periods),
		zap.Bool("split_adjusted", res.SplitAdjusted),
		zap.Float64("seconds", res.ProcessingTimeSeconds),
	)
	return res, nil
}

func (e *Engine) empty(ticker string, start time.Time) *model.FinancialsResult {
	res := model.EmptyResult(ticker, e.name)
	e.stamp(res, start)
	return res
}

func (e *Engine) stamp(res *model.FinancialsResult, start time.Time) {
	now := e.now()
	res.ProcessingTimeSeconds = math.Round(now.Sub(start).Seconds()*1000) / 1000
	res.LastUpdated = now.UTC().Format(time.RFC3339)
}

// retryConfig returns the engine's retry policy logging under operation.
func (e *Engine) retryConfig(operation string) resilience.RetryConfig {
	cfg := e.retry
	cfg.OnRetry = resilience.RetryLogger(e.name, operation)
	return cfg
}
