package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/period"
	"github.com/sells-group/finstmt/internal/resilience"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// filingResult is the outcome of one filing fetch. ok is false when the
// filing was dropped.
type filingResult struct {
	filing model.Filing
	facts  []model.PeriodFacts
	ok     bool
}

// discover searches every form type of kind and loads split history
// concurrently. A failed search or split fetch is logged and skipped; only
// cancellation is returned. Filings come back unique and newest first.
func (e *Engine) discover(ctx context.Context, ticker string, kind model.PeriodType, limit int, cik string) ([]model.Filing, []model.SplitEvent, error) {
	forms := FormTypes(kind)
	found := make([][]model.Filing, len(forms))
	var splits []model.SplitEvent

	g, gCtx := errgroup.WithContext(ctx)
	for i, form := range forms {
		g.Go(func() error {
			fs, err := resilience.DoVal(gCtx, e.retryConfig("search_filings"), func(ctx context.Context) ([]model.Filing, error) {
				return e.src.SearchFilings(ctx, ticker, form, limit*e.multiplier, cik)
			})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				zap.L().Warn("engine: filing search failed",
					zap.String("ticker", ticker),
					zap.String("form_type", form),
					zap.String("error_kind", resilience.Kind(err)),
					zap.Error(err),
				)
				return nil
			}
			found[i] = fs
			return nil
		})
	}
	g.Go(func() error {
		splits = e.splitHistory(gCtx, ticker)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var all []model.Filing
	for _, fs := range found {
		all = append(all, fs...)
	}
	all = uniqueFilings(all)
	sortFilings(all)
	return all, splits, nil
}

// splitHistory returns cached split history, fetching it on a miss. Fetch
// failures yield no splits and are not cached.
func (e *Engine) splitHistory(ctx context.Context, ticker string) []model.SplitEvent {
	if s, ok := e.splits.get(ticker); ok {
		return s
	}
	s, err := resilience.DoVal(ctx, e.retryConfig("fetch_splits"), func(ctx context.Context) ([]model.SplitEvent, error) {
		return e.src.FetchSplits(ctx, ticker)
	})
	if err != nil {
		if ctx.Err() == nil {
			zap.L().Warn("engine: split history unavailable",
				zap.String("ticker", ticker),
				zap.String("error_kind", resilience.Kind(err)),
				zap.Error(err),
			)
		}
		return nil
	}
	e.splits.put(ticker, s)
	return s
}

// fetchAll downloads and extracts every filing with at most maxFetches in
// flight. Each result lands in its filing's slot, so no locking is needed.
// A filing that fails after retries is dropped; cancellation aborts the
// whole batch.
func (e *Engine) fetchAll(ctx context.Context, filings []model.Filing, kind model.PeriodType) ([]filingResult, error) {
	results := make([]filingResult, len(filings))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxFetches)
	for i, f := range filings {
		g.Go(func() error {
			if err := pause(gCtx, e.fetchDelay); err != nil {
				return err
			}
			doc, err := resilience.DoVal(gCtx, e.retryConfig("fetch_xbrl"), func(ctx context.Context) (xbrl.Document, error) {
				return e.src.FetchXBRL(ctx, f.AccessionNo)
			})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				zap.L().Warn("engine: dropping filing",
					zap.String("accession", f.AccessionNo),
					zap.String("form_type", f.FormType),
					zap.String("error_kind", resilience.Kind(err)),
					zap.Error(err),
				)
				return nil
			}
			results[i] = filingResult{
				filing: f,
				facts:  period.Extract(f, doc.Sections(), kind),
				ok:     true,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
