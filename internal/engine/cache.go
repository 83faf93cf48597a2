package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// splitCache holds split history per ticker for the engine's lifetime. A zero
// ttl keeps entries forever.
type splitCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]splitEntry
}

type splitEntry struct {
	splits  []model.SplitEvent
	fetched time.Time
}

func newSplitCache(ttl time.Duration) *splitCache {
	return &splitCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]splitEntry),
	}
}

func (c *splitCache) get(ticker string) ([]model.SplitEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToUpper(ticker)
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetched) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.splits, true
}

func (c *splitCache) put(ticker string, splits []model.SplitEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[strings.ToUpper(ticker)] = splitEntry{splits: splits, fetched: c.now()}
}

// FilingCache persists decoded filing bodies by accession number. GetFiling
// returns nil, nil on a miss.
type FilingCache interface {
	GetFiling(ctx context.Context, accessionNo string) (xbrl.Document, error)
	PutFiling(ctx context.Context, accessionNo string, doc xbrl.Document) error
}

type cachedSource struct {
	Source
	cache FilingCache
}

// WithFilingCache wraps src so XBRL bodies are read from and written to
// cache. Cache failures are logged and never fail the fetch.
func WithFilingCache(src Source, cache FilingCache) Source {
	if cache == nil {
		return src
	}
	return &cachedSource{Source: src, cache: cache}
}

func (s *cachedSource) FetchXBRL(ctx context.Context, accessionNo string) (xbrl.Document, error) {
	doc, err := s.cache.GetFiling(ctx, accessionNo)
	if err != nil {
		zap.L().Warn("engine: filing cache read failed",
			zap.String("accession", accessionNo),
			zap.Error(err),
		)
	}
	if doc != nil {
		zap.L().Debug("engine: filing cache hit", zap.String("accession", accessionNo))
		return doc, nil
	}

	doc, err = s.Source.FetchXBRL(ctx, accessionNo)
	if err != nil {
		return nil, err
	}
	if err := s.cache.PutFiling(ctx, accessionNo, doc); err != nil {
		zap.L().Warn("engine: filing cache write failed",
			zap.String("accession", accessionNo),
			zap.Error(err),
		)
	}
	return doc, nil
}
