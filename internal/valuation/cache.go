package valuation

import (
	"sync"
	"time"

	"solarlog/internal/model"
)

type monthKey struct {
	Year  int
	Month time.Month
}

// summaryCache memoizes computed summaries keyed by date or
// (year, month), pinned to the store's last-write timestamp. Any write
// to the underlying sample set moves the stamp and drops every cached
// value, so recomputation from raw samples always wins. The cache is a
// pure optimization, never a source of truth.
//
// Cached values are shared; callers must treat them as immutable.
type summaryCache struct {
	mu      sync.RWMutex
	asOf    time.Time
	daily   map[model.Date]*model.DailySummary
	monthly map[monthKey]*model.MonthlyResult
}

func newSummaryCache() *summaryCache {
	return &summaryCache{
		daily:   make(map[model.Date]*model.DailySummary),
		monthly: make(map[monthKey]*model.MonthlyResult),
	}
}

func (c *summaryCache) getDaily(asOf time.Time, date model.Date) (*model.DailySummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !asOf.Equal(c.asOf) {
		return nil, false
	}
	s, ok := c.daily[date]
	return s, ok
}

func (c *summaryCache) putDaily(asOf time.Time, date model.Date, s *model.DailySummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked(asOf)
	c.daily[date] = s
}

func (c *summaryCache) getMonthly(asOf time.Time, year int, month time.Month) (*model.MonthlyResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !asOf.Equal(c.asOf) {
		return nil, false
	}
	r, ok := c.monthly[monthKey{Year: year, Month: month}]
	return r, ok
}

func (c *summaryCache) putMonthly(asOf time.Time, year int, month time.Month, r *model.MonthlyResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked(asOf)
	c.monthly[monthKey{Year: year, Month: month}] = r
}

// syncLocked resets the cache when the sample set has moved on.
func (c *summaryCache) syncLocked(asOf time.Time) {
	if asOf.Equal(c.asOf) {
		return
	}
	c.asOf = asOf
	c.daily = make(map[model.Date]*model.DailySummary)
	c.monthly = make(map[monthKey]*model.MonthlyResult)
}
