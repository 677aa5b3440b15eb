package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// MaxMonthWindow bounds the monthly series a caller may request.
const MaxMonthWindow = 24

// TransactionSource exposes a consistent view of the list and its version.
type TransactionSource interface {
	Snapshot() ([]core.Transaction, uint64)
}

// CategoryShare is a breakdown entry with its rounded percentage of all expenses.
type CategoryShare struct {
	core.CategoryAmount
	Share int `json:"share"`
}

// Snapshot bundles every aggregate the dashboard shows.
type Snapshot struct {
	Version          uint64             `json:"version"`
	Reference        core.Date          `json:"reference"`
	Months           int                `json:"months"`
	TransactionCount int                `json:"transactionCount"`
	Totals           core.Totals        `json:"totals"`
	Monthly          []core.MonthBucket `json:"monthly"`
	Categories       []CategoryShare    `json:"categories"`
	TopCategoryShare int                `json:"topCategoryShare"`
}

// DashboardService computes snapshots from a TransactionSource. Results are
// cached per list version, reference month and window size.
type DashboardService struct {
	source TransactionSource
	cache  cache.Cache[Snapshot]
	group  singleflight.Group
	logger *log.Logger
}

func NewDashboardService(source TransactionSource, c cache.Cache[Snapshot], logger *log.Logger) *DashboardService {
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{
		source: source,
		cache:  c,
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// ClampMonths maps a requested window onto 1..MaxMonthWindow, using
// fallback for non-positive values.
func ClampMonths(months, fallback int) int {
	if months <= 0 {
		months = fallback
	}
	if months <= 0 {
		months = core.DefaultMonthWindow
	}
	if months > MaxMonthWindow {
		months = MaxMonthWindow
	}
	return months
}

// Snapshot returns the aggregates for the months ending at reference.
// Snapshots are cached per version, month and window; Reference always
// carries the requested day.
func (s *DashboardService) Snapshot(ctx context.Context, months int, reference time.Time) Snapshot {
	months = ClampMonths(months, core.DefaultMonthWindow)
	txs, version := s.source.Snapshot()
	key := fmt.Sprintf("%d|%04d-%02d|%d", version, reference.Year(), int(reference.Month()), months)

	if s.cache != nil {
		if snap, ok := s.cache.Get(key); ok {
			snap.Reference = core.DateOf(reference)
			return snap
		}
	}

	v, _, shared := s.group.Do(key, func() (any, error) {
		snap := Build(txs, version, months, reference)
		if s.cache != nil {
			s.cache.Set(key, snap)
		}
		return snap, nil
	})
	if shared {
		s.logger.DebugContext(ctx, "Snapshot computation shared", "cache_key", key)
	}
	snap := v.(Snapshot)
	snap.Reference = core.DateOf(reference)
	return snap
}

// Build computes a snapshot without caching.
func Build(txs []core.Transaction, version uint64, months int, reference time.Time) Snapshot {
	breakdown := core.CategoryBreakdown(txs)
	shares := make([]CategoryShare, len(breakdown))
	for i, c := range breakdown {
		shares[i] = CategoryShare{CategoryAmount: c, Share: core.CategoryShare(c, breakdown)}
	}
	return Snapshot{
		Version:          version,
		Reference:        core.DateOf(reference),
		Months:           months,
		TransactionCount: len(txs),
		Totals:           core.ComputeTotals(txs),
		Monthly:          core.MonthlySeries(txs, months, reference),
		Categories:       shares,
		TopCategoryShare: core.TopCategoryShare(breakdown),
	}
}
