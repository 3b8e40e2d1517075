package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"moneyboard/internal/amqp"
	"moneyboard/internal/cache"
	"moneyboard/internal/core"
	"moneyboard/internal/log"
	"moneyboard/internal/storage"
)

// TrendMonths is how many months with data the monthly trend reports.
const TrendMonths = 12

const trendKey = "trend"

// DashboardService computes month summaries and the monthly trend from the
// store, memoising both. Caches are optional.
type DashboardService struct {
	store     storage.Store
	summaries cache.Cache[core.DashboardSummary]
	trends    cache.Cache[core.MonthlyTrend]
	logger    *log.Logger
	now       func() time.Time

	// generation counts invalidations. A value computed while it moved is
	// returned to its caller but not cached.
	genMu      sync.RWMutex
	generation uint64
}

func NewDashboardService(
	store storage.Store,
	summaries cache.Cache[core.DashboardSummary],
	trends cache.Cache[core.MonthlyTrend],
	logger *log.Logger,
) *DashboardService {
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{
		store:     store,
		summaries: summaries,
		trends:    trends,
		logger:    logger.WithComponent(log.ComponentDashboard),
		now:       time.Now,
	}
}

func summaryKey(p core.Period) string {
	return "summary:" + p.Key()
}

// Summary returns the summary for p; the zero period is the current UTC month.
func (s *DashboardService) Summary(ctx context.Context, p core.Period) (core.DashboardSummary, error) {
	p = p.OrCurrent(s.now())
	if err := p.Validate(); err != nil {
		return core.DashboardSummary{}, err
	}

	if s.summaries != nil {
		if cached, ok := s.summaries.Get(ctx, summaryKey(p)); ok {
			return cached, nil
		}
	}

	gen := s.currentGeneration()
	summary, err := s.computeSummary(ctx, p)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	if s.summaries != nil {
		s.storeIfCurrent(ctx, gen, func() { s.summaries.Set(ctx, summaryKey(p), summary) })
	}
	return summary, nil
}

func (s *DashboardService) currentGeneration() uint64 {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	return s.generation
}

// storeIfCurrent runs set unless an invalidation happened since gen was read.
func (s *DashboardService) storeIfCurrent(ctx context.Context, gen uint64, set func()) {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	if s.generation != gen {
		s.logger.DebugContext(ctx, "Skipped caching a value computed across an invalidation")
		return
	}
	set()
}

func (s *DashboardService) computeSummary(ctx context.Context, p core.Period) (core.DashboardSummary, error) {
	f := storage.MonthFilter(p)
	var (
		cats             []core.Category
		expenses, income []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cats, err = s.store.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.store.ListTransactions(gctx, core.Expense, f)
		return err
	})
	g.Go(func() (err error) {
		income, err = s.store.ListTransactions(gctx, core.Income, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, fmt.Errorf("load %s: %w", p.Key(), err)
	}

	summary := core.Summarize(p, expenses, income, cats)
	s.logger.DebugContext(ctx, "Summary computed",
		log.FieldYear, p.Year, log.FieldMonth, p.Month,
		"expenses", len(expenses), "income", len(income))
	return summary, nil
}

// Trend returns per-month totals for the latest months having data.
func (s *DashboardService) Trend(ctx context.Context) (core.MonthlyTrend, error) {
	if s.trends != nil {
		if cached, ok := s.trends.Get(ctx, trendKey); ok {
			return cached, nil
		}
	}

	gen := s.currentGeneration()
	var trend core.MonthlyTrend
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		trend.Expenses, err = s.store.MonthlyTotals(gctx, core.Expense, TrendMonths)
		return err
	})
	g.Go(func() (err error) {
		trend.Income, err = s.store.MonthlyTotals(gctx, core.Income, TrendMonths)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthlyTrend{}, fmt.Errorf("load monthly trend: %w", err)
	}
	if trend.Expenses == nil {
		trend.Expenses = []core.MonthlyPoint{}
	}
	if trend.Income == nil {
		trend.Income = []core.MonthlyPoint{}
	}

	if s.trends != nil {
		s.storeIfCurrent(ctx, gen, func() { s.trends.Set(ctx, trendKey, trend) })
	}
	return trend, nil
}

// Invalidate drops cached data touched by ev. Category changes alter labels
// in every month, so they clear everything.
func (s *DashboardService) Invalidate(ctx context.Context, ev *amqp.TransactionEvent) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generation++

	if ev.Action == amqp.ActionCategoryChanged {
		if s.summaries != nil {
			s.summaries.Clear(ctx)
		}
		if s.trends != nil {
			s.trends.Clear(ctx)
		}
		return
	}

	if s.summaries != nil && len(ev.Periods) > 0 {
		keys := make([]string, len(ev.Periods))
		for i, p := range ev.Periods {
			keys[i] = summaryKey(p)
		}
		s.summaries.Delete(ctx, keys...)
	}
	if s.trends != nil {
		s.trends.Delete(ctx, trendKey)
	}
}

// Refresh invalidates what ev touched and recomputes it, so the next reader
// finds a warm cache.
func (s *DashboardService) Refresh(ctx context.Context, ev *amqp.TransactionEvent) error {
	s.Invalidate(ctx, ev)

	periods := ev.Periods
	if ev.Action == amqp.ActionCategoryChanged || len(periods) == 0 {
		periods = []core.Period{core.Period{}.OrCurrent(s.now())}
	}
	for _, p := range periods {
		if _, err := s.Summary(ctx, p); err != nil {
			return fmt.Errorf("refresh summary %s: %w", p.Key(), err)
		}
	}
	if _, err := s.Trend(ctx); err != nil {
		return fmt.Errorf("refresh trend: %w", err)
	}
	return nil
}
