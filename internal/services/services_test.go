package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"moneyboard/internal/amqp"
	"moneyboard/internal/cache"
	"moneyboard/internal/core"
	"moneyboard/internal/storage/memory"
)

type recordingPublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev *amqp.TransactionEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func fixture(t *testing.T) (*memory.Store, core.Category, core.Category) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	food, err := store.CreateCategory(ctx, core.CategoryInput{Name: "Food", Color: "#ff0000"})
	if err != nil {
		t.Fatal(err)
	}
	salary, err := store.CreateCategory(ctx, core.CategoryInput{Name: "Salary", Color: "#00ff00"})
	if err != nil {
		t.Fatal(err)
	}
	return store, food, salary
}

func input(amount string, day int, category int64) core.TransactionInput {
	return core.TransactionInput{
		Amount:      core.MustMoney(amount),
		Description: "entry",
		Date:        core.NewDate(2024, 3, day),
		CategoryID:  category,
	}
}

func newDashboard(store *memory.Store) (*DashboardService, *cache.LRUCache[core.DashboardSummary]) {
	summaries := cache.NewLRUCache[core.DashboardSummary](8, time.Hour)
	d := NewDashboardService(store, summaries, cache.NewLRUCache[core.MonthlyTrend](1, time.Hour), nil)
	d.now = func() time.Time { return time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC) }
	return d, summaries
}

func TestLedgerCreatePublishesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	store, food, _ := fixture(t)
	dash, summaries := newDashboard(store)
	pub := &recordingPublisher{err: errors.New("broker down")}
	ledger := NewLedgerService(store, pub, dash, nil)

	before, err := dash.Summary(ctx, core.Period{})
	if err != nil {
		t.Fatal(err)
	}
	if !before.TotalExpenses.IsZero() || summaries.Size() != 1 {
		t.Fatalf("expected an empty cached summary, got %+v", before)
	}

	tx, err := ledger.CreateTransaction(ctx, core.Expense, input("50", 5, food.ID))
	if err != nil {
		t.Fatalf("a failed publish must not fail the write: %v", err)
	}
	if tx.Category == nil || tx.Category.Name != "Food" {
		t.Errorf("expected joined category, got %+v", tx.Category)
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionCreated || pub.events[0].Periods[0] != (core.Period{Year: 2024, Month: 3}) {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
	if summaries.Size() != 0 {
		t.Errorf("the March summary should have been invalidated")
	}

	after, err := dash.Summary(ctx, core.Period{Year: 2024, Month: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !after.TotalExpenses.Equal(core.MustMoney("50")) || !after.Balance.Equal(core.MustMoney("-50")) {
		t.Errorf("unexpected summary: %+v", after)
	}
}

func TestLedgerRejectsUnknownCategory(t *testing.T) {
	store, _, _ := fixture(t)
	pub := &recordingPublisher{}
	ledger := NewLedgerService(store, pub, nil, nil)

	_, err := ledger.CreateTransaction(context.Background(), core.Income, input("10", 1, 999))
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("nothing should be published for a rejected write")
	}
}

func TestLedgerUpdateAcrossMonthsAnnouncesBoth(t *testing.T) {
	ctx := context.Background()
	store, food, _ := fixture(t)
	pub := &recordingPublisher{}
	ledger := NewLedgerService(store, pub, nil, nil)

	tx, err := ledger.CreateTransaction(ctx, core.Expense, input("20", 31, food.ID))
	if err != nil {
		t.Fatal(err)
	}
	april := core.NewDate(2024, 4, 1)
	if _, err := ledger.UpdateTransaction(ctx, core.Expense, tx.ID, core.TransactionPatch{Date: &april}); err != nil {
		t.Fatal(err)
	}
	ev := pub.events[len(pub.events)-1]
	if ev.Action != amqp.ActionUpdated || len(ev.Periods) != 2 {
		t.Fatalf("expected both months announced, got %+v", ev)
	}

	empty := ""
	if _, err := ledger.UpdateTransaction(ctx, core.Expense, tx.ID, core.TransactionPatch{Description: &empty}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("expected ErrEmptyDescription, got %v", err)
	}

	if err := ledger.DeleteTransaction(ctx, core.Expense, tx.ID); err != nil {
		t.Fatal(err)
	}
	if err := ledger.DeleteTransaction(ctx, core.Expense, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDashboardSummaryOrdersBreakdownAndBalances(t *testing.T) {
	ctx := context.Background()
	store, food, salary := fixture(t)
	rent, _ := store.CreateCategory(ctx, core.CategoryInput{Name: "Rent"})

	for _, in := range []core.TransactionInput{
		input("30", 2, food.ID),
		input("30", 3, food.ID),
		input("60", 4, rent.ID),
		input("10.10", 5, food.ID),
	} {
		if _, err := store.CreateTransaction(ctx, core.Expense, in); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.CreateTransaction(ctx, core.Income, input("100", 1, salary.ID)); err != nil {
		t.Fatal(err)
	}
	// Outside the month
	other := input("999", 1, food.ID)
	other.Date = core.NewDate(2024, 4, 1)
	if _, err := store.CreateTransaction(ctx, core.Expense, other); err != nil {
		t.Fatal(err)
	}

	dash, _ := newDashboard(store)
	s, err := dash.Summary(ctx, core.Period{Year: 2024, Month: 3})
	if err != nil {
		t.Fatal(err)
	}
	if s.Month != "March" || s.Year != 2024 {
		t.Errorf("label = %s %d", s.Month, s.Year)
	}
	if err := core.CheckSummary(s); err != nil {
		t.Errorf("summary invariants: %v", err)
	}
	if len(s.ExpensesByCategory) != 2 || s.ExpensesByCategory[0].Name != "Food" || s.ExpensesByCategory[1].Name != "Rent" {
		t.Errorf("breakdown order: %+v", s.ExpensesByCategory)
	}
	if !s.Balance.Equal(core.MustMoney("-30.10")) {
		t.Errorf("balance = %s", s.Balance)
	}

	if _, err := dash.Summary(ctx, core.Period{Year: 2024, Month: 13}); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestDashboardTrendAndCategoryInvalidation(t *testing.T) {
	ctx := context.Background()
	store, food, _ := fixture(t)
	dash, summaries := newDashboard(store)

	trend, err := dash.Trend(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if trend.Expenses == nil || trend.Income == nil || len(trend.Expenses) != 0 {
		t.Fatalf("empty trend should hold empty series, got %+v", trend)
	}

	if _, err := store.CreateTransaction(ctx, core.Expense, input("5", 1, food.ID)); err != nil {
		t.Fatal(err)
	}
	if trend, _ = dash.Trend(ctx); len(trend.Expenses) != 0 {
		t.Fatalf("trend should be served from cache until invalidated")
	}

	if _, err := dash.Summary(ctx, core.Period{}); err != nil {
		t.Fatal(err)
	}
	if err := dash.Refresh(ctx, amqp.NewCategoryEvent(food.ID)); err != nil {
		t.Fatal(err)
	}
	if summaries.Size() != 1 {
		t.Errorf("refresh should re-warm the current month, size = %d", summaries.Size())
	}
	trend, _ = dash.Trend(ctx)
	if len(trend.Expenses) != 1 || trend.Expenses[0].Month != "March" {
		t.Errorf("trend after refresh: %+v", trend.Expenses)
	}
}

func TestLedgerCategoryChangesClearCaches(t *testing.T) {
	ctx := context.Background()
	store, food, _ := fixture(t)
	dash, summaries := newDashboard(store)
	ledger := NewLedgerService(store, nil, dash, nil)

	if _, err := dash.Summary(ctx, core.Period{Year: 2023, Month: 1}); err != nil {
		t.Fatal(err)
	}
	name := "Groceries"
	if _, err := ledger.UpdateCategory(ctx, food.ID, core.CategoryPatch{Name: &name}); err != nil {
		t.Fatal(err)
	}
	if summaries.Size() != 0 {
		t.Errorf("category rename should clear every cached month")
	}
}

// interleavedStore runs during once, inside the first category load.
type interleavedStore struct {
	*memory.Store
	during func()
}

func (s *interleavedStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.Store.ListCategories(ctx)
	if s.during != nil {
		during := s.during
		s.during = nil
		during()
	}
	return cats, err
}

func TestSummaryComputedAcrossInvalidationIsNotCached(t *testing.T) {
	ctx := context.Background()
	store, food, _ := fixture(t)
	wrapped := &interleavedStore{Store: store}
	summaries := cache.NewLRUCache[core.DashboardSummary](8, time.Hour)
	dash := NewDashboardService(wrapped, summaries, nil, nil)
	march := core.Period{Year: 2024, Month: 3}

	wrapped.during = func() {
		if _, err := store.CreateTransaction(ctx, core.Expense, input("40", 2, food.ID)); err != nil {
			t.Error(err)
		}
		dash.Invalidate(ctx, amqp.NewTransactionEvent(amqp.ActionCreated, core.Expense, 1, core.NewDate(2024, 3, 2)))
	}
	if _, err := dash.Summary(ctx, march); err != nil {
		t.Fatal(err)
	}
	if summaries.Size() != 0 {
		t.Fatalf("a summary computed across an invalidation was cached")
	}

	fresh, err := dash.Summary(ctx, march)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.TotalExpenses.Cents() != 4000 || summaries.Size() != 1 {
		t.Fatalf("expected the new expense in a cached summary, got %s (size %d)", fresh.TotalExpenses, summaries.Size())
	}
}
