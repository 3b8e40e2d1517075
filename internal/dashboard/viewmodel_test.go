package dashboard

import (
	"context"
	"errors"
	"testing"

	"moneyboard/internal/core"
	"moneyboard/internal/i18n"
)

type fakeSource struct {
	summary *core.DashboardSummary
	err     error
	calls   int
	period  core.Period
}

func (f *fakeSource) Summary(ctx context.Context, p core.Period) (*core.DashboardSummary, error) {
	f.calls++
	f.period = p
	return f.summary, f.err
}

var en = i18n.MustFormatter("en-US", "USD")

func march() *core.DashboardSummary {
	return &core.DashboardSummary{
		Month:         "March",
		Year:          2024,
		TotalExpenses: core.MustMoney("1200"),
		TotalIncome:   core.MustMoney("1000"),
		Balance:       core.MustMoney("-200"),
		ExpensesByCategory: []core.CategoryAmount{
			{Name: "Housing", Color: "#4ECDC4", Amount: core.MustMoney("800")},
			{Name: "Food", Color: "#FF6B6B", Amount: core.MustMoney("250")},
			{Name: "Transportation", Color: "#45B7D1", Amount: core.MustMoney("150")},
		},
		IncomeByCategory: []core.CategoryAmount{},
	}
}

func TestNegativeBalancePolarity(t *testing.T) {
	src := &fakeSource{summary: march()}
	vm := New(src, core.Period{}, nil)
	if err := vm.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	v, ok := vm.View(en)
	if !ok {
		t.Fatalf("expected a view in state %v", vm.State())
	}
	if v.Polarity != Negative {
		t.Errorf("polarity = %v, want negative", v.Polarity)
	}
	if !v.BalanceValue.Equal(core.MustMoney("-200")) {
		t.Errorf("balance must not be altered, got %s", v.BalanceValue)
	}
}

func TestPolarityOf(t *testing.T) {
	tests := []struct {
		amount string
		want   Polarity
	}{
		{"0", NonNegative},
		{"0.01", NonNegative},
		{"-0.01", Negative},
	}
	for _, tt := range tests {
		if got := PolarityOf(core.MustMoney(tt.amount)); got != tt.want {
			t.Errorf("PolarityOf(%s) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestChartAndRowsNeverDiverge(t *testing.T) {
	s := march()
	v := Project(*s, en)

	chart := v.Expenses.Chart
	if chart == nil {
		t.Fatal("expected a chart")
	}
	if len(chart.Labels) != len(s.ExpensesByCategory) || len(v.Expenses.Rows) != len(s.ExpensesByCategory) {
		t.Fatalf("length mismatch: chart %d rows %d source %d", len(chart.Labels), len(v.Expenses.Rows), len(s.ExpensesByCategory))
	}
	for i, item := range s.ExpensesByCategory {
		row := v.Expenses.Rows[i]
		if chart.Labels[i] != item.Name || row.Name != item.Name {
			t.Errorf("index %d: names chart=%q row=%q want %q", i, chart.Labels[i], row.Name, item.Name)
		}
		if !chart.Values[i].Equal(item.Amount) || !row.Value.Equal(item.Amount) {
			t.Errorf("index %d: amounts differ", i)
		}
		if chart.Colors[i] != item.Color || row.Color != item.Color {
			t.Errorf("index %d: colors differ", i)
		}
	}
}

func TestEmptyBreakdownShowsPlaceholder(t *testing.T) {
	v := Project(*march(), en)
	if !v.Income.IsEmpty() || v.Income.Chart != nil {
		t.Fatalf("empty breakdown must not build a chart")
	}
	if v.Income.Placeholder != i18n.NoCategoryData || len(v.Income.Rows) != 0 {
		t.Errorf("unexpected empty breakdown %+v", v.Income)
	}
}

func TestNullSummaryIsEmptyState(t *testing.T) {
	vm := New(&fakeSource{}, core.Period{}, nil)
	if err := vm.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if vm.State() != Empty {
		t.Fatalf("state = %v, want empty", vm.State())
	}
	if _, ok := vm.View(en); ok {
		t.Errorf("no view expected for an absent summary")
	}
}

func TestMountFetchesOnce(t *testing.T) {
	src := &fakeSource{summary: march()}
	vm := New(src, core.Period{Year: 2024, Month: 3}, nil)
	for range 3 {
		if err := vm.Mount(context.Background()); err != nil {
			t.Fatalf("Mount: %v", err)
		}
	}
	if src.calls != 1 {
		t.Errorf("summary fetched %d times, want 1", src.calls)
	}
	if src.period != (core.Period{Year: 2024, Month: 3}) {
		t.Errorf("period = %+v", src.period)
	}
}

func TestMountFailure(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{err: boom}
	vm := New(src, core.Period{}, nil)

	err := vm.Mount(context.Background())
	if !errors.Is(err, ErrLoad) || !errors.Is(err, boom) {
		t.Fatalf("Mount = %v", err)
	}
	if vm.State() != LoadError {
		t.Errorf("state = %v", vm.State())
	}
	if err := vm.Mount(context.Background()); !errors.Is(err, ErrLoad) || src.calls != 1 {
		t.Errorf("LoadError is terminal and must not refetch: %v calls=%d", err, src.calls)
	}
}

func TestTrendAlignsSeries(t *testing.T) {
	trend := core.MonthlyTrend{
		Expenses: []core.MonthlyPoint{
			{Month: "December", Year: 2023, Amount: core.MustMoney("50")},
			{Month: "February", Year: 2024, Amount: core.MustMoney("70")},
		},
		Income: []core.MonthlyPoint{
			{Month: "January", Year: 2024, Amount: core.MustMoney("100")},
			{Month: "February", Year: 2024, Amount: core.MustMoney("100")},
		},
	}

	v := Trend(trend, en)
	wantLabels := []string{"December 2023", "January 2024", "February 2024"}
	if len(v.Labels) != len(wantLabels) {
		t.Fatalf("labels = %v", v.Labels)
	}
	for i, l := range wantLabels {
		if v.Labels[i] != l {
			t.Errorf("label %d = %q, want %q", i, v.Labels[i], l)
		}
	}
	wantExp := []string{"50", "0", "70"}
	wantInc := []string{"0", "100", "100"}
	for i := range wantLabels {
		if !v.Expenses[i].Equal(core.MustMoney(wantExp[i])) || !v.Income[i].Equal(core.MustMoney(wantInc[i])) {
			t.Errorf("month %d: expenses %s income %s", i, v.Expenses[i], v.Income[i])
		}
	}
	if len(v.ExpenseAmounts) != 3 || len(v.IncomeAmounts) != 3 {
		t.Errorf("formatted series must align with labels")
	}
}

type summaryFunc func(ctx context.Context, p core.Period) (*core.DashboardSummary, error)

func (f summaryFunc) Summary(ctx context.Context, p core.Period) (*core.DashboardSummary, error) {
	return f(ctx, p)
}

func TestLateSummaryAfterUnmountIsDropped(t *testing.T) {
	var vm *ViewModel
	vm = New(summaryFunc(func(ctx context.Context, p core.Period) (*core.DashboardSummary, error) {
		vm.Unmount()
		return march(), nil
	}), core.Period{Year: 2024, Month: 3}, nil)

	if err := vm.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if vm.State() != Loading || vm.Summary() != nil {
		t.Fatalf("late result was applied: state=%v summary=%v", vm.State(), vm.Summary())
	}
	if _, ok := vm.View(en); ok {
		t.Error("View should report nothing to show")
	}
}

func TestMountAfterUnmount(t *testing.T) {
	src := &fakeSource{summary: march()}
	vm := New(src, core.Period{}, nil)
	vm.Unmount()
	if err := vm.Mount(context.Background()); !errors.Is(err, ErrUnmounted) {
		t.Fatalf("Mount = %v, want ErrUnmounted", err)
	}
	if src.calls != 0 {
		t.Errorf("source called %d times after unmount", src.calls)
	}
}
