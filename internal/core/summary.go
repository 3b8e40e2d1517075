package core

import (
	"fmt"
	"sort"
	"time"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Amount Money  `json:"amount"`
}

// DashboardSummary is the monthly overview returned by the dashboard endpoint.
type DashboardSummary struct {
	Month              string           `json:"month"`
	Year               int              `json:"year"`
	TotalExpenses      Money            `json:"total_expenses"`
	TotalIncome        Money            `json:"total_income"`
	Balance            Money            `json:"balance"`
	ExpensesByCategory []CategoryAmount `json:"expenses_by_category"`
	IncomeByCategory   []CategoryAmount `json:"income_by_category"`
}

// MonthlyPoint is one month of a trend series.
type MonthlyPoint struct {
	Month  string `json:"month"`
	Year   int    `json:"year"`
	Amount Money  `json:"amount"`
}

// MonthlyTrend holds chronological per-month totals.
type MonthlyTrend struct {
	Expenses []MonthlyPoint `json:"expenses"`
	Income   []MonthlyPoint `json:"income"`
}

// MonthName returns the English month name used as the summary label.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

// MonthNumber is the inverse of MonthName; it returns 0 for unknown labels.
func MonthNumber(name string) int {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m)
		}
	}
	return 0
}

// NewSummary returns an empty summary for the period with non-nil breakdowns.
func NewSummary(p Period) DashboardSummary {
	return DashboardSummary{
		Month:              MonthName(p.Month),
		Year:               p.Year,
		ExpensesByCategory: []CategoryAmount{},
		IncomeByCategory:   []CategoryAmount{},
	}
}

// Breakdown sums transactions per category. Rows are ordered by amount
// descending, then by name. Transactions referencing unknown categories are
// grouped under their id so totals stay consistent.
func Breakdown(txs []Transaction, cats []Category) ([]CategoryAmount, Money) {
	type bucket struct {
		row   CategoryAmount
		cents int64
	}
	byID := map[int64]*bucket{}
	var order []int64
	var total int64
	for _, tx := range txs {
		b, ok := byID[tx.CategoryID]
		if !ok {
			c, found := FindCategory(cats, tx.CategoryID)
			if !found {
				c = Category{ID: tx.CategoryID, Name: fmt.Sprintf("#%d", tx.CategoryID)}
			}
			b = &bucket{row: CategoryAmount{Name: c.Name, Color: c.Color}}
			byID[tx.CategoryID] = b
			order = append(order, tx.CategoryID)
		}
		cents := tx.Amount.Cents()
		b.cents += cents
		total += cents
	}

	rows := make([]CategoryAmount, 0, len(order))
	for _, id := range order {
		b := byID[id]
		b.row.Amount = MoneyFromCents(b.cents)
		rows = append(rows, b.row)
	}
	SortBreakdown(rows)
	return rows, MoneyFromCents(total)
}

// SortBreakdown orders rows by amount descending, then name ascending.
func SortBreakdown(rows []CategoryAmount) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Amount.Cmp(rows[j].Amount.Decimal); c != 0 {
			return c > 0
		}
		return rows[i].Name < rows[j].Name
	})
}

// Summarize builds a month summary from the period's expenses and income.
func Summarize(p Period, expenses, income []Transaction, cats []Category) DashboardSummary {
	s := NewSummary(p)
	s.ExpensesByCategory, s.TotalExpenses = Breakdown(expenses, cats)
	s.IncomeByCategory, s.TotalIncome = Breakdown(income, cats)
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

// CheckSummary verifies the externally computed invariants: each breakdown
// sums to its total and balance equals income minus expenses.
func CheckSummary(s DashboardSummary) error {
	if err := checkBreakdown("expenses", s.ExpensesByCategory, s.TotalExpenses); err != nil {
		return err
	}
	if err := checkBreakdown("income", s.IncomeByCategory, s.TotalIncome); err != nil {
		return err
	}
	if want := s.TotalIncome.Sub(s.TotalExpenses); !s.Balance.Equal(want) {
		return fmt.Errorf("balance %s does not equal income minus expenses %s", s.Balance, want)
	}
	return nil
}

func checkBreakdown(name string, rows []CategoryAmount, total Money) error {
	if total.IsNegative() {
		return fmt.Errorf("%s total is negative: %s", name, total)
	}
	var sum Money
	for _, r := range rows {
		if r.Amount.IsNegative() {
			return fmt.Errorf("%s category %q has negative amount %s", name, r.Name, r.Amount)
		}
		sum = sum.Add(r.Amount)
	}
	if !sum.Equal(total) {
		return fmt.Errorf("%s by category sums to %s, total is %s", name, sum, total)
	}
	return nil
}

// PeriodOf returns the calendar month containing d.
func PeriodOf(d Date) Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

// OrCurrent resolves the zero period to the month of now in UTC.
func (p Period) OrCurrent(now time.Time) Period {
	if !p.IsZero() {
		return p
	}
	y, m, _ := now.UTC().Date()
	return Period{Year: y, Month: int(m)}
}

// Key is a stable "YYYY-MM" identifier for p.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
