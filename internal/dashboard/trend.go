package dashboard

import (
	"fmt"
	"sort"

	"moneyboard/internal/core"
	"moneyboard/internal/i18n"
)

// TrendView holds aligned line-chart series: index i of every slice refers
// to the same month.
type TrendView struct {
	Labels   []string
	Expenses []core.Money
	Income   []core.Money
	// Formatted amounts, same indexing.
	ExpenseAmounts []string
	IncomeAmounts  []string
}

type monthKey struct{ year, month int }

// Trend merges the expense and income series over the union of their months,
// in chronological order. Months missing from one series count as zero.
func Trend(t core.MonthlyTrend, f *i18n.Formatter) TrendView {
	expenses := indexPoints(t.Expenses)
	income := indexPoints(t.Income)

	keys := make([]monthKey, 0, len(expenses)+len(income))
	seen := make(map[monthKey]bool)
	for _, m := range []map[monthKey]core.Money{expenses, income} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	v := TrendView{
		Labels:         make([]string, len(keys)),
		Expenses:       make([]core.Money, len(keys)),
		Income:         make([]core.Money, len(keys)),
		ExpenseAmounts: make([]string, len(keys)),
		IncomeAmounts:  make([]string, len(keys)),
	}
	for i, k := range keys {
		v.Labels[i] = fmt.Sprintf("%s %d", core.MonthName(k.month), k.year)
		v.Expenses[i] = expenses[k]
		v.Income[i] = income[k]
		v.ExpenseAmounts[i] = f.Money(v.Expenses[i])
		v.IncomeAmounts[i] = f.Money(v.Income[i])
	}
	return v
}

// indexPoints sums points by month; unknown month labels are skipped.
func indexPoints(points []core.MonthlyPoint) map[monthKey]core.Money {
	out := make(map[monthKey]core.Money, len(points))
	for _, p := range points {
		m := core.MonthNumber(p.Month)
		if m == 0 {
			continue
		}
		k := monthKey{year: p.Year, month: m}
		out[k] = out[k].Add(p.Amount)
	}
	return out
}
